package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	ren "github.com/renlang/ren-go"
	"github.com/renlang/ren-go/device"
	"github.com/renlang/ren-go/diag"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a canned evaluation exercising every condition kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		capture := device.NewCaptureBuffer(0)
		eng, err := ren.NewEngine(ren.WithStdIO(device.NewStdIO(cmd.InOrStdin(), capture)))
		if err != nil {
			return err
		}
		defer eng.Close()
		ren.SetDefault(eng)
		defer ren.SetDefault(nil)

		logger.Info("engine running", "id", eng.ID())

		// Ordinary evaluation: steps producing values, output through the
		// device shim.
		v, err := eng.Eval(
			func(e *ren.Engine) (ren.Value, error) {
				return ren.Unset(), e.Print("hello from evaluated code\n")
			},
			func(e *ren.Engine) (ren.Value, error) {
				return ren.NewInteger(40+2, ren.InEngine(e)).Value, nil
			},
		)
		if err != nil {
			return report(err)
		}
		logger.Info("evaluation finished", "result", v.String())
		fmt.Fprint(cmd.OutOrStdout(), capture.String())

		// A raised error intercepted by runtime-level recovery.
		caught, err := eng.Try(func(e *ren.Engine) (ren.Value, error) {
			return ren.Value{}, ren.NewError("invalid hedgehog found", ren.InEngine(e)).Apply()
		})
		if err != nil {
			return report(err)
		}
		logger.Info("try intercepted a raised condition", "value", caught.String())

		// Cancellation posted from another goroutine.
		go func() {
			time.Sleep(10 * time.Millisecond)
			eng.RequestCancel()
		}()
		_, err = eng.Eval(func(e *ren.Engine) (ren.Value, error) {
			for {
				if cerr := e.Checkpoint(); cerr != nil {
					return ren.Value{}, cerr
				}
				time.Sleep(time.Millisecond)
			}
		})
		if errors.Is(err, ren.ErrCancelled) {
			logger.Info("evaluation cancelled as requested")
		} else if err != nil {
			return report(err)
		}

		// An exit directive escaping to the host.
		_, err = eng.Eval(func(*ren.Engine) (ren.Value, error) {
			return ren.Value{}, ren.Exit(0)
		})
		var xe *ren.ExitError
		if errors.As(err, &xe) {
			logger.Info("evaluated code requested exit", "code", xe.Code)
			return xe
		}
		return report(err)
	},
}

// report renders an unexpected condition as a diagnostic record before
// handing it to cobra.
func report(err error) error {
	if err == nil {
		return nil
	}
	rec := diag.FromError(err)
	data, merr := json.Marshal(rec)
	if merr == nil {
		logger.Error("condition escaped to host", "record", string(data))
	}
	return err
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema for condition records",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := diag.NewRegistry()
		if err != nil {
			return err
		}
		schema, ok := reg.Schema("condition")
		if !ok {
			return errors.New("condition schema not registered")
		}
		fmt.Fprintln(cmd.OutOrStdout(), schema)
		return nil
	},
}
