package ren

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renlang/ren-go/device"
	"github.com/renlang/ren-go/internal/testutil"
	renlog "github.com/renlang/ren-go/log"
)

func TestNewEngineDefaults(t *testing.T) {
	e := newTestEngine(t)

	assert.True(t, e.Alive())
	assert.NotZero(t, e.ID())
	assert.Equal(t, DefaultConfig(), e.Config())
	require.NotNil(t, e.Device(), "engine without explicit device gets a null shim")
	assert.True(t, e.Device().Null())
}

func TestNewEngineValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeviceBufferSize = 1

	_, err := NewEngine(WithConfig(cfg))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "DeviceBufferSize", cfgErr.Field)

	cfg = DefaultConfig()
	cfg.LogLevel = "loud"
	_, err = NewEngine(WithConfig(cfg))
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "LogLevel", cfgErr.Field)
}

func TestEngineWithStdIO(t *testing.T) {
	var out bytes.Buffer
	dev := device.NewStdIO(nil, &out)
	e, err := NewEngine(WithStdIO(dev))
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Device().Write([]byte("printed by evaluated code"))
	require.NoError(t, err)
	assert.Equal(t, "printed by evaluated code", out.String())
}

func TestEnginePrintChunksByDeviceBufferSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeviceBufferSize = 64

	var out bytes.Buffer
	e, err := NewEngine(WithConfig(cfg), WithStdIO(device.NewStdIO(nil, &out)))
	require.NoError(t, err)
	defer e.Close()

	payload := make([]byte, 64*3+5)
	for i := range payload {
		payload[i] = byte('a' + i%26)
	}
	require.NoError(t, e.Print(string(payload)))
	assert.Equal(t, string(payload), out.String())
}

func TestEngineLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := renlog.New(renlog.WithWriter(&buf), renlog.WithLevel(slog.LevelDebug))
	e, err := NewEngine(WithLogger(logger))
	require.NoError(t, err)
	defer e.Close()

	assert.Contains(t, buf.String(), "engine started")

	e.RequestCancel()
	assert.Contains(t, buf.String(), "cancellation requested")
}

func TestDefaultEngineRegistry(t *testing.T) {
	SetDefault(nil)
	t.Cleanup(func() { SetDefault(nil) })

	assert.False(t, HasDefault())
	testutil.AssertPanics(t, func() { Default() })
	testutil.AssertPanics(t, func() { Unset() },
		"constructors without an explicit engine depend on the default")

	e := newTestEngine(t)
	SetDefault(e)
	require.True(t, HasDefault())
	assert.Same(t, e, Default())

	v := NewInteger(7)
	assert.Same(t, e, v.Engine())
}

func TestCloseUnregistersDefault(t *testing.T) {
	SetDefault(nil)
	t.Cleanup(func() { SetDefault(nil) })

	e, err := NewEngine()
	require.NoError(t, err)
	SetDefault(e)
	require.NoError(t, e.Close())

	assert.False(t, HasDefault())
	testutil.AssertPanics(t, func() { Default() })
}

func TestTeardownInvalidatesValues(t *testing.T) {
	e, err := NewEngine()
	require.NoError(t, err)

	errVal := NewError("outlives the engine", InEngine(e))
	require.NoError(t, e.Close())
	assert.False(t, e.Alive())

	// Kind tests stay total: they read only the discriminant.
	assert.True(t, errVal.IsError())

	// Payload access is a checked precondition violation, not garbage.
	testutil.AssertPanics(t, func() { _ = errVal.Message() })
	testutil.AssertPanics(t, func() { errVal.Copy() })
	testutil.AssertPanics(t, func() { NewInteger(1, InEngine(e)) })

	// Releasing a stale claim must stay safe.
	assert.NotPanics(t, func() { errVal.Release() })

	assert.NoError(t, e.Close(), "close is idempotent")
}

func TestEngineString(t *testing.T) {
	e := newTestEngine(t)
	assert.Contains(t, e.String(), "engine(")
}
