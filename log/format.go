package log

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// formatValue renders a resolved slog value for the line format. Strings
// with spaces are quoted so lines stay parseable.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return maybeQuote(v.String())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return maybeQuote(fmt.Sprint(v.Any()))
	}
}

func maybeQuote(s string) string {
	for _, r := range s {
		if r == ' ' || r == '"' || r == '=' || r == '\n' {
			return strconv.Quote(s)
		}
	}
	return s
}
