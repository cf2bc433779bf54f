// Package logger provides a structured, module-aware logging system built on Go's standard log/slog.
//
// Components receive a Logger through their constructors and scope it with Module:
//
//	centralLogger, err := logger.NewCentralLogger(&cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	defer centralLogger.Close()
//
//	storeLog := centralLogger.Module("datastore")
//	storeLog.Info("occupancy updated",
//	    logger.String("zone_id", "zone3"),
//	    logger.Int("visitors", 12))
//
// Console output is human-readable text without timestamps. Optional file output
// is JSON with RFC3339 timestamps. Per-module levels are configured through
// module_levels, for example setting "datastore" to "trace" to see SQL.
//
// Field values whose key looks like a credential (token, password, api_key)
// are redacted before they reach any handler.
package logger

import (
	"context"
	"time"
	"unique"
)

// LogLevel represents log severity levels
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Field represents a structured log field.
// Keys are interned with unique.Make so repeated keys share one allocation.
type Field struct {
	Key   string
	Value any
}

func internKey(key string) string {
	return unique.Make(key).Value()
}

var (
	errorKey   = internKey("error")
	moduleKey  = internKey("module")
	traceIDKey = internKey("trace_id")
)

// Logger is handed to components through their constructors.
type Logger interface {
	Module(name string) Logger

	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	With(fields ...Field) Logger
	WithContext(ctx context.Context) Logger

	Log(level LogLevel, msg string, fields ...Field)
	Flush() error
}

func field(key string, value any) Field {
	return Field{Key: internKey(key), Value: value}
}

// Typed constructors keep call sites honest about what they log.

func String(key, value string) Field                 { return field(key, value) }
func Int(key string, value int) Field                { return field(key, value) }
func Int64(key string, value int64) Field            { return field(key, value) }
func Bool(key string, value bool) Field              { return field(key, value) }
func Duration(key string, value time.Duration) Field { return field(key, value) }

// Float64 values are rounded to three decimals on output.
func Float64(key string, value float64) Field { return field(key, value) }

// Any accepts arbitrary values; slog decides the rendering.
func Any(key string, value any) Field { return field(key, value) }

// Error always uses the "error" key and logs the message text, nil stays nil.
func Error(err error) Field {
	if err == nil {
		return Field{Key: errorKey}
	}
	return Field{Key: errorKey, Value: err.Error()}
}

type traceIDCtxKey struct{}

// WithTraceID attaches a request trace id; loggers derived through WithContext emit it.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDCtxKey{}, traceID)
}

// TraceIDFromContext returns the trace ID stored by WithTraceID, or "".
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(traceIDCtxKey{}).(string); ok {
		return traceID
	}
	return ""
}
