// Package logger provides a zerolog wrapper with opinionated defaults and
// run-scoped logging support
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"rabbithole/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Options configures the logger
type Options struct {
	Level      string
	Pretty     bool
	TimeFormat string
	Caller     bool
	Sampling   int
	Writer     io.Writer
}

// FromEnv builds Options using the logging-free raw config view (no cycles).
// An empty prefix defaults to "LOG_"
func FromEnv(prefix string) Options {
	if prefix == "" {
		prefix = "LOG_"
	}
	rc := raw.New().Prefix(prefix)
	return Options{
		Level:      strings.ToLower(rc.Get("LEVEL", "info")),
		Pretty:     rc.GetBool("PRETTY", false),
		TimeFormat: rc.Get("TIME_FORMAT", ""),
		Caller:     rc.GetBool("CALLER", false),
		Sampling:   rc.GetInt("SAMPLE_N", 0),
	}
}

var (
	once   sync.Once
	root   atomic.Pointer[zerolog.Logger] // internal storage of the root logger
	inited atomic.Bool
)

// Logger is the project-wide logging type - today it's just a zerolog.Logger, but it can be swapped later
type Logger = zerolog.Logger

// Get returns the process-wide root logger as a pointer
func Get() *Logger {
	if !inited.Load() {
		Init(FromEnv(""))
	}
	return root.Load()
}

// Init configures zerolog and builds the root logger, safe to call once.
// Logs land on stderr so stdout stays clean for report output
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		if opt.TimeFormat != "" {
			zerolog.TimeFieldFormat = opt.TimeFormat
		}

		lvl := parseLevel(opt.Level)

		var w io.Writer = os.Stderr
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Pretty {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		ctx := zerolog.New(w).Level(lvl).With().Timestamp()

		if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
			ctx = ctx.Str("go_version", bi.GoVersion)
		}

		log := ctx.Logger()
		if opt.Caller {
			log = log.With().Caller().Logger()
		}
		if opt.Sampling > 1 {
			log = log.Sample(&zerolog.BasicSampler{N: uint32(opt.Sampling)})
		}

		root.Store(&log)
		inited.Store(true)
	})
}

// parseLevel supports string-only levels
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

type ctxKey struct{ name string }

var (
	keyRunID  = ctxKey{"run_id"}
	keySource = ctxKey{"source"}
)

// WithRun annotates ctx with run-scoped fields
func WithRun(ctx context.Context, runID, source string) context.Context {
	if runID != "" {
		ctx = context.WithValue(ctx, keyRunID, runID)
	}
	if source != "" {
		ctx = context.WithValue(ctx, keySource, source)
	}
	return ctx
}

// C returns a child logger enriched from ctx (run_id, source)
func C(ctx context.Context) *Logger {
	l := Get()
	// build child off current root
	builder := l.With()
	if v := ctx.Value(keyRunID); v != nil {
		if s, ok := v.(string); ok && s != "" {
			builder = builder.Str("run_id", s)
		}
	}
	if v := ctx.Value(keySource); v != nil {
		if s, ok := v.(string); ok && s != "" {
			builder = builder.Str("source", s)
		}
	}
	ll := builder.Logger()
	return &ll
}

// Named returns a child logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}
