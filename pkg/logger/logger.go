// Package logger provides the process wide zerolog logger.
//
// Call Init once from main, then Get anywhere else. Levels in order:
//
//	trace, debug, info, warn, error
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level defaults to "info" when empty or unrecognised.
	Level string
	// Pretty switches to the coloured console writer for local runs.
	Pretty bool
	// Service is attached to every line as the "service" field when set.
	Service string
	Output  io.Writer
}

var (
	mu          sync.Mutex
	instance    zerolog.Logger
	initialized bool
)

// Init builds the logger on first call and returns it. Later calls return
// the existing logger unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return instance
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	lvl := ParseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	if lvl <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	instance = ctx.Logger()
	initialized = true
	return instance
}

// Get returns the logger. Panics if Init has not been called yet.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Reset drops the logger so the next Init rebuilds it. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = zerolog.Logger{}
	initialized = false
}

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Printf adapts a zerolog.Logger to printf style library loggers such as
// goose.Logger. Fatalf logs at fatal level, which exits the process.
type Printf struct {
	L         zerolog.Logger
	Component string
}

func (p Printf) Printf(format string, v ...interface{}) {
	p.L.Info().Str("component", p.Component).Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (p Printf) Fatalf(format string, v ...interface{}) {
	p.L.Fatal().Str("component", p.Component).Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
