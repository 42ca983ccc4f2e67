// Package logger provides a zerolog wrapper with the defaults every
// subcommand shares: a console or JSON stream on stderr, optionally teed to a
// per-run log file that is truncated on open.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Options configures the logger
type Options struct {
	Level     string
	Format    string // console or json
	File      string // optional, truncated on open
	Component string
	Writer    io.Writer
}

// DefaultOptions logs info and above to stderr in console format
func DefaultOptions() Options {
	return Options{Level: "info", Format: "console"}
}

var (
	once   sync.Once
	root   atomic.Pointer[zerolog.Logger]
	inited atomic.Bool
	closer io.Closer
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// New builds a logger from opt without touching the process-wide root. The
// returned closer releases the log file, if any.
func New(opt Options) (*Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.ToLower(opt.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	var c io.Closer = nopCloser{}
	if opt.File != "" {
		if err := os.MkdirAll(filepath.Dir(opt.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opt.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = zerolog.MultiLevelWriter(w, f)
		c = f
	}

	ctx := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if opt.Component != "" {
		ctx = ctx.Str("component", opt.Component)
	}
	log := ctx.Logger()
	return &log, c, nil
}

// Init configures zerolog and builds the root logger, safe to call once
func Init(opt Options) error {
	var err error
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var log *Logger
		log, closer, err = New(opt)
		if err != nil {
			return
		}
		root.Store(log)
		inited.Store(true)
	})
	return err
}

// Close releases the log file opened by Init
func Close() error {
	if closer == nil {
		return nil
	}
	return closer.Close()
}

// Get returns the process-wide root logger
func Get() *Logger {
	if !inited.Load() {
		_ = Init(DefaultOptions())
	}
	if l := root.Load(); l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

// Named returns a child logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}

// parseLevel supports string-only levels
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
