// Package logging builds the leveled logger shared by the CLI and service.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jamzrob/todoer/internal/config"
)

// ParseLevel parses a level name, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter parses a formatter name, defaulting to text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// New returns a logger configured by cfg. Output goes to stderr unless a
// log file is set, in which case it is rotated by size. The returned
// closer releases the file and is never nil.
func New(cfg config.LogConfig, prefix string) (*log.Logger, io.Closer) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		w, closer = lj, lj
	}
	return NewWithWriter(w, cfg, prefix), closer
}

// NewWithWriter returns a logger writing to w.
func NewWithWriter(w io.Writer, cfg config.LogConfig, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(cfg.Level),
		Formatter:       ParseFormatter(cfg.Format),
		ReportTimestamp: cfg.File != "" || strings.EqualFold(cfg.Format, "json"),
		Prefix:          prefix,
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
