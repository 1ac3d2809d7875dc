package main

import (
	"io"
	"os"

	"github.com/retroenv/retrogolib/log"
)

// createLogger creates a logger with appropriate settings. Log output goes
// to stderr.
func createLogger(debug, quiet bool) *log.Logger {
	return newLogger(os.Stderr, debug, quiet)
}

func newLogger(w io.Writer, debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = w
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
