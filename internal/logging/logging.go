// Package logging builds the structured loggers used by the binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/tetris/internal/config"
)

// New returns a logger writing to w with the level taken from the
// environment.
func New(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           config.LogLevel(log.InfoLevel),
	})
}

// NewFile returns a logger appending to the file named by TETRIS_LOG, for
// programs that own the terminal. Without that variable it discards
// everything. The returned close function is never nil.
func NewFile(prefix string) (*log.Logger, func() error, error) {
	path := config.GetEnv(config.EnvLogFile, "")
	if path == "" {
		return log.New(io.Discard), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: open %s: %w", path, err)
	}
	return New(f, prefix), f.Close, nil
}
