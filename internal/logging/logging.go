// Package logging holds the package level debug loggers and the logger
// constructor used by the command line.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// DebugEnv enables the debug loggers when set to any non-empty value
const DebugEnv = "TREEMAPVIEW_DEBUG"

var (
	Debug   *log.Logger
	Scanner *log.Logger
	Enabled bool
)

func init() {
	if os.Getenv(DebugEnv) == "" {
		Debug = log.New(io.Discard)
		Scanner = log.New(io.Discard)
		Enabled = false
		return
	}

	Enabled = true

	// Open debug.log once for all loggers
	debugFile, err := os.OpenFile("debug.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		Debug = New(os.Stderr, log.DebugLevel).WithPrefix("debug")
		Scanner = New(os.Stderr, log.DebugLevel).WithPrefix("scanner")
		return
	}

	Debug = New(debugFile, log.DebugLevel)
	Scanner = New(debugFile, log.DebugLevel).WithPrefix("scanner")
}

// New creates a logger writing timestamped lines to w at the given level
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
