// package shared holds helpers used across the service packages
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger creates a [log.Logger] writing to w with timestamps enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, Prefix: "racehub"}
	return log.NewWithOptions(w, opts)
}

// SetLogLevel parses level (debug, info, warn, error) and applies it to l.
// Unknown levels leave the logger at info.
func SetLogLevel(l *log.Logger, level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	l.SetLevel(parsed)
}
