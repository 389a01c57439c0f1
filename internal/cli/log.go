package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger builds the CLI logger. Pipeline stages log through it at info
// level; --verbose lowers the level to debug. Timestamps carry centisecond
// precision so stage durations are readable.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
