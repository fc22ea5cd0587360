package cmd

import (
	"io"

	"github.com/charmbracelet/log"
)

func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "opsh",
		ReportTimestamp: true,
		Level:           log.WarnLevel,
	})

	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
