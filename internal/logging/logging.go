// Package logging configures logrus for the exporter. Diagnostics go to
// standard error — standard output is reserved for metric lines and must
// never carry anything a line protocol parser would choke on — and
// optionally to a log file in JSON format.
package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Prepare sets up log output and level. With an empty logName, logs go to
// stderr only; otherwise they are duplicated into the file (created or
// appended). Debug mode lowers the level to DebugLevel.
func Prepare(logName string, debug bool) error {
	out := io.Writer(os.Stderr)

	if logName != "" {
		logFile, err := os.OpenFile(logName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, logFile)
	}

	log.SetOutput(out)
	log.SetFormatter(&log.JSONFormatter{})

	if debug {
		log.SetLevel(log.DebugLevel)
		log.Debug("Debug mode enabled")
	}

	return nil
}
