// Package logging provides the structured logger shared across Condor's
// planning subsystems.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a configured logger. level is one of
// "debug"/"info"/"warn"/"error" (default "info"); output is "stdout" or a
// file path.
func New(level, output string) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(parseLevel(level))

	if output == "" || output == "stdout" {
		logger.SetOutput(os.Stdout)
	} else {
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err == nil {
			logger.SetOutput(file)
		} else {
			logger.SetOutput(os.Stdout)
			logger.Warnf("failed to open log file %s, using stdout", output)
		}
	}

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	return logger
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
