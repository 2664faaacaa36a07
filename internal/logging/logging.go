// Package logging configures the process-wide logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Setup configures and returns the standard logger. Progress rendering owns
// stdout, so log output goes to stderr.
func Setup(quiet, verbose bool) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	switch {
	case quiet:
		log.SetLevel(logrus.ErrorLevel)
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}
