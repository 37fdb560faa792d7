package logger

import (
	"io"

	"github.com/sirupsen/logrus"

	"banking-ledger/internal/config"
)

// New builds the application logger from config. JSON formatting is the
// production default; text formatting is for local development.
func New(output io.Writer, cfg config.LoggerConfig) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)

	if cfg.Format == "text" {
		l.SetFormatter(new(logrus.TextFormatter))
	} else {
		l.SetFormatter(new(logrus.JSONFormatter))
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	return l
}
