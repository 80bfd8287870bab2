package logger

import (
	"os"

	"github.com/developia-II/catalog-api/internal/config"
	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger used throughout the service.
func Setup(cfg config.LoggerConfig) {
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, falling back to info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
