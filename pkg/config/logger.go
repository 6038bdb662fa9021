package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger: JSON in production, text elsewhere
func NewLogger(cfg *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, falling back to info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
