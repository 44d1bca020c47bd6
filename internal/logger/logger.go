// Package logger builds the structured logger shared by the binaries.
package logger

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/asteroidfield/internal/config"
)

// New creates a logger writing to w. LOG_LEVEL picks the level (debug, info,
// warn, error; default info) and LOG_FORMAT the output (text, json, logfmt;
// default text).
func New(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	name := strings.TrimSpace(config.GetEnv("LOG_LEVEL", ""))
	if name == "" {
		name = "info"
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	switch strings.ToLower(config.GetEnv("LOG_FORMAT", "text")) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}

	if err != nil {
		logger.Warn("unknown LOG_LEVEL, using info", "err", err)
	}
	return logger
}
