// Package logger wraps go-logging with the leveled helpers used across the app.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

const (
	moduleName = "essay-feed"
	timeFormat = "2006/01/02 15:04:05"
)

var logger = logging.MustGetLogger(moduleName)

func init() {
	InitLogger(logging.INFO, os.Stderr)
}

// InitLogger points the module logger at w with the given level.
func InitLogger(level logging.Level, w io.Writer) {
	backend := logging.NewLogBackend(w, "", 0)
	formatter := logging.MustStringFormatter(`%{time:` + timeFormat + `} %{level} - %{message}`)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, formatter))
	leveled.SetLevel(level, moduleName)
	logger.SetBackend(leveled)
}

// ParseLevel maps LOG_LEVEL values to go-logging levels, defaulting to INFO.
func ParseLevel(s string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logging.DEBUG
	case "notice":
		return logging.NOTICE
	case "warn", "warning":
		return logging.WARNING
	case "error":
		return logging.ERROR
	default:
		return logging.INFO
	}
}

func Debug(args ...any) {
	logger.Debug(args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Info(args ...any) {
	logger.Info(args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Warning(args ...any) {
	logger.Warning(args...)
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
}

func Error(args ...any) {
	logger.Error(args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
