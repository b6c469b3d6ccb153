package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var log = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init configures the process-wide logger for the given environment.
// Production gets JSON at info level, everything else text at debug level.
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

func InitWithWriter(env string, w io.Writer) {
	if strings.EqualFold(env, "production") {
		log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	} else {
		log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	slog.SetDefault(log)
}

// L returns the underlying slog logger for components that take one explicitly.
func L() *slog.Logger {
	return log
}

func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

func Fatal(msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}
