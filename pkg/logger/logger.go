// Package logger wraps zerolog behind a small printf-style interface used
// across the service.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Logger struct {
	logger *zerolog.Logger
}

func New(level string) *Logger {
	var l zerolog.Level

	switch strings.ToLower(level) {
	case "debug":
		l = zerolog.DebugLevel
	case "warn", "warning":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	default:
		l = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(l)

	skipFrameCount := 3
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + skipFrameCount).
		Logger()

	return &Logger{logger: &logger}
}

func (l *Logger) Debug(message string, args ...any) {
	l.msg(l.logger.Debug(), message, args...)
}

func (l *Logger) Info(message string, args ...any) {
	l.msg(l.logger.Info(), message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.msg(l.logger.Warn(), message, args...)
}

func (l *Logger) Error(message string, args ...any) {
	l.msg(l.logger.Error(), message, args...)
}

func (l *Logger) Fatal(message any, args ...any) {
	switch m := message.(type) {
	case error:
		l.logger.Fatal().Msg(m.Error())
	case string:
		l.msg(l.logger.Fatal(), m, args...)
	default:
		l.logger.Fatal().Msg(fmt.Sprintf("%v", message))
	}
	os.Exit(1)
}

func (l *Logger) msg(event *zerolog.Event, message string, args ...any) {
	if len(args) == 0 {
		event.Msg(message)
		return
	}
	event.Msgf(message, args...)
}
