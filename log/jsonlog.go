// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package log

import (
	"fmt"
	"io"
	"log/slog"
)

// JSONlog is the default structured JSON logger that satisfies the Logger interface
type JSONlog struct {
	level Level
	log   *slog.Logger
}

// NewJSON returns a new JSONlog type that satisfies the Logger interface
func NewJSON(output io.Writer, level Level) *JSONlog {
	logOpts := slog.HandlerOptions{}
	switch level {
	case LevelDebug:
		logOpts.Level = slog.LevelDebug
	case LevelInfo:
		logOpts.Level = slog.LevelInfo
	case LevelWarn:
		logOpts.Level = slog.LevelWarn
	case LevelError:
		logOpts.Level = slog.LevelError
	default:
		logOpts.Level = slog.LevelDebug
	}
	logHandler := slog.NewJSONHandler(output, &logOpts)
	return &JSONlog{
		level: level,
		log:   slog.New(logHandler),
	}
}

// logJSONMessage is a helper function to handle different log levels and formats for JSONlog.
func logJSONMessage(logData Log, logFunc func(msg string, args ...any)) {
	logFunc(fmt.Sprintf(logData.Format, logData.Messages...),
		slog.String("phase", logData.phaseName()))
}

// Debugf logs a debug message via the structured slog logger
func (l *JSONlog) Debugf(log Log) {
	if l.level >= LevelDebug {
		logJSONMessage(log, l.log.Debug)
	}
}

// Infof logs an info message via the structured slog logger
func (l *JSONlog) Infof(log Log) {
	if l.level >= LevelInfo {
		logJSONMessage(log, l.log.Info)
	}
}

// Warnf logs a warn message via the structured slog logger
func (l *JSONlog) Warnf(log Log) {
	if l.level >= LevelWarn {
		logJSONMessage(log, l.log.Warn)
	}
}

// Errorf logs an error message via the structured slog logger
func (l *JSONlog) Errorf(log Log) {
	if l.level >= LevelError {
		logJSONMessage(log, l.log.Error)
	}
}
