// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

// Package log implements the logger interface used for the optional
// mail generation trace of the mimebuild package
package log

const (
	// PhaseValidate marks log messages emitted during tree validation
	PhaseValidate Phase = iota

	// PhaseResolve marks log messages emitted during resource resolution
	PhaseResolve

	// PhaseEncode marks log messages emitted during mail encoding
	PhaseEncode
)

// Log levels
const (
	// LevelError is the log level for only error log messages
	LevelError Level = iota

	// LevelWarn is the log level for error and warning log messages
	LevelWarn

	// LevelInfo is the log level for error, warning and info log messages
	LevelInfo

	// LevelDebug is the log level for all log messages
	LevelDebug
)

// Level is a type wrapper for an int representing the log level
type Level int

// Phase is a type wrapper for the mail generation phase a log message
// originates from
type Phase int

// Log represents a log message type that holds the originating Phase, a
// Format string and a slice of Messages
type Log struct {
	Phase    Phase
	Format   string
	Messages []interface{}
}

// Logger is the log interface for mimebuild
type Logger interface {
	Debugf(Log)
	Infof(Log)
	Warnf(Log)
	Errorf(Log)
}

// phasePrefix returns the trace prefix string for the Phase of the log
// message
func (l Log) phasePrefix() string {
	switch l.Phase {
	case PhaseValidate:
		return "[validate]"
	case PhaseResolve:
		return "[resolve]"
	case PhaseEncode:
		return "[encode]"
	default:
		return "[mail]"
	}
}

// phaseName returns the attribute value for the Phase of the log message
func (l Log) phaseName() string {
	switch l.Phase {
	case PhaseValidate:
		return "validate"
	case PhaseResolve:
		return "resolve"
	case PhaseEncode:
		return "encode"
	default:
		return "mail"
	}
}
