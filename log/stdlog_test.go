// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var b bytes.Buffer
	l := New(&b, LevelDebug)
	if l.level != LevelDebug {
		t.Error("Expected level to be LevelDebug, got ", l.level)
	}
	if l.err == nil || l.warn == nil || l.info == nil || l.debug == nil {
		t.Error("Loggers not initialized")
	}
}

func TestDebugf(t *testing.T) {
	var b bytes.Buffer
	l := New(&b, LevelDebug)

	l.Debugf(Log{Phase: PhaseEncode, Format: "test %s", Messages: []interface{}{"foo"}})
	expected := "DEBUG: [encode] test foo"
	if !strings.Contains(b.String(), expected) {
		t.Errorf("Expected log message to contain %q, got %q", expected, b.String())
	}

	b.Reset()
	l.level = LevelInfo
	l.Debugf(Log{Phase: PhaseEncode, Format: "test %s", Messages: []interface{}{"foo"}})
	if b.String() != "" {
		t.Error("Debug message was not expected to be logged")
	}
}

func TestInfof(t *testing.T) {
	var b bytes.Buffer
	l := New(&b, LevelInfo)

	l.Infof(Log{Phase: PhaseResolve, Format: "test %s", Messages: []interface{}{"foo"}})
	expected := " INFO: [resolve] test foo"
	if !strings.Contains(b.String(), expected) {
		t.Errorf("Expected log message to contain %q, got %q", expected, b.String())
	}

	b.Reset()
	l.level = LevelWarn
	l.Infof(Log{Phase: PhaseResolve, Format: "test %s", Messages: []interface{}{"foo"}})
	if b.String() != "" {
		t.Error("Info message was not expected to be logged")
	}
}

func TestWarnf(t *testing.T) {
	var b bytes.Buffer
	l := New(&b, LevelWarn)

	l.Warnf(Log{Phase: PhaseValidate, Format: "test %s", Messages: []interface{}{"foo"}})
	expected := " WARN: [validate] test foo"
	if !strings.Contains(b.String(), expected) {
		t.Errorf("Expected log message to contain %q, got %q", expected, b.String())
	}

	b.Reset()
	l.level = LevelError
	l.Warnf(Log{Phase: PhaseValidate, Format: "test %s", Messages: []interface{}{"foo"}})
	if b.String() != "" {
		t.Error("Warn message was not expected to be logged")
	}
}

func TestErrorf(t *testing.T) {
	var b bytes.Buffer
	l := New(&b, LevelError)

	l.Errorf(Log{Phase: PhaseEncode, Format: "test %s", Messages: []interface{}{"foo"}})
	expected := "ERROR: [encode] test foo"
	if !strings.Contains(b.String(), expected) {
		t.Errorf("Expected log message to contain %q, got %q", expected, b.String())
	}
}

func TestUnknownPhasePrefix(t *testing.T) {
	var b bytes.Buffer
	l := New(&b, LevelDebug)
	l.Debugf(Log{Phase: Phase(99), Format: "test"})
	if !strings.Contains(b.String(), "[mail] test") {
		t.Errorf("Expected fallback phase prefix, got %q", b.String())
	}
}
