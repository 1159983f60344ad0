// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var b bytes.Buffer
	l := NewJSON(&b, LevelDebug)
	if l.level != LevelDebug {
		t.Error("Expected level to be LevelDebug, got ", l.level)
	}
	if l.log == nil {
		t.Error("slog logger not initialized")
	}
}

func TestJSONDebugf(t *testing.T) {
	var b bytes.Buffer
	l := NewJSON(&b, LevelDebug)

	l.Debugf(Log{Phase: PhaseEncode, Format: "test %s", Messages: []interface{}{"foo"}})
	var entry map[string]interface{}
	if err := json.Unmarshal(b.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log entry, got %q: %s", b.String(), err)
	}
	if entry["msg"] != "test foo" {
		t.Errorf("Expected msg %q, got %q", "test foo", entry["msg"])
	}
	if entry["phase"] != "encode" {
		t.Errorf("Expected phase %q, got %q", "encode", entry["phase"])
	}

	b.Reset()
	l.level = LevelInfo
	l.Debugf(Log{Phase: PhaseEncode, Format: "test"})
	if b.String() != "" {
		t.Error("Debug message was not expected to be logged")
	}
}

func TestJSONWarnf(t *testing.T) {
	var b bytes.Buffer
	l := NewJSON(&b, LevelWarn)

	l.Warnf(Log{Phase: PhaseValidate, Format: "warn %d", Messages: []interface{}{42}})
	if !strings.Contains(b.String(), `"msg":"warn 42"`) {
		t.Errorf("Expected warn message in output, got %q", b.String())
	}
	if !strings.Contains(b.String(), `"phase":"validate"`) {
		t.Errorf("Expected validate phase in output, got %q", b.String())
	}
}

func TestJSONErrorf(t *testing.T) {
	var b bytes.Buffer
	l := NewJSON(&b, LevelError)

	l.Errorf(Log{Phase: PhaseResolve, Format: "boom"})
	if !strings.Contains(b.String(), `"level":"ERROR"`) {
		t.Errorf("Expected error level in output, got %q", b.String())
	}

	b.Reset()
	l.Warnf(Log{Phase: PhaseResolve, Format: "suppressed"})
	if b.String() != "" {
		t.Error("Warn message was not expected to be logged at error level")
	}
}

func TestJSONLevelFallback(t *testing.T) {
	var b bytes.Buffer
	l := NewJSON(&b, Level(99))
	l.Debugf(Log{Phase: PhaseEncode, Format: "test"})
	if b.String() == "" {
		t.Error("Expected unknown level to fall back to debug logging")
	}
}
