package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestVerbosityGating(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)
	defer Initialize(LevelQuiet, &buf)

	Info("visible message", "key", "value")
	Debug("hidden message")

	out := buf.String()
	if !strings.Contains(out, "visible message") {
		t.Errorf("info output missing: %q", out)
	}
	if strings.Contains(out, "hidden message") {
		t.Errorf("debug output must be gated at info level: %q", out)
	}
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelDebug, &buf)
	defer Initialize(LevelQuiet, &buf)

	if !IsDebug() {
		t.Error("IsDebug() = false at debug level")
	}
	if Verbosity() != LevelDebug {
		t.Errorf("Verbosity() = %d, want %d", Verbosity(), LevelDebug)
	}

	Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug output missing: %q", buf.String())
	}
}

func TestWarnAlwaysLogged(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelQuiet, &buf)

	Warn("something odd")
	if !strings.Contains(buf.String(), "something odd") {
		t.Errorf("warn output missing: %q", buf.String())
	}
}
