package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")
	t.Cleanup(func() { defaultLogger = nil })

	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below warn leaked: %s", out)
	}
	if !strings.Contains(out, `"message":"warn 3"`) {
		t.Errorf("missing warn line: %s", out)
	}
	if !strings.Contains(out, `"level":"error"`) {
		t.Errorf("missing error level: %s", out)
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "verbose")
	t.Cleanup(func() { defaultLogger = nil })

	Debug("hidden")
	Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug should be filtered at info: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("info line missing: %s", out)
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	defaultLogger = nil
	Info("no logger configured")
}
