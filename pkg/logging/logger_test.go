package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"trace", LevelTrace},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestNewLoggerFiltersAndLabelsTrace(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("info", &buf)
	l.Debug("hidden")
	l.Info("shown", "bodies", 3)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug to be filtered at info, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "bodies=3") {
		t.Errorf("expected info line with attrs, got %q", out)
	}

	buf.Reset()
	l = NewLogger("trace", &buf)
	l.Log(context.Background(), LevelTrace, "step")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected TRACE label, got %q", buf.String())
	}
}
