package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// capture builds a logger writing JSON into the returned buffer.
func capture(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return l, &buf
}

// lastEntry decodes the final log line in buf.
func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", lines[len(lines)-1], err)
	}
	return entry
}

func TestNew_JSONOutput(t *testing.T) {
	l, buf := capture(t, "info")

	l.Info("session opened", "tenant", "chesed")

	entry := lastEntry(t, buf)
	if entry["msg"] != "session opened" {
		t.Errorf("msg = %v, want session opened", entry["msg"])
	}
	if entry["tenant"] != "chesed" {
		t.Errorf("tenant = %v, want chesed", entry["tenant"])
	}
}

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	l.Info("hello")

	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q, want msg=hello", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := capture(t, "warn")

	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("output contains filtered entries: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("output missing warn entry: %q", out)
	}
}

func TestSetLevel_AffectsExistingLoggers(t *testing.T) {
	l, buf := capture(t, "info")

	l.Debug("before")
	SetLevel("debug")
	defer SetLevel("info")
	l.Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Error("debug entry logged before SetLevel")
	}
	if !strings.Contains(out, "after") {
		t.Error("debug entry missing after SetLevel")
	}
}

func TestWith_CarriesAttrs(t *testing.T) {
	l, buf := capture(t, "info")

	l.With("component", "resolver").Info("cascade done")

	entry := lastEntry(t, buf)
	if entry["component"] != "resolver" {
		t.Errorf("component = %v, want resolver", entry["component"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"WARN", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in).String(); got != tt.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDefaultLogger_Replaceable(t *testing.T) {
	l, buf := capture(t, "info")
	old := Default()
	SetDefault(l)
	defer SetDefault(old)

	Info("via default")

	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("default logger output = %q", buf.String())
	}
}
