package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{Writer: &buf, Level: DEBUG})

	logger.Info("listing", F("parent", "root"), F("pages", 2))

	want := "INFO  listing parent=root, pages=2\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestConsoleLogger_ShortTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{Writer: &buf, Level: INFO})

	logger.WithTraceID("abc").Info("short")

	if !strings.Contains(buf.String(), "[abc] short") {
		t.Errorf("got %q", buf.String())
	}
}

func TestConsoleLogger_Colors(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{Writer: &buf, Level: INFO, ColorEnabled: true})

	logger.Error("boom")

	if !strings.Contains(buf.String(), colorRed+"ERROR") {
		t.Errorf("error level not colored: %q", buf.String())
	}
}

func TestRedactSensitiveData(t *testing.T) {
	tests := []struct {
		in     string
		secret string
	}{
		{"Authorization: Bearer ya29.a0AfH6SMB", "ya29.a0AfH6SMB"},
		{`{"refresh_token": "1//0gabcdef"}`, "1//0gabcdef"},
		{"exchanging code=4/0AX4XfWh-secret", "4/0AX4XfWh-secret"},
		{"client_secret=GOCSPX-xyz", "GOCSPX-xyz"},
	}

	for _, tt := range tests {
		got := redactSensitiveData(tt.in)
		if strings.Contains(got, tt.secret) {
			t.Errorf("redactSensitiveData(%q) = %q, secret still present", tt.in, got)
		}
		if !strings.Contains(got, "[REDACTED]") {
			t.Errorf("redactSensitiveData(%q) = %q, missing marker", tt.in, got)
		}
	}
}

func TestConsoleLogger_RedactionToggle(t *testing.T) {
	var redacted, raw bytes.Buffer
	NewConsoleLogger(ConsoleLoggerConfig{Writer: &redacted, Level: INFO, RedactSensitive: true}).
		Info("token", F("value", "access_token=abc"))
	NewConsoleLogger(ConsoleLoggerConfig{Writer: &raw, Level: INFO}).
		Info("token", F("value", "access_token=abc"))

	if strings.Contains(redacted.String(), "abc") {
		t.Errorf("redacted output leaked: %q", redacted.String())
	}
	if !strings.Contains(raw.String(), "access_token=abc") {
		t.Errorf("raw output altered: %q", raw.String())
	}
}
