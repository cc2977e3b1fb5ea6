package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFileLogger(t *testing.T, level LogLevel, maxSize int64) (*FileLogger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "gdxfer.log")
	logger, err := NewFileLogger(FileLoggerConfig{
		FilePath:        logPath,
		Level:           level,
		MaxFileSize:     maxSize,
		RotateEnabled:   maxSize > 0,
		RedactSensitive: true,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	t.Cleanup(func() {
		if err := logger.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return logger, logPath
}

func readEntries(t *testing.T, path string) []LogEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	var entries []LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("Failed to parse log line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestFileLogger_CreatesNestedDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "nested", "gdxfer.log")
	logger, err := NewFileLogger(FileLoggerConfig{FilePath: logPath, Level: INFO})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestFileLogger_WritesJSONEntries(t *testing.T) {
	logger, path := newTestFileLogger(t, DEBUG, 0)

	logger.Debug("listing folder", F("parent", "root"))
	logger.Info("upload finished", F("bytes", 123))
	logger.Warn("retrying request")
	logger.Error("download failed", F("fatal", true))

	entries := readEntries(t, path)
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	if entries[0].Level != "DEBUG" || entries[0].Message != "listing folder" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[0].Fields["parent"] != "root" {
		t.Errorf("Fields[parent] = %v, want root", entries[0].Fields["parent"])
	}
	// JSON numbers decode as float64
	if entries[1].Fields["bytes"] != float64(123) {
		t.Errorf("Fields[bytes] = %v, want 123", entries[1].Fields["bytes"])
	}
	if entries[2].Fields != nil {
		t.Errorf("entry without fields should omit them, got %v", entries[2].Fields)
	}
}

func TestFileLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level LogLevel
		want  int
	}{
		{"debug keeps all", DEBUG, 4},
		{"info drops debug", INFO, 3},
		{"warn keeps warn and error", WARN, 2},
		{"error keeps error", ERROR, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, path := newTestFileLogger(t, tt.level, 0)
			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			if got := len(readEntries(t, path)); got != tt.want {
				t.Errorf("got %d entries, want %d", got, tt.want)
			}
		})
	}
}

func TestFileLogger_TraceID(t *testing.T) {
	logger, path := newTestFileLogger(t, INFO, 0)

	logger.WithTraceID("trace-direct").Info("direct")
	ctx := ContextWithTraceID(context.Background(), "trace-ctx")
	logger.WithContext(ctx).Info("from context")
	logger.WithContext(context.Background()).Info("untraced")

	entries := readEntries(t, path)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	want := []string{"trace-direct", "trace-ctx", ""}
	for i, entry := range entries {
		if entry.TraceID != want[i] {
			t.Errorf("entry %d TraceID = %q, want %q", i, entry.TraceID, want[i])
		}
	}
}

func TestFileLogger_ChildSharesLevel(t *testing.T) {
	logger, path := newTestFileLogger(t, DEBUG, 0)
	child := logger.WithTraceID("abc")

	logger.SetLevel(ERROR)
	child.Info("suppressed")
	child.Error("kept")

	entries := readEntries(t, path)
	if len(entries) != 1 || entries[0].Message != "kept" {
		t.Errorf("entries = %+v, want only the error", entries)
	}
}

func TestFileLogger_Redacts(t *testing.T) {
	logger, path := newTestFileLogger(t, INFO, 0)
	logger.Info("token refreshed access_token=ya29.secret", F("header", "Bearer abc.def"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "ya29.secret") || strings.Contains(string(data), "abc.def") {
		t.Errorf("log file leaked a token: %s", data)
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logger, path := newTestFileLogger(t, INFO, 100)

	for i := 0; i < 20; i++ {
		logger.Info("Downloading Photos/2024/IMG_0001.jpg -> Photos/2024")
	}

	files, err := filepath.Glob(path + "*")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) < 3 {
		t.Errorf("expected the live file plus several rotated files, got %v", files)
	}
}

func TestFileLogger_CloseTwice(t *testing.T) {
	logger, _ := newTestFileLogger(t, INFO, 0)
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	logger.Info("after close is dropped")
}
