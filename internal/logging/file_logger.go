package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileSink is the open log file shared by a FileLogger and its trace-scoped children
type fileSink struct {
	mu            sync.Mutex
	file          *os.File
	path          string
	maxFileSize   int64
	currentSize   int64
	rotateEnabled bool
	rotations     int
}

// FileLogger writes one JSON LogEntry per line
type FileLogger struct {
	sink            *fileSink
	level           *LogLevel
	traceID         string
	redactSensitive bool
}

// FileLoggerConfig contains configuration for file logger
type FileLoggerConfig struct {
	FilePath        string
	Level           LogLevel
	MaxFileSize     int64 // bytes, 0 disables rotation
	RotateEnabled   bool
	RedactSensitive bool
}

// NewFileLogger opens (appending) or creates the log file
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	level := config.Level
	return &FileLogger{
		sink: &fileSink{
			file:          file,
			path:          config.FilePath,
			maxFileSize:   config.MaxFileSize,
			currentSize:   info.Size(),
			rotateEnabled: config.RotateEnabled && config.MaxFileSize > 0,
		},
		level:           &level,
		redactSensitive: config.RedactSensitive,
	}, nil
}

func (l *FileLogger) log(level LogLevel, msg string, fields ...Field) {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if level < *l.level || s.file == nil {
		return
	}

	if s.rotateEnabled && s.currentSize >= s.maxFileSize {
		if err := s.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rotate log file: %v\n", err)
			if s.file == nil {
				return
			}
		}
	}

	if l.redactSensitive {
		msg = redactSensitiveData(msg)
	}
	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Message:   msg,
		TraceID:   l.traceID,
	}
	if len(fields) > 0 {
		entry.Fields = make(map[string]interface{}, len(fields))
		for _, field := range fields {
			value := field.Value
			if str, ok := value.(string); ok && l.redactSensitive {
				value = redactSensitiveData(str)
			}
			entry.Fields[field.Key] = value
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal log entry: %v\n", err)
		return
	}

	n, err := s.file.Write(append(data, '\n'))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write log entry: %v\n", err)
		return
	}
	s.currentSize += int64(n)
}

// rotate renames the current file aside and starts a fresh one.
// The sequence suffix keeps rotations within the same second distinct.
func (s *fileSink) rotate() error {
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	s.rotations++
	rotatedPath := fmt.Sprintf("%s.%s.%d", s.path, time.Now().UTC().Format("20060102-150405"), s.rotations)
	renameErr := os.Rename(s.path, rotatedPath)

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		s.file = nil
		return fmt.Errorf("failed to reopen log file: %w", err)
	}
	s.file = file
	if renameErr != nil {
		return fmt.Errorf("failed to rename log file: %w", renameErr)
	}
	s.currentSize = 0
	return nil
}

func (l *FileLogger) Debug(msg string, fields ...Field) { l.log(DEBUG, msg, fields...) }
func (l *FileLogger) Info(msg string, fields ...Field)  { l.log(INFO, msg, fields...) }
func (l *FileLogger) Warn(msg string, fields ...Field)  { l.log(WARN, msg, fields...) }
func (l *FileLogger) Error(msg string, fields ...Field) { l.log(ERROR, msg, fields...) }

// WithTraceID returns a logger writing to the same file and sharing its level
func (l *FileLogger) WithTraceID(traceID string) Logger {
	return &FileLogger{
		sink:            l.sink,
		level:           l.level,
		traceID:         traceID,
		redactSensitive: l.redactSensitive,
	}
}

func (l *FileLogger) WithContext(ctx context.Context) Logger {
	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		return l
	}
	return l.WithTraceID(traceID)
}

func (l *FileLogger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	*l.level = level
}

// Close closes the underlying file. Children created by WithTraceID stop writing too.
func (l *FileLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.file == nil {
		return nil
	}
	err := l.sink.file.Close()
	l.sink.file = nil
	return err
}
