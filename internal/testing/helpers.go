// Package testing holds fixtures and assertions shared by package tests.
package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dl-alexandre/gdxfer/internal/remote"
	"github.com/dl-alexandre/gdxfer/internal/types"
	"github.com/dl-alexandre/gdxfer/internal/utils"
)

// TestRequestContext creates a standard request context for testing
func TestRequestContext() *types.RequestContext {
	return &types.RequestContext{
		InvolvedFileIDs:   []string{},
		InvolvedParentIDs: []string{},
		RequestType:       types.RequestTypeListOrSearch,
		TraceID:           "test-trace-id",
	}
}

// TestFile creates a complete file entry under parentID
func TestFile(id, title, parentID string) *remote.Entry {
	return &remote.Entry{
		Kind:     remote.KindFile,
		ID:       id,
		Title:    title,
		MimeType: "text/plain",
		Parents:  []remote.ParentRef{{ID: parentID}},
		Complete: true,
		FileSize: 1024,
	}
}

// TestFolder creates a complete folder entry under parentID
func TestFolder(id, title, parentID string) *remote.Entry {
	return &remote.Entry{
		Kind:     remote.KindFolder,
		ID:       id,
		Title:    title,
		MimeType: utils.MimeTypeFolder,
		Parents:  []remote.ParentRef{{ID: parentID}},
		Complete: true,
	}
}

// WriteTempFile creates name under a fresh temp dir with content and returns its path
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path or fails the test
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// AssertNoError is a helper to fail the test if error is not nil
func AssertNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err != nil {
		if len(msgAndArgs) > 0 {
			t.Fatalf("%v: %v", msgAndArgs[0], err)
		}
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError is a helper to fail the test if error is nil
func AssertError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err == nil {
		if len(msgAndArgs) > 0 {
			t.Fatalf("%v: expected error but got nil", msgAndArgs[0])
		}
		t.Fatal("expected error but got nil")
	}
}

// AssertEqual is a helper to fail the test if two values are not equal
func AssertEqual(t *testing.T, got, want interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if got != want {
		if len(msgAndArgs) > 0 {
			t.Fatalf("%v: got %v, want %v", msgAndArgs[0], got, want)
		}
		t.Fatalf("got %v, want %v", got, want)
	}
}

// AssertExitCode fails unless err maps to the given process exit code
func AssertExitCode(t *testing.T, err error, want int) {
	t.Helper()
	if got := utils.ExitCodeFor(err); got != want {
		t.Fatalf("exit code for %v = %d, want %d", err, got, want)
	}
}
