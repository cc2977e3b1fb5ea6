package auth

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mycreds.txt")
	storage := NewFileStorage(path)

	if _, err := storage.Load(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("Load() on missing file = %v, want ErrNoCredentials", err)
	}

	blob := []byte(`{"access_token":"at"}`)
	if err := storage.Save(blob); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := storage.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != string(blob) {
		t.Errorf("Load() = %s, want %s", got, blob)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("mode = %v, want 0600", info.Mode().Perm())
		}
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}

	if err := storage.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := storage.Delete(); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestFileStorage_EmptyFileIsNoCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mycreds.txt")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStorage(path).Load(); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Load() = %v, want ErrNoCredentials", err)
	}
}

func TestFileStorage_Overwrite(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "mycreds.txt"))

	for _, blob := range []string{"first", "second"} {
		if err := storage.Save([]byte(blob)); err != nil {
			t.Fatalf("Save(%s) error = %v", blob, err)
		}
	}
	got, _ := storage.Load()
	if string(got) != "second" {
		t.Errorf("Load() = %s, want second", got)
	}
}

func TestKeyringStorage(t *testing.T) {
	keyring.MockInit()
	storage := NewKeyringStorage("gdxfer-test", "credentials")

	if _, err := storage.Load(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("Load() on empty keyring = %v, want ErrNoCredentials", err)
	}
	if err := storage.Save([]byte("blob")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := storage.Load()
	if err != nil || string(got) != "blob" {
		t.Fatalf("Load() = %q, %v", got, err)
	}
	if err := storage.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := storage.Delete(); err != nil {
		t.Errorf("Delete() of missing entry = %v", err)
	}
	if storage.Name() != "system-keyring" {
		t.Errorf("Name() = %s", storage.Name())
	}
}

func TestNewStorage(t *testing.T) {
	if s, err := NewStorage("file", "/tmp/x/mycreds.txt"); err != nil || s.Name() != "file:/tmp/x/mycreds.txt" {
		t.Errorf("file store = %v, %v", s, err)
	}
	if s, err := NewStorage("keyring", ""); err != nil || s.Name() != "system-keyring" {
		t.Errorf("keyring store = %v, %v", s, err)
	}
	if _, err := NewStorage("vault", ""); err == nil {
		t.Error("expected error for unknown store")
	}
}
