package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

// ErrNoCredentials is returned by a StorageBackend holding nothing
var ErrNoCredentials = errors.New("no stored credentials")

// StorageBackend persists the credentials blob. The blob is opaque to the store.
type StorageBackend interface {
	Save(data []byte) error
	Load() ([]byte, error)
	Delete() error
	Name() string
}

const (
	credFilePerms = 0o600
	credDirPerms  = 0o700
)

// FileStorage keeps the blob in a single file, mycreds.txt by default
type FileStorage struct {
	path string
}

// NewFileStorage creates a file storage backend at path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Save writes the blob atomically (temp file + rename) with owner-only permissions
func (s *FileStorage) Save(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, credDirPerms); err != nil {
		return fmt.Errorf("creating credentials directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mycreds-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp credentials file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(credFilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("setting credentials permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing credentials: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	success = true
	return nil
}

// Load reads the blob. A missing or empty file yields ErrNoCredentials.
func (s *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, ErrNoCredentials
	}
	return data, nil
}

func (s *FileStorage) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStorage) Name() string {
	return "file:" + s.path
}

// KeyringStorage uses the system keyring for credential storage
type KeyringStorage struct {
	serviceName string
	key         string
}

// NewKeyringStorage creates a keyring storage backend
func NewKeyringStorage(serviceName, key string) *KeyringStorage {
	return &KeyringStorage{serviceName: serviceName, key: key}
}

func (s *KeyringStorage) Save(data []byte) error {
	if err := keyring.Set(s.serviceName, s.key, string(data)); err != nil {
		return fmt.Errorf("saving to keyring: %w", err)
	}
	return nil
}

func (s *KeyringStorage) Load() ([]byte, error) {
	data, err := keyring.Get(s.serviceName, s.key)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && data == "") {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("reading from keyring: %w", err)
	}
	return []byte(data), nil
}

func (s *KeyringStorage) Delete() error {
	if err := keyring.Delete(s.serviceName, s.key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

func (s *KeyringStorage) Name() string {
	return "system-keyring"
}
