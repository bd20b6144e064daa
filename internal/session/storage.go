package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Persisted keys, shared with the web front end's local storage layout.
const (
	KeyToken    = "token"
	KeyRole     = "role"
	KeyStation  = "stationName"
	KeyUsername = "username"
	KeyFullName = "fullName"
)

var allKeys = []string{KeyToken, KeyRole, KeyStation, KeyUsername, KeyFullName}

// Storage is the persistent key/value area the store survives restarts with.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(keys ...string) error
}

// MemoryStorage keeps values for the process lifetime only.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Len reports how many keys are stored.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// FileStorage persists values as a JSON object in a single 0600 file.
// Every write rewrites the whole file through a rename so a crash never leaves
// half a credential behind.
type FileStorage struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	remove func(string) error
}

// DefaultPath returns the session file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "railmadad", "session.json"), nil
}

// OpenFileStorage loads path if it exists; a missing file is an empty storage.
func OpenFileStorage(path string) (*FileStorage, error) {
	st := &FileStorage{path: path, values: make(map[string]string), remove: os.Remove}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return st, nil
	case err != nil:
		return nil, fmt.Errorf("session file: %w", err)
	}

	if len(raw) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(raw, &st.values); err != nil {
		return nil, fmt.Errorf("session file %s: %w", path, err)
	}
	return st, nil
}

func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return f.flush()
}

func (f *FileStorage) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
	}
	if len(f.values) == 0 {
		return f.wipe()
	}
	return f.flush()
}

// wipe empties the file before removing it, so a failed remove never leaves a
// token for the next start to restore.
func (f *FileStorage) wipe() error {
	if _, err := os.Stat(f.path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := f.flush(); err != nil {
		if tErr := os.Truncate(f.path, 0); tErr != nil {
			return errors.Join(err, tErr)
		}
	}
	// The file is empty by now, so a failed remove leaves nothing to restore.
	_ = f.remove(f.path)
	return nil
}

// Path returns the backing file.
func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) flush() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
