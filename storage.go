package termsnap

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Storage is a string key-value store for persisted records.
type Storage interface {
	// Get returns the value of key. A missing key is not an error: ok is false.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// MemoryStorage keeps records in memory. Setting Err makes every call fail.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
	Err    error
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return "", false, m.Err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	delete(m.values, key)
	return nil
}

// FileStorage keeps each record in Dir/<key>.json.
type FileStorage struct {
	Dir string
}

func (f FileStorage) path(key string) string {
	return filepath.Join(f.Dir, filepath.Base(key)+".json")
}

func (f FileStorage) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Set writes the record through a temporary file so readers never see a partial write.
func (f FileStorage) Set(key, value string) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.Dir, filepath.Base(key)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f FileStorage) Remove(key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Ensure implementations satisfy their interfaces
var _ Storage = (*MemoryStorage)(nil)
var _ Storage = (*FileStorage)(nil)
