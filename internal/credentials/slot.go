package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// Slot is one key/value storage location.
type Slot interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemorySlot lives as long as the process, like a browser tab's session storage.
type MemorySlot struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string]string)}
}

func (m *MemorySlot) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemorySlot) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemorySlot) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FileSlot keeps its keys in one JSON file. Every write replaces the file atomically.
type FileSlot struct {
	Path string
	mu   sync.Mutex
}

// NewFileSlot ensures the parent directory of path exists.
func NewFileSlot(path string) (*FileSlot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	return &FileSlot{Path: path}, nil
}

func (f *FileSlot) read() (map[string]string, error) {
	data := make(map[string]string)
	content, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("credentials: corrupt slot file %s: %w", f.Path, err)
	}
	return data, nil
}

func (f *FileSlot) write(data map[string]string) error {
	if len(data) == 0 {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}

	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tempPath := f.Path + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0600); err != nil {
		return err
	}
	return os.Rename(tempPath, f.Path)
}

func (f *FileSlot) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *FileSlot) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return err
	}
	data[key] = value
	return f.write(data)
}

func (f *FileSlot) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.write(data)
}

// SessionFile is the session slot path of the current terminal: one file per
// parent shell, so closing the terminal ends the session.
func SessionFile() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("portal-session-%d.json", os.Getppid()))
}
