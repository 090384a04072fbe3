package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists named JSON documents. Each document is replaced wholesale on
// every save (read-modify-write, atomic replace semantics).
type Store interface {
	// Load returns the document bytes and whether the document exists.
	Load(name string) ([]byte, bool, error)
	// Save replaces the document.
	Save(name string, data []byte) error
}

// FileStore keeps each document as a JSON file under a data directory.
type FileStore struct {
	dir   string
	mutex sync.Mutex
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) path(name string) string {
	return filepath.Join(fs.dir, name+".json")
}

func (fs *FileStore) Load(name string) ([]byte, bool, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	data, err := os.ReadFile(fs.path(name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, true, nil
}

// Save writes to a temp file and renames it over the target so a crash
// mid-write never leaves a torn document.
func (fs *FileStore) Save(name string, data []byte) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	tmp := fs.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, fs.path(name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// MemoryStore is an in-memory Store used in tests and when no persistence is
// configured.
type MemoryStore struct {
	docs  map[string][]byte
	mutex sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (ms *MemoryStore) Load(name string) ([]byte, bool, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	data, ok := ms.docs[name]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (ms *MemoryStore) Save(name string, data []byte) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	ms.docs[name] = cp
	return nil
}
