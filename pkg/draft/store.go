package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// MemoryStore keeps the identity in process memory.
type MemoryStore struct {
	mu sync.Mutex
	id Identity
}

// NewMemoryStore returns a store seeded with id, which may be empty.
func NewMemoryStore(id Identity) *MemoryStore {
	return &MemoryStore{id: id}
}

func (s *MemoryStore) Load(context.Context) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

func (s *MemoryStore) Save(_ context.Context, id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	return nil
}

// identityKey is the single key written by FileStore.
const identityKey = "draftId"

// FileStore keeps the identity in a small JSON document on disk so a later
// run of the CLI resumes the same draft.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(context.Context) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("draft: read identity file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", nil
	}
	var doc map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("draft: decode identity file %s: %w", s.path, err)
	}
	return Identity(strings.TrimSpace(doc[identityKey])), nil
}

func (s *FileStore) Save(_ context.Context, id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(map[string]string{identityKey: string(id)})
	if err != nil {
		return fmt.Errorf("draft: encode identity: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("draft: create identity dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".draft-*.json")
	if err != nil {
		return fmt.Errorf("draft: create identity temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("draft: write identity: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("draft: close identity temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("draft: replace identity file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("draft: remove identity file: %w", err)
	}
	return nil
}
