package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rapPayne/online-store-server/internal/domain"
)

// FileStore persists the whole document as one JSON file. Writes go to a
// temporary file in the same directory followed by a rename, so a reported
// failure means the previous on-disk state is intact.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a store backed by the file at path. The file is not
// touched until Initialize or the first operation.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Initialize creates the backing file with empty collections if it does not
// exist yet. An existing file, readable or not, is left alone.
func (s *FileStore) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return &domain.StorageError{Op: "stat", Err: err}
	}

	return s.save(NewDocument())
}

// View loads the current document and passes it to fn. The document must not
// be retained past fn's return. A corrupt or unreadable file yields an
// empty-collections document to fn along with a StorageError; the file on
// disk is never overwritten on the read path.
func (s *FileStore) View(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		fn(NewDocument())
		return err
	}
	return fn(doc)
}

// Update runs fn against the freshly loaded document and persists the result
// if fn returns nil. The read-modify-write cycle holds the store's write
// lock for its entire duration, so no two mutations interleave.
func (s *FileStore) Update(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *FileStore) load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		// One-time initialization: persist the empty document so later
		// readers observe the same state.
		doc := NewDocument()
		if err := s.save(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Err: err}
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, &domain.StorageError{Op: "decode", Err: err}
	}
	return doc, nil
}

func (s *FileStore) save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &domain.StorageError{Op: "encode", Err: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return &domain.StorageError{Op: "write", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &domain.StorageError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.StorageError{Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &domain.StorageError{Op: "write", Err: fmt.Errorf("rename: %w", err)}
	}
	return nil
}

var _ DocumentStore = (*FileStore)(nil)
