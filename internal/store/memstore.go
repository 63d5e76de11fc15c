package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rapPayne/online-store-server/internal/domain"
)

// MemStore is an in-memory DocumentStore honoring the same atomicity
// contract as FileStore. It backs tests that need the store without disk
// I/O, and its SaveHook lets tests inject persistence failures.
type MemStore struct {
	mu  sync.RWMutex
	doc *Document

	// SaveHook, when set, runs before a mutation is committed. A non-nil
	// return aborts the Update and discards the change.
	SaveHook func(doc *Document) error
}

// NewMemStore returns a store initialized with empty collections.
func NewMemStore() *MemStore {
	return &MemStore{doc: NewDocument()}
}

// View passes a copy of the current document to fn.
func (s *MemStore) View(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := cloneDocument(s.doc)
	if err != nil {
		return err
	}
	return fn(doc)
}

// Update applies fn to a copy of the document and swaps it in only if fn and
// the SaveHook both succeed, so a reported failure leaves state unchanged.
func (s *MemStore) Update(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := cloneDocument(s.doc)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	if s.SaveHook != nil {
		if err := s.SaveHook(doc); err != nil {
			return err
		}
	}
	s.doc = doc
	return nil
}

func cloneDocument(doc *Document) (*Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, &domain.StorageError{Op: "encode", Err: err}
	}
	clone := NewDocument()
	if err := json.Unmarshal(data, clone); err != nil {
		return nil, &domain.StorageError{Op: "decode", Err: err}
	}
	return clone, nil
}

var _ DocumentStore = (*MemStore)(nil)
