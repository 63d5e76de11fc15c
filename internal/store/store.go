package store

import (
	"context"

	"github.com/rapPayne/online-store-server/internal/domain"
)

// Document is the entire persisted dataset: one JSON document holding the
// three named collections. Insertion order within a collection is preserved.
type Document struct {
	Products []domain.Product `json:"products"`
	Users    []domain.User    `json:"users"`
	Orders   []domain.Order   `json:"orders"`
}

// NewDocument returns a document with empty collections for every known kind.
func NewDocument() *Document {
	return &Document{
		Products: []domain.Product{},
		Users:    []domain.User{},
		Orders:   []domain.Order{},
	}
}

// DocumentStore is the single source of truth for all collections. Each call
// observes the latest persisted state; no in-memory cache is carried across
// operations.
//
// All mutations on one store instance share a single mutual-exclusion domain:
// Update runs fn as an atomic read-modify-write transaction, and the change
// is durable if and only if Update returns nil. View may run concurrently
// with other Views but always observes a fully-applied prior state.
type DocumentStore interface {
	View(ctx context.Context, fn func(doc *Document) error) error
	Update(ctx context.Context, fn func(doc *Document) error) error
}
