package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rapPayne/online-store-server/internal/domain"
)

// Collection names within the document.
const (
	CollectionProducts = "products"
	CollectionUsers    = "users"
	CollectionOrders   = "orders"
)

// Collection is a typed, predicate-driven view over one named collection of
// a DocumentStore. Predicates are plain functions over record values; they
// must not capture mutable shared state.
type Collection[T any] struct {
	store DocumentStore
	name  string
	slice func(doc *Document) *[]T
}

// Products returns the typed view over the products collection.
func Products(s DocumentStore) Collection[domain.Product] {
	return Collection[domain.Product]{
		store: s,
		name:  CollectionProducts,
		slice: func(doc *Document) *[]domain.Product { return &doc.Products },
	}
}

// Users returns the typed view over the users collection.
func Users(s DocumentStore) Collection[domain.User] {
	return Collection[domain.User]{
		store: s,
		name:  CollectionUsers,
		slice: func(doc *Document) *[]domain.User { return &doc.Users },
	}
}

// Orders returns the typed view over the orders collection.
func Orders(s DocumentStore) Collection[domain.Order] {
	return Collection[domain.Order]{
		store: s,
		name:  CollectionOrders,
		slice: func(doc *Document) *[]domain.Order { return &doc.Orders },
	}
}

// Name returns the collection's name within the document.
func (c Collection[T]) Name() string { return c.name }

// Get returns all records in insertion order.
func (c Collection[T]) Get(ctx context.Context) ([]T, error) {
	var out []T
	err := c.store.View(ctx, func(doc *Document) error {
		out = append([]T{}, *c.slice(doc)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Find returns the first record matching pred.
func (c Collection[T]) Find(ctx context.Context, pred func(T) bool) (T, bool, error) {
	var (
		out   T
		found bool
	)
	err := c.store.View(ctx, func(doc *Document) error {
		for _, rec := range *c.slice(doc) {
			if pred(rec) {
				out, found = rec, true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return out, found, nil
}

// FindAll returns every record matching pred, preserving insertion order.
func (c Collection[T]) FindAll(ctx context.Context, pred func(T) bool) ([]T, error) {
	out := []T{}
	err := c.store.View(ctx, func(doc *Document) error {
		for _, rec := range *c.slice(doc) {
			if pred(rec) {
				out = append(out, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Add appends the record and persists the document.
func (c Collection[T]) Add(ctx context.Context, rec T) error {
	return c.store.Update(ctx, func(doc *Document) error {
		s := c.slice(doc)
		*s = append(*s, rec)
		return nil
	})
}

// UpdateWhere merges patch into the first record matching pred and persists.
// The merge is shallow: patch fields overwrite, unspecified fields are
// retained, and nested values in the patch replace rather than deep-merge.
// The updated record is returned, or found=false if nothing matched.
func (c Collection[T]) UpdateWhere(ctx context.Context, pred func(T) bool, patch map[string]any) (T, bool, error) {
	var (
		out   T
		found bool
	)
	err := c.store.Update(ctx, func(doc *Document) error {
		s := c.slice(doc)
		for i, rec := range *s {
			if !pred(rec) {
				continue
			}
			merged, err := mergePatch(rec, patch)
			if err != nil {
				return err
			}
			(*s)[i] = merged
			out, found = merged, true
			return nil
		}
		return errNoMatch
	})
	if err == errNoMatch {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return out, found, nil
}

// RemoveWhere removes the first record matching pred and persists. The
// removed record is returned, or found=false if nothing matched.
func (c Collection[T]) RemoveWhere(ctx context.Context, pred func(T) bool) (T, bool, error) {
	var (
		out   T
		found bool
	)
	err := c.store.Update(ctx, func(doc *Document) error {
		s := c.slice(doc)
		for i, rec := range *s {
			if !pred(rec) {
				continue
			}
			out, found = rec, true
			*s = append((*s)[:i], (*s)[i+1:]...)
			return nil
		}
		return errNoMatch
	})
	if err == errNoMatch {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return out, found, nil
}

// errNoMatch aborts an Update without persisting when no record matched.
var errNoMatch = fmt.Errorf("no record matched")

// mergePatch applies a shallow JSON merge of patch onto rec.
func mergePatch[T any](rec T, patch map[string]any) (T, error) {
	var zero T

	data, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("encode record: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return zero, fmt.Errorf("decode record: %w", err)
	}

	for k, v := range patch {
		fields[k] = v
	}

	data, err = json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("encode patch: %w", err)
	}
	var merged T
	if err := json.Unmarshal(data, &merged); err != nil {
		return zero, &domain.ValidationError{Message: fmt.Sprintf("patch does not fit record: %v", err)}
	}
	return merged, nil
}
