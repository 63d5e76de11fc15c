package service

import (
	"context"
	"math"
	"strings"

	"github.com/rapPayne/online-store-server/internal/domain"
	"github.com/rapPayne/online-store-server/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateProductInput carries the fields for a new catalog entry.
type CreateProductInput struct {
	Name        string
	Price       float64
	Category    string
	OnHand      int
	Description string
}

// ProductService implements catalog reads for everyone and mutations for
// admin callers. Authorization is enforced at the transport edge; the
// service validates fields regardless of upstream checks.
type ProductService struct {
	products store.Collection[domain.Product]
	logger   *zap.Logger
}

// NewProductService creates a product service over the given store.
func NewProductService(s store.DocumentStore, logger *zap.Logger) *ProductService {
	return &ProductService{products: store.Products(s), logger: logger}
}

// List returns every product in insertion order.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.Get(ctx)
}

// Get returns the product with the given id.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, found, err := s.products.Find(ctx, func(p domain.Product) bool { return p.ID == id })
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	return &product, nil
}

// Search filters products by case-insensitive substring match on name and
// category. Empty filters match everything.
func (s *ProductService) Search(ctx context.Context, name, category string) ([]domain.Product, error) {
	name = strings.ToLower(name)
	category = strings.ToLower(category)
	return s.products.FindAll(ctx, func(p domain.Product) bool {
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			return false
		}
		if category != "" && !strings.Contains(strings.ToLower(p.Category), category) {
			return false
		}
		return true
	})
}

// Create validates the input and persists a new product with a fresh id.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "is required"}
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, &domain.ValidationError{Field: "category", Message: "is required"}
	}
	if input.Price < 0 {
		return nil, &domain.ValidationError{Field: "price", Message: "must not be negative"}
	}
	if input.OnHand < 0 {
		return nil, &domain.ValidationError{Field: "on_hand", Message: "must not be negative"}
	}

	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Price:       input.Price,
		Category:    input.Category,
		OnHand:      input.OnHand,
		Description: input.Description,
	}
	if err := s.products.Add(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return &product, nil
}

// Update applies an arbitrary field patch to the product. The id is
// immutable and numeric fields are validated before the merge.
func (s *ProductService) Update(ctx context.Context, id string, patch map[string]any) (*domain.Product, error) {
	patch = normalizeProductPatch(patch)
	if err := validateProductPatch(patch); err != nil {
		return nil, err
	}

	product, found, err := s.products.UpdateWhere(ctx, func(p domain.Product) bool { return p.ID == id }, patch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	return &product, nil
}

// Delete removes the product. Historical orders keep their snapshotted
// prices and quantities; nothing cascades.
func (s *ProductService) Delete(ctx context.Context, id string) (*domain.Product, error) {
	product, found, err := s.products.RemoveWhere(ctx, func(p domain.Product) bool { return p.ID == id })
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}

	s.logger.Info("product deleted", zap.String("product_id", id))
	return &product, nil
}

func normalizeProductPatch(patch map[string]any) map[string]any {
	out := make(map[string]any, len(patch))
	for k, v := range patch {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

func validateProductPatch(patch map[string]any) error {
	if v, ok := patch["price"]; ok {
		price, ok := v.(float64)
		if !ok || price < 0 {
			return &domain.ValidationError{Field: "price", Message: "must be a non-negative number"}
		}
	}
	if v, ok := patch["on_hand"]; ok {
		onHand, ok := v.(float64)
		if !ok || onHand < 0 || onHand != math.Trunc(onHand) {
			return &domain.ValidationError{Field: "on_hand", Message: "must be a non-negative integer"}
		}
	}
	return nil
}
