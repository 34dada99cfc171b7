package product

import (
	"context"

	"puntoventa/internal/core/id"
)

// Filter narrows product listings.
type Filter struct {
	// Query matches against code, barcode and name (case-insensitive)
	Query    string
	Category string
	Brand    string
	// Active filters by the active flag when set
	Active *bool
	// LowStock keeps only products at or below their minimum stock
	LowStock bool

	Limit  int
	Offset int
}

// Repository is the persistence contract for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	// Update persists changes with optimistic locking on Version.
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)
	List(ctx context.Context, filter Filter) ([]*Product, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// Delete deactivates the product (soft delete).
	Delete(ctx context.Context, productID id.ID) error

	// ApplyStockDelta atomically adjusts stock by deltaUnits (negative for
	// sales) and returns the updated product. The adjustment is a single
	// conditional statement: it fails with an insufficient-stock error
	// rather than ever driving total stock negative, even under
	// concurrent access.
	ApplyStockDelta(ctx context.Context, productID id.ID, deltaUnits int64) (*Product, error)
}
