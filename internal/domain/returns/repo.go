package returns

import (
	"context"
	"time"

	"puntoventa/internal/core/id"
)

// Filter narrows return listings.
type Filter struct {
	SaleID       id.ID
	ReturnNumber string
	Status       Status
	From         time.Time
	To           time.Time

	Limit  int
	Offset int
}

// Repository is the persistence contract for returns.
type Repository interface {
	// Create persists the return. A duplicate return number yields a
	// duplicate-entry error so the caller can regenerate and retry.
	Create(ctx context.Context, r *Return) error
	GetByID(ctx context.Context, returnID id.ID) (*Return, error)
	List(ctx context.Context, filter Filter) ([]*Return, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// ListBySale returns every return recorded against a sale.
	ListBySale(ctx context.Context, saleID id.ID) ([]*Return, error)
}
