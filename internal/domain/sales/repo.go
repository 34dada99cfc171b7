package sales

import (
	"context"
	"time"

	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
)

// Filter narrows sale listings.
type Filter struct {
	Status        Status
	InvoiceNumber string
	ClientCedula  string
	SellerID      string
	From          time.Time
	To            time.Time

	Limit  int
	Offset int
}

// Summary aggregates sales over a period.
type Summary struct {
	Count         int64       `db:"count" json:"count"`
	Subtotal      types.Money `db:"subtotal" json:"subtotal"`
	DiscountTotal types.Money `db:"discount_total" json:"discountTotal"`
	TaxTotal      types.Money `db:"tax_total" json:"taxTotal"`
	Total         types.Money `db:"total" json:"total"`
}

// Repository is the persistence contract for sales.
type Repository interface {
	// Create persists the sale. A duplicate invoice number yields a
	// duplicate-entry error so the caller can regenerate and retry.
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
	GetByInvoice(ctx context.Context, invoiceNumber string) (*Sale, error)
	List(ctx context.Context, filter Filter) ([]*Sale, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	UpdateStatus(ctx context.Context, saleID id.ID, status Status) error
	// Summarize aggregates completed sales within [from, to).
	Summarize(ctx context.Context, from, to time.Time) (*Summary, error)
}
