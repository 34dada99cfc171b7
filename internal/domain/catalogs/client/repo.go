package client

import (
	"context"
	"time"

	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
)

// Filter narrows client listings.
type Filter struct {
	// Query matches against cedula and name (case-insensitive)
	Query  string
	Active *bool

	Limit  int
	Offset int
}

// Repository is the persistence contract for clients.
type Repository interface {
	Create(ctx context.Context, c *Client) error
	Update(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, clientID id.ID) (*Client, error)
	GetByCedula(ctx context.Context, cedula string) (*Client, error)
	List(ctx context.Context, filter Filter) ([]*Client, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Delete(ctx context.Context, clientID id.ID) error

	// AddPurchase atomically bumps the purchase totals for the client
	// with the given cedula. Unknown cedulas are a no-op.
	AddPurchase(ctx context.Context, cedula string, amount types.Money, at time.Time) error
}
