// Package client manages the customer registry, keyed by the national
// document number (cedula), and the running purchase history updated by
// the checkout flow.
package client

import (
	"strings"
	"time"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
)

// Client is a registered customer.
type Client struct {
	ID     id.ID  `db:"id" json:"id"`
	Cedula string `db:"cedula" json:"cedula"`

	Name    string `db:"name" json:"name"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	Email   string `db:"email" json:"email,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
	Active  bool   `db:"active" json:"active"`

	TotalPurchases types.Money `db:"total_purchases" json:"totalPurchases"`
	PurchaseCount  int64       `db:"purchase_count" json:"purchaseCount"`
	LastPurchaseAt *time.Time  `db:"last_purchase_at" json:"lastPurchaseAt,omitempty"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NormalizeCedula canonicalizes a document number for storage and lookup.
func NormalizeCedula(cedula string) string {
	return strings.ToLower(strings.TrimSpace(cedula))
}

// Validate checks structural rules.
func (c *Client) Validate() error {
	if NormalizeCedula(c.Cedula) == "" {
		return apperror.NewValidation("client cedula is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("client name is required")
	}
	return nil
}
