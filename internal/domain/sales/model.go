// Package sales implements the point-of-sale checkout flow: cart
// validation, price snapshotting, discount-cap enforcement, atomic stock
// decrements and invoice numbering.
package sales

import (
	"strings"
	"time"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
	"puntoventa/internal/domain/catalogs/product"
)

// Status is the lifecycle state of a sale.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusReturned  Status = "returned"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusCancelled, StatusReturned},
	StatusCancelled: {},
	StatusReturned:  {},
}

// CanTransitionTo reports whether the status change is allowed.
func (s Status) CanTransitionTo(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Item is a sale line. Product data is snapshotted at checkout time so
// later catalog edits do not rewrite history.
type Item struct {
	ProductID   id.ID            `db:"product_id" json:"productId"`
	ProductCode string           `db:"product_code" json:"productCode"`
	ProductName string           `db:"product_name" json:"productName"`
	Mode        product.SaleMode `db:"mode" json:"mode"`
	// Quantity is expressed in the sale mode (cases or units)
	Quantity int64 `db:"quantity" json:"quantity"`
	// Units is the same quantity converted to units
	Units     int64       `db:"units" json:"units"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	UnitCost  types.Money `db:"unit_cost" json:"unitCost"`
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
}

// Sale is a completed point-of-sale transaction.
type Sale struct {
	ID            id.ID  `db:"id" json:"id"`
	InvoiceNumber string `db:"invoice_number" json:"invoiceNumber"`

	ClientCedula string `db:"client_cedula" json:"clientCedula,omitempty"`
	ClientName   string `db:"client_name" json:"clientName,omitempty"`

	Items []Item `db:"items" json:"items"`

	Subtotal        types.Money `db:"subtotal" json:"subtotal"`
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`
	DiscountAmount  types.Money `db:"discount_amount" json:"discountAmount"`
	TaxPercent      types.Money `db:"tax_percent" json:"taxPercent"`
	TaxAmount       types.Money `db:"tax_amount" json:"taxAmount"`
	Total           types.Money `db:"total" json:"total"`

	Status Status `db:"status" json:"status"`

	SellerID   string `db:"seller_id" json:"sellerId,omitempty"`
	SellerName string `db:"seller_name" json:"sellerName,omitempty"`
	Notes      string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// normalizeCedula canonicalizes a client document number for lookups.
func normalizeCedula(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TotalCost returns the acquisition cost of everything on the sale.
func (s *Sale) TotalCost() types.Money {
	cost := types.Zero()
	for _, it := range s.Items {
		cost = cost.Add(it.UnitCost.Mul(types.NewMoneyFromInt(it.Quantity)))
	}
	return cost
}

// ChangeStatus validates and applies a status transition.
func (s *Sale) ChangeStatus(to Status) error {
	if !s.Status.CanTransitionTo(to) {
		return apperror.NewInvalidTransition(string(s.Status), string(to))
	}
	s.Status = to
	return nil
}
