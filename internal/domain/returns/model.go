// Package returns handles merchandise returns against completed sales:
// quantity validation, refund calculation and stock restoration.
package returns

import (
	"time"

	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
	"puntoventa/internal/domain/catalogs/product"
)

// Status is the lifecycle state of a return.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusProcessed Status = "processed"
)

// Item is one returned sale line, snapshotted from the original sale.
type Item struct {
	ProductID   id.ID            `db:"product_id" json:"productId"`
	ProductCode string           `db:"product_code" json:"productCode"`
	ProductName string           `db:"product_name" json:"productName"`
	Mode        product.SaleMode `db:"mode" json:"mode"`
	// Quantity is expressed in the original sale mode
	Quantity int64 `db:"quantity" json:"quantity"`
	// Units is the stock restored, converted with the sale-time ratio
	Units     int64       `db:"units" json:"units"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Refund    types.Money `db:"refund" json:"refund"`
}

// Return is a processed merchandise return.
type Return struct {
	ID           id.ID  `db:"id" json:"id"`
	ReturnNumber string `db:"return_number" json:"returnNumber"`

	SaleID        id.ID  `db:"sale_id" json:"saleId"`
	InvoiceNumber string `db:"invoice_number" json:"invoiceNumber"`

	Items       []Item      `db:"items" json:"items"`
	RefundTotal types.Money `db:"refund_total" json:"refundTotal"`

	Reason string `db:"reason" json:"reason"`
	Status Status `db:"status" json:"status"`

	ProcessedBy   string `db:"processed_by" json:"processedBy,omitempty"`
	ProcessorName string `db:"processor_name" json:"processorName,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
