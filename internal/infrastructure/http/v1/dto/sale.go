package dto

import (
	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
	"puntoventa/internal/domain/catalogs/product"
	"puntoventa/internal/domain/sales"
)

// CheckoutItemRequest is one requested cart line.
type CheckoutItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Mode      string `json:"mode" binding:"required,oneof=unit case"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest completes a sale.
type CheckoutRequest struct {
	Items           []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
	DiscountPercent types.Money           `json:"discountPercent"`
	TaxPercent      types.Money           `json:"taxPercent"`
	ClientCedula    string                `json:"clientCedula"`
	ClientName      string                `json:"clientName"`
	Notes           string                `json:"notes"`
}

// ToInput converts the request to a service input.
func (r *CheckoutRequest) ToInput() (sales.CheckoutInput, error) {
	in := sales.CheckoutInput{
		DiscountPercent: r.DiscountPercent,
		TaxPercent:      r.TaxPercent,
		ClientCedula:    r.ClientCedula,
		ClientName:      r.ClientName,
		Notes:           r.Notes,
	}
	for _, it := range r.Items {
		productID, err := id.Parse(it.ProductID)
		if err != nil {
			return sales.CheckoutInput{}, apperror.NewValidation("invalid product id: " + it.ProductID)
		}
		in.Items = append(in.Items, sales.CheckoutItem{
			ProductID: productID,
			Mode:      product.SaleMode(it.Mode),
			Quantity:  it.Quantity,
		})
	}
	return in, nil
}

// CancelSaleRequest voids a sale.
type CancelSaleRequest struct {
	Reason string `json:"reason" binding:"required"`
}
