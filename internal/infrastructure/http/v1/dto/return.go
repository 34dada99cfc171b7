package dto

import (
	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/domain/returns"
)

// ReturnItemRequest requests the return of one sale line.
type ReturnItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// CreateReturnRequest processes a return against a sale.
type CreateReturnRequest struct {
	SaleID string              `json:"saleId" binding:"required"`
	Items  []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
	Reason string              `json:"reason" binding:"required"`
}

// ToInput converts the request to a service input.
func (r *CreateReturnRequest) ToInput() (returns.CreateInput, error) {
	saleID, err := id.Parse(r.SaleID)
	if err != nil {
		return returns.CreateInput{}, apperror.NewValidation("invalid sale id: " + r.SaleID)
	}
	in := returns.CreateInput{SaleID: saleID, Reason: r.Reason}
	for _, it := range r.Items {
		productID, err := id.Parse(it.ProductID)
		if err != nil {
			return returns.CreateInput{}, apperror.NewValidation("invalid product id: " + it.ProductID)
		}
		in.Items = append(in.Items, returns.ItemInput{ProductID: productID, Quantity: it.Quantity})
	}
	return in, nil
}
