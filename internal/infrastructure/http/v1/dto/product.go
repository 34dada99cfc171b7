package dto

import (
	"puntoventa/internal/core/types"
	"puntoventa/internal/domain/catalogs/product"
)

// CreateProductRequest creates a catalog product.
type CreateProductRequest struct {
	Code        string `json:"code" binding:"required"`
	Barcode     string `json:"barcode"`
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	Description string `json:"description"`

	StockCases   int64 `json:"stockCases" binding:"gte=0"`
	LooseUnits   int64 `json:"looseUnits" binding:"gte=0"`
	UnitsPerCase int64 `json:"unitsPerCase" binding:"gte=0"`
	MinStock     int64 `json:"minStock" binding:"gte=0"`

	UnitPrice types.Money `json:"unitPrice"`
	CasePrice types.Money `json:"casePrice"`
	UnitCost  types.Money `json:"unitCost"`
	CaseCost  types.Money `json:"caseCost"`

	SaleMode string `json:"saleMode" binding:"required,oneof=unit case both"`
}

// ToInput converts the request to a service input.
func (r *CreateProductRequest) ToInput() product.CreateInput {
	return product.CreateInput{
		Code:         r.Code,
		Barcode:      r.Barcode,
		Name:         r.Name,
		Category:     r.Category,
		Brand:        r.Brand,
		Description:  r.Description,
		StockCases:   r.StockCases,
		LooseUnits:   r.LooseUnits,
		UnitsPerCase: r.UnitsPerCase,
		MinStock:     r.MinStock,
		UnitPrice:    r.UnitPrice,
		CasePrice:    r.CasePrice,
		UnitCost:     r.UnitCost,
		CaseCost:     r.CaseCost,
		SaleMode:     product.SaleMode(r.SaleMode),
	}
}

// UpdateProductRequest updates a catalog product.
type UpdateProductRequest struct {
	Code        string `json:"code" binding:"required"`
	Barcode     string `json:"barcode"`
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	Description string `json:"description"`

	UnitsPerCase int64 `json:"unitsPerCase" binding:"gte=0"`
	MinStock     int64 `json:"minStock" binding:"gte=0"`

	UnitPrice types.Money `json:"unitPrice"`
	CasePrice types.Money `json:"casePrice"`
	UnitCost  types.Money `json:"unitCost"`
	CaseCost  types.Money `json:"caseCost"`

	SaleMode string `json:"saleMode" binding:"required,oneof=unit case both"`
	Active   bool   `json:"active"`

	Version int `json:"version" binding:"required"`
}

// ToInput converts the request to a service input.
func (r *UpdateProductRequest) ToInput() product.UpdateInput {
	return product.UpdateInput{
		Code:         r.Code,
		Barcode:      r.Barcode,
		Name:         r.Name,
		Category:     r.Category,
		Brand:        r.Brand,
		Description:  r.Description,
		UnitsPerCase: r.UnitsPerCase,
		MinStock:     r.MinStock,
		UnitPrice:    r.UnitPrice,
		CasePrice:    r.CasePrice,
		UnitCost:     r.UnitCost,
		CaseCost:     r.CaseCost,
		SaleMode:     product.SaleMode(r.SaleMode),
		Active:       r.Active,
		Version:      r.Version,
	}
}

// RestockRequest adds incoming stock.
type RestockRequest struct {
	Cases int64  `json:"cases" binding:"gte=0"`
	Units int64  `json:"units" binding:"gte=0"`
	Note  string `json:"note"`
}

// ProductResult is a product plus non-blocking validation warnings.
type ProductResult struct {
	Product  *product.Product `json:"product"`
	Warnings []string         `json:"warnings,omitempty"`
}
