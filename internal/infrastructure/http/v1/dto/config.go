package dto

import (
	"puntoventa/internal/core/types"
	"puntoventa/internal/domain/config"
)

// UpdateConfigRequest replaces the business configuration.
type UpdateConfigRequest struct {
	BusinessName   string      `json:"businessName" binding:"required"`
	TaxID          string      `json:"taxID"`
	Address        string      `json:"address"`
	Phone          string      `json:"phone"`
	Email          string      `json:"email"`
	CurrencySymbol string      `json:"currencySymbol" binding:"required"`
	TaxPercent     types.Money `json:"taxPercent"`
	InvoiceFooter  string      `json:"invoiceFooter"`
	LogoURL        string      `json:"logoURL"`

	Version int `json:"version"`
}

// ToInput converts the request to a service input.
func (r *UpdateConfigRequest) ToInput() config.UpdateInput {
	return config.UpdateInput{
		BusinessName:   r.BusinessName,
		TaxID:          r.TaxID,
		Address:        r.Address,
		Phone:          r.Phone,
		Email:          r.Email,
		CurrencySymbol: r.CurrencySymbol,
		TaxPercent:     r.TaxPercent,
		InvoiceFooter:  r.InvoiceFooter,
		LogoURL:        r.LogoURL,
		Version:        r.Version,
	}
}
