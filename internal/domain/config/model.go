// Package config holds the white-label business settings printed on
// invoices and shown in the UI: name, tax id, currency, tax rate.
package config

import (
	"context"
	"strings"
	"time"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/types"
)

// CompanyConfig is the single business configuration record.
type CompanyConfig struct {
	BusinessName   string      `db:"business_name" json:"businessName"`
	TaxID          string      `db:"tax_id" json:"taxID"`
	Address        string      `db:"address" json:"address,omitempty"`
	Phone          string      `db:"phone" json:"phone,omitempty"`
	Email          string      `db:"email" json:"email,omitempty"`
	CurrencySymbol string      `db:"currency_symbol" json:"currencySymbol"`
	TaxPercent     types.Money `db:"tax_percent" json:"taxPercent"`
	InvoiceFooter  string      `db:"invoice_footer" json:"invoiceFooter,omitempty"`
	LogoURL        string      `db:"logo_url" json:"logoURL,omitempty"`

	Version   int       `db:"version" json:"version"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Default returns the configuration used before the business customizes
// anything.
func Default() *CompanyConfig {
	return &CompanyConfig{
		BusinessName:   "Mi Negocio",
		CurrencySymbol: "$",
		TaxPercent:     types.Zero(),
		Version:        0,
	}
}

// Validate checks structural rules.
func (c *CompanyConfig) Validate() error {
	if strings.TrimSpace(c.BusinessName) == "" {
		return apperror.NewValidation("business name is required")
	}
	if c.TaxPercent.IsNegative() || c.TaxPercent.GreaterThan(types.NewMoneyFromInt(100)) {
		return apperror.NewValidation("tax percent must be between 0 and 100")
	}
	return nil
}

// Repository is the persistence contract for the configuration record.
type Repository interface {
	// Get returns the stored configuration, or a not-found error when
	// the business has never saved one.
	Get(ctx context.Context) (*CompanyConfig, error)
	// Save upserts the single configuration record.
	Save(ctx context.Context, c *CompanyConfig) error
}
