package product

import (
	"encoding/json"
	"strings"
	"time"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/id"
	"puntoventa/internal/core/types"
)

// SaleMode determines how a product can be sold.
type SaleMode string

const (
	// SaleModeUnit - sold by individual unit only
	SaleModeUnit SaleMode = "unit"
	// SaleModeCase - sold by full case only
	SaleModeCase SaleMode = "case"
	// SaleModeBoth - sold either way
	SaleModeBoth SaleMode = "both"
)

// Valid reports whether the mode is one of the known values.
func (m SaleMode) Valid() bool {
	switch m {
	case SaleModeUnit, SaleModeCase, SaleModeBoth:
		return true
	}
	return false
}

// Product is a catalog item with two-level stock: full cases plus loose
// units. All stock math is done in units; cases are a presentation of the
// same quantity.
type Product struct {
	ID          id.ID  `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Barcode     string `db:"barcode" json:"barcode,omitempty"`
	Name        string `db:"name" json:"name"`
	Category    string `db:"category" json:"category,omitempty"`
	Brand       string `db:"brand" json:"brand,omitempty"`
	Description string `db:"description" json:"description,omitempty"`

	StockCases   int64 `db:"stock_cases" json:"stockCases"`
	LooseUnits   int64 `db:"loose_units" json:"looseUnits"`
	UnitsPerCase int64 `db:"units_per_case" json:"unitsPerCase"`
	MinStock     int64 `db:"min_stock" json:"minStock"`

	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	CasePrice types.Money `db:"case_price" json:"casePrice"`
	UnitCost  types.Money `db:"unit_cost" json:"unitCost"`
	CaseCost  types.Money `db:"case_cost" json:"caseCost"`

	SaleMode SaleMode `db:"sale_mode" json:"saleMode"`
	Active   bool     `db:"active" json:"active"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NormalizedUnitsPerCase returns the effective units-per-case and whether
// the stored value was invalid (zero or negative) and fell back to 1.
// Callers are expected to log the fallback.
func (p *Product) NormalizedUnitsPerCase() (int64, bool) {
	if p.UnitsPerCase <= 0 {
		return 1, true
	}
	return p.UnitsPerCase, false
}

// TotalUnits returns available stock expressed in units.
func (p *Product) TotalUnits() int64 {
	upc, _ := p.NormalizedUnitsPerCase()
	return p.StockCases*upc + p.LooseUnits
}

// AllowsMode reports whether the product may be sold in the given mode.
// Only unit and case are valid line modes; "both" is a catalog setting.
func (p *Product) AllowsMode(mode SaleMode) bool {
	switch mode {
	case SaleModeUnit, SaleModeCase:
		return p.SaleMode == mode || p.SaleMode == SaleModeBoth
	default:
		return false
	}
}

// ToUnits converts a quantity expressed in the sale mode into units.
func (p *Product) ToUnits(qty int64, mode SaleMode) int64 {
	if mode == SaleModeCase {
		upc, _ := p.NormalizedUnitsPerCase()
		return qty * upc
	}
	return qty
}

// ResolvePrice returns the sale price for the given mode, validating that
// the product actually allows that mode.
func (p *Product) ResolvePrice(mode SaleMode) (types.Money, error) {
	if mode != SaleModeUnit && mode != SaleModeCase {
		return types.Zero(), apperror.NewInvalidSaleMode(p.Name, string(mode))
	}
	if !p.AllowsMode(mode) {
		return types.Zero(), apperror.NewInvalidSaleMode(p.Name, string(mode))
	}
	if mode == SaleModeCase {
		if p.CasePrice.IsPositive() {
			return p.CasePrice, nil
		}
		upc, _ := p.NormalizedUnitsPerCase()
		return p.UnitPrice.Mul(types.NewMoneyFromInt(upc)), nil
	}
	return p.UnitPrice, nil
}

// ResolveCost returns the acquisition cost for the given mode. When the
// case cost is not set it is derived from the unit cost.
func (p *Product) ResolveCost(mode SaleMode) types.Money {
	if mode == SaleModeCase {
		if !p.CaseCost.IsZero() {
			return p.CaseCost
		}
		upc, _ := p.NormalizedUnitsPerCase()
		return p.UnitCost.Mul(types.NewMoneyFromInt(upc))
	}
	return p.UnitCost
}

// ApplyStockDelta adjusts stock by deltaUnits (negative for sales) and
// re-derives the cases/loose decomposition. It never leaves total stock
// negative.
func (p *Product) ApplyStockDelta(deltaUnits int64) error {
	upc, _ := p.NormalizedUnitsPerCase()
	total := p.TotalUnits() + deltaUnits
	if total < 0 {
		return apperror.NewInsufficientStock(p.Name, -deltaUnits, p.TotalUnits(), p.StockCases, p.LooseUnits)
	}
	p.StockCases = total / upc
	p.LooseUnits = total % upc
	return nil
}

// IsLowStock reports whether total stock is at or below the minimum.
func (p *Product) IsLowStock() bool {
	return p.TotalUnits() <= p.MinStock
}

// MarshalJSON adds the derived lowStock flag to every API representation
// of the product.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		LowStock bool `json:"lowStock"`
	}{alias(p), p.IsLowStock()})
}

// priceMarginWarnThreshold: below this margin over cost a warning is raised.
var priceMarginWarnThreshold = types.MustMoney("10")

// caseTolerancePct: allowed deviation of case price from unitPrice*unitsPerCase.
var caseTolerancePct = types.MustMoney("10")

// Validate checks structural and pricing rules. It returns an error for
// hard violations and a list of non-blocking warnings.
func (p *Product) Validate() ([]string, error) {
	var warnings []string

	if strings.TrimSpace(p.Name) == "" {
		return nil, apperror.NewValidation("product name is required")
	}
	if strings.TrimSpace(p.Code) == "" {
		return nil, apperror.NewValidation("product code is required")
	}
	if !p.SaleMode.Valid() {
		return nil, apperror.NewValidation("invalid sale mode: " + string(p.SaleMode))
	}
	if p.StockCases < 0 || p.LooseUnits < 0 {
		return nil, apperror.NewValidation("stock quantities cannot be negative")
	}
	if p.UnitPrice.IsNegative() || p.CasePrice.IsNegative() || p.UnitCost.IsNegative() || p.CaseCost.IsNegative() {
		return nil, apperror.NewValidation("prices cannot be negative")
	}

	if _, fellBack := p.NormalizedUnitsPerCase(); fellBack {
		warnings = append(warnings, "unitsPerCase is not set; treating product as 1 unit per case")
	}

	sellsUnits := p.SaleMode == SaleModeUnit || p.SaleMode == SaleModeBoth
	sellsCases := p.SaleMode == SaleModeCase || p.SaleMode == SaleModeBoth

	if sellsUnits && p.UnitPrice.IsPositive() && p.UnitCost.IsPositive() {
		if p.UnitPrice.LessThanOrEqual(p.UnitCost) {
			return nil, apperror.NewInvalidPriceConfig("unit price must be greater than unit cost for " + p.Name)
		}
		margin := p.UnitPrice.Sub(p.UnitCost).Div(p.UnitCost).Mul(types.NewMoney(100))
		if margin.LessThan(priceMarginWarnThreshold) {
			warnings = append(warnings, "unit margin is below 10%")
		}
	}
	if sellsCases && p.CasePrice.IsPositive() {
		caseCost := p.ResolveCost(SaleModeCase)
		if caseCost.IsPositive() && p.CasePrice.LessThanOrEqual(caseCost) {
			return nil, apperror.NewInvalidPriceConfig("case price must be greater than case cost for " + p.Name)
		}
		// Case price should roughly track unitPrice * unitsPerCase.
		upc, _ := p.NormalizedUnitsPerCase()
		expected := p.UnitPrice.Mul(types.NewMoneyFromInt(upc))
		if sellsUnits && expected.IsPositive() {
			deviation := p.CasePrice.Sub(expected).Abs().Div(expected).Mul(types.NewMoney(100))
			if deviation.GreaterThan(caseTolerancePct) {
				warnings = append(warnings, "case price deviates more than 10% from unit price times units per case")
			}
		}
	}

	return warnings, nil
}
