package sales

import (
	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/types"
)

// MaxDiscountPercent returns the maximum discount the seller may grant,
// as a percentage of the subtotal rounded to two decimals.
//
// The cap is half the total profit margin: the business keeps at least
// half of the profit on every sale. With no subtotal or no profit the
// cap is zero.
func MaxDiscountPercent(subtotal, totalCost types.Money) types.Money {
	if !subtotal.IsPositive() {
		return types.Zero()
	}
	profit := subtotal.Sub(totalCost)
	if !profit.IsPositive() {
		return types.Zero()
	}
	half := types.Percent(profit, types.NewMoneyFromInt(50))
	return half.Div(subtotal).Mul(types.NewMoneyFromInt(100)).Round(2)
}

// ValidateDiscount checks the requested discount against the cap.
func ValidateDiscount(requested, subtotal, totalCost types.Money) error {
	if requested.IsNegative() {
		return apperror.NewValidation("discount cannot be negative")
	}
	if requested.GreaterThan(types.NewMoneyFromInt(100)) {
		return apperror.NewValidation("discount cannot exceed 100%")
	}
	if requested.IsZero() {
		return nil
	}
	max := MaxDiscountPercent(subtotal, totalCost)
	if requested.GreaterThan(max) {
		return apperror.NewDiscountExceedsCap(requested.StringFixed(2), max.StringFixed(2))
	}
	return nil
}
