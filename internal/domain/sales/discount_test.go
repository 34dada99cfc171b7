package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"puntoventa/internal/core/apperror"
	"puntoventa/internal/core/types"
)

func TestMaxDiscountPercent(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		cost     string
		want     string
	}{
		{"half of profit margin", "10000", "6000", "20.00"},
		{"rounds to two decimals", "300", "200", "16.67"},
		{"zero subtotal", "0", "0", "0"},
		{"no profit", "100", "100", "0"},
		{"selling at a loss", "100", "150", "0"},
		{"full margin product", "100", "0", "50.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDiscountPercent(types.MustMoney(tt.subtotal), types.MustMoney(tt.cost))
			assert.True(t, got.Equal(types.MustMoney(tt.want)),
				"MaxDiscountPercent(%s, %s) = %s, want %s", tt.subtotal, tt.cost, got, tt.want)
		})
	}
}

func TestValidateDiscountWithinCap(t *testing.T) {
	err := ValidateDiscount(types.MustMoney("20"), types.MustMoney("10000"), types.MustMoney("6000"))
	assert.NoError(t, err)
}

func TestValidateDiscountExceedsCap(t *testing.T) {
	err := ValidateDiscount(types.MustMoney("25"), types.MustMoney("10000"), types.MustMoney("6000"))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, apperror.CodeDiscountExceedsCap, appErr.Code)
	assert.Equal(t, "20.00", appErr.Details["max_allowed_percent"])
}

func TestValidateDiscountZeroAlwaysAllowed(t *testing.T) {
	// Zero discount passes even when there is no profit to give away.
	err := ValidateDiscount(types.Zero(), types.MustMoney("100"), types.MustMoney("150"))
	assert.NoError(t, err)
}

func TestValidateDiscountRejectsOutOfRange(t *testing.T) {
	err := ValidateDiscount(types.MustMoney("-5"), types.MustMoney("100"), types.MustMoney("50"))
	assert.Error(t, err)

	err = ValidateDiscount(types.MustMoney("101"), types.MustMoney("100"), types.MustMoney("0"))
	assert.Error(t, err)
}
