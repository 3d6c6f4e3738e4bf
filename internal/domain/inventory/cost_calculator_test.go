package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/scm-api/internal/domain/inventory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWeightedAverageCost(t *testing.T) {
	// 100 u a 10 + 50 u a 16 = 1800 / 150 = 12
	got := inventory.WeightedAverageCost(dec("100"), dec("10"), dec("50"), dec("16"))
	assert.True(t, got.Equal(dec("12")), "got %s", got)

	// 3 u a 1 + 1 u a 2 = 5 / 4 = 1.25
	got = inventory.WeightedAverageCost(dec("3"), dec("1"), dec("1"), dec("2"))
	assert.True(t, got.Equal(dec("1.25")), "got %s", got)
}

func TestWeightedAverageCost_SinExistencia(t *testing.T) {
	got := inventory.WeightedAverageCost(decimal.Zero, dec("10"), dec("5"), dec("7.5"))
	assert.True(t, got.Equal(dec("7.5")))

	got = inventory.WeightedAverageCost(dec("-4"), dec("10"), dec("5"), dec("8"))
	assert.True(t, got.Equal(dec("8")), "existencia negativa toma el costo de la entrada")
}

func TestVarianceValue(t *testing.T) {
	assert.True(t, inventory.VarianceValue(dec("-3"), dec("12.345")).Equal(dec("-37.04")))
	assert.True(t, inventory.VarianceValue(decimal.Zero, dec("9")).IsZero())
}
