package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverage_FirstFill(t *testing.T) {
	qty, price, fees := Average(0, 0, 10, 100.00, 0, 5.00)

	assert.Equal(t, 10, qty)
	assert.Equal(t, 100.00, price)
	assert.Equal(t, 5.00, fees)
}

func TestAverage_BlendsCostBasis(t *testing.T) {
	// 10 @ 100 then 10 @ 120 blends to 20 @ 110.
	qty, price, fees := Average(10, 100.00, 10, 120.00, 5.00, 5.00)

	assert.Equal(t, 20, qty)
	assert.Equal(t, 110.00, price)
	assert.Equal(t, 10.00, fees)
}

func TestAverage_UnevenQuantities(t *testing.T) {
	// (3*50 + 7*100) / 10 = 85.00
	qty, price, _ := Average(3, 50.00, 7, 100.00, 0, 0)

	assert.Equal(t, 10, qty)
	assert.Equal(t, 85.00, price)
}

func TestAverage_RoundsOnceAtTheEnd(t *testing.T) {
	// (3*10.01 + 3*10.02) / 6 = 10.015, rounded half away from zero to 10.02.
	_, price, _ := Average(3, 10.01, 3, 10.02, 0, 0)

	assert.Equal(t, 10.02, price)
}

func TestAverage_PriceStaysWithinFillBounds(t *testing.T) {
	cases := []struct {
		curQty   int
		curPrice float64
		addQty   int
		addPrice float64
	}{
		{1, 10.00, 1, 20.00},
		{100, 99.99, 1, 0.01},
		{5, 42.00, 5, 42.00},
		{1, 1000.00, 999, 1.00},
	}

	for _, c := range cases {
		qty, price, _ := Average(c.curQty, c.curPrice, c.addQty, c.addPrice, 0, 0)

		assert.Equal(t, c.curQty+c.addQty, qty)
		lo, hi := c.curPrice, c.addPrice
		if lo > hi {
			lo, hi = hi, lo
		}
		assert.GreaterOrEqual(t, price, lo)
		assert.LessOrEqual(t, price, hi)
	}
}

func TestAverage_ZeroTotalDoesNotDivide(t *testing.T) {
	qty, price, fees := Average(0, 0, 0, 0, 0, 0)

	assert.Equal(t, 0, qty)
	assert.Equal(t, 0.00, price)
	assert.Equal(t, 0.00, fees)
}
