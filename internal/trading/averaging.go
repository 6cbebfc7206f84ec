package trading

import (
	"github.com/shopspring/decimal"

	"tradepool/internal/money"
)

// Average blends an incoming fill into the current position and returns the
// new quantity, blended average price and accumulated fees. It is pure and
// deterministic; each monetary result is rounded once at the end, never on
// intermediate sums.
func Average(curQty int, curPrice float64, addQty int, addPrice float64, curFees, addFees float64) (int, float64, float64) {
	newQty := curQty + addQty

	avgPrice := 0.00
	if newQty > 0 {
		cost := decimal.NewFromInt(int64(curQty)).Mul(decimal.NewFromFloat(curPrice)).
			Add(decimal.NewFromInt(int64(addQty)).Mul(decimal.NewFromFloat(addPrice)))
		avgPrice = cost.Div(decimal.NewFromInt(int64(newQty))).Round(2).InexactFloat64()
	}

	return newQty, avgPrice, money.Round2(curFees + addFees)
}
