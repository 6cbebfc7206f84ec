package trading

// Shares computes each account's fraction of the combined capital of the
// given set. Shares sum to 1 when the total is positive. When every linked
// account has zero capital all shares are zero: distribution is withheld
// rather than failed, which is the documented degenerate-case policy.
//
// Callers evaluate this at exit time against current balances, so profit
// sharing reflects present capital contribution, not historical.
func Shares(ids []string, capital map[string]float64) map[string]float64 {
	shares := make(map[string]float64, len(ids))

	total := 0.0
	for _, id := range ids {
		total += capital[id]
	}

	for _, id := range ids {
		if total > 0 {
			shares[id] = capital[id] / total
		} else {
			shares[id] = 0
		}
	}
	return shares
}
