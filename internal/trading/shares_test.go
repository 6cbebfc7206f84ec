package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShares_ProportionalToCapital(t *testing.T) {
	shares := Shares([]string{"ACC1", "ACC2"}, map[string]float64{
		"ACC1": 6000.00,
		"ACC2": 4000.00,
	})

	assert.InDelta(t, 0.6, shares["ACC1"], 1e-9)
	assert.InDelta(t, 0.4, shares["ACC2"], 1e-9)
}

func TestShares_SumToOne(t *testing.T) {
	capital := map[string]float64{
		"A": 123.45,
		"B": 6789.01,
		"C": 0.02,
		"D": 55555.55,
	}
	shares := Shares([]string{"A", "B", "C", "D"}, capital)

	sum := 0.0
	for _, s := range shares {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestShares_ZeroTotalCapitalWithholds(t *testing.T) {
	// When every linked account has zero capital no account receives a
	// distribution; this is policy, not an error.
	shares := Shares([]string{"A", "B"}, map[string]float64{"A": 0, "B": 0})

	assert.Equal(t, 0.0, shares["A"])
	assert.Equal(t, 0.0, shares["B"])
}

func TestShares_SingleAccountTakesAll(t *testing.T) {
	shares := Shares([]string{"SOLO"}, map[string]float64{"SOLO": 250.00})

	assert.Equal(t, 1.0, shares["SOLO"])
}

func TestShares_ZeroCapitalAccountInMixedSet(t *testing.T) {
	shares := Shares([]string{"A", "B"}, map[string]float64{"A": 1000, "B": 0})

	assert.Equal(t, 1.0, shares["A"])
	assert.Equal(t, 0.0, shares["B"])
}
