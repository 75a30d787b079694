package profit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrunc2(t *testing.T) {
	testCases := []struct {
		in   float64
		want float64
	}{
		{in: 1.239, want: 1.23},
		{in: 1.2, want: 1.2},
		{in: 0, want: 0},
		{in: 99.999, want: 99.99},
	}
	for _, tc := range testCases {
		assert.InDelta(t, tc.want, Trunc2(tc.in), 1e-9)
	}
}

func TestAggregate(t *testing.T) {
	rows := []Row{
		{UnrealizedProfit: 100, LastSellProceeds: 50.789},
		{UnrealizedProfit: -20.5, LastSellProceeds: 0.004},
	}

	// 100 + 50.78 + (-20.5) + 0.00
	assert.InDelta(t, 130.28, Aggregate(rows), 1e-9)
}

func TestAggregateDustRowsContributeNoUnrealized(t *testing.T) {
	// A dust-valued position carries zero unrealized profit out of
	// BuildRow, so aggregation only sees its truncated sell proceeds.
	cycles := []CycleProfit{{BuyID: 1, SellID: 2, LastBuyCost: 5, LastSellProceeds: 12.345}}
	dust := BuildRow("SHIBFDUSD", cycles, false, 2, 3, 0, 0, 1)

	assert.Zero(t, dust.UnrealizedProfit)
	assert.InDelta(t, 12.34, Aggregate([]Row{dust}), 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Zero(t, Aggregate(nil))
}
