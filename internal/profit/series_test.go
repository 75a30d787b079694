package profit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ms(date string) int64 {
	ts, _ := time.Parse("2006-01-02", date)
	return ts.UnixMilli()
}

func TestBuildSeriesCumulative(t *testing.T) {
	trades := map[string][]Trade{
		"BTCFDUSD": {
			{ID: 2, Time: ms("2024-03-01")},
			{ID: 4, Time: ms("2024-03-03")},
		},
		"ETHFDUSD": {
			{ID: 7, Time: ms("2024-03-02")},
		},
	}
	cycles := map[string][]CycleProfit{
		"BTCFDUSD": {{SellID: 2, Profit: 50}, {SellID: 4, Profit: 30}},
		"ETHFDUSD": {{SellID: 7, Profit: -10}},
	}

	points := BuildSeries(cycles, trades)

	assert.Equal(t, []SeriesPoint{
		{Date: "2024-03-01", Profit: 50},
		{Date: "2024-03-02", Profit: 40},
		{Date: "2024-03-03", Profit: 70},
	}, points)
}

func TestBuildSeriesSameDayAcrossSymbols(t *testing.T) {
	trades := map[string][]Trade{
		"BTCFDUSD": {{ID: 2, Time: ms("2024-03-01")}},
		"ETHFDUSD": {{ID: 9, Time: ms("2024-03-01")}},
	}
	cycles := map[string][]CycleProfit{
		"BTCFDUSD": {{SellID: 2, Profit: 5}},
		"ETHFDUSD": {{SellID: 9, Profit: 7}},
	}

	points := BuildSeries(cycles, trades)

	assert.Len(t, points, 1)
	assert.InDelta(t, 12, points[0].Profit, 1e-9)
}

func TestBuildSeriesUnresolvedSellFallsBackToEpoch(t *testing.T) {
	cycles := map[string][]CycleProfit{
		"BTCFDUSD": {{SellID: 99, Profit: 5}},
	}

	points := BuildSeries(cycles, map[string][]Trade{})

	assert.Len(t, points, 1)
	assert.Equal(t, "1970-01-01", points[0].Date)
}

func TestBuildSeriesOrderIndependent(t *testing.T) {
	trades := map[string][]Trade{
		"BTCFDUSD": {
			{ID: 2, Time: ms("2024-03-02")},
			{ID: 4, Time: ms("2024-03-01")},
		},
	}
	forward := map[string][]CycleProfit{
		"BTCFDUSD": {{SellID: 2, Profit: 50}, {SellID: 4, Profit: 30}},
	}
	reversed := map[string][]CycleProfit{
		"BTCFDUSD": {{SellID: 4, Profit: 30}, {SellID: 2, Profit: 50}},
	}

	assert.Equal(t, BuildSeries(forward, trades), BuildSeries(reversed, trades))
}

func TestBuildSeriesPrefixSums(t *testing.T) {
	trades := map[string][]Trade{"BTCFDUSD": {
		{ID: 1, Time: ms("2024-01-01")},
		{ID: 2, Time: ms("2024-01-02")},
		{ID: 3, Time: ms("2024-01-03")},
	}}
	cycles := map[string][]CycleProfit{"BTCFDUSD": {
		{SellID: 1, Profit: 1.5},
		{SellID: 2, Profit: 2.5},
		{SellID: 3, Profit: 3},
	}}

	points := BuildSeries(cycles, trades)

	var running float64
	for i, p := range points {
		running += []float64{1.5, 2.5, 3}[i]
		assert.InDelta(t, running, p.Profit, 1e-9)
	}
}
