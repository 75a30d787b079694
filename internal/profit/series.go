package profit

import (
	"sort"
	"time"
)

// SeriesPoint is one day on the cumulative profit chart.
type SeriesPoint struct {
	Date   string  `json:"date"`
	Profit float64 `json:"profit"`
}

// BuildSeries buckets every closed cycle's profit by the UTC calendar date
// of its closing sell, across all symbols, and returns the running
// cumulative total sorted by date ascending. The result is deterministic
// regardless of map iteration or cycle order.
//
// A closing sell that cannot be resolved to a fill in the ledger falls
// back to the epoch date.
func BuildSeries(cyclesBySymbol map[string][]CycleProfit, tradesBySymbol map[string][]Trade) []SeriesPoint {
	combined := make(map[string]float64)

	for symbol, cycles := range cyclesBySymbol {
		trades := tradesBySymbol[symbol]
		for _, c := range cycles {
			combined[closeDate(c.SellID, trades)] += c.Profit
		}
	}

	dates := make([]string, 0, len(combined))
	for date := range combined {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	points := make([]SeriesPoint, 0, len(dates))
	var running float64
	for _, date := range dates {
		running += combined[date]
		points = append(points, SeriesPoint{Date: date, Profit: running})
	}
	return points
}

// closeDate resolves a closing sell id to its fill's UTC date.
func closeDate(sellID int64, trades []Trade) string {
	var ms int64
	for _, t := range trades {
		if t.ID == sellID {
			ms = t.Time
			break
		}
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}
