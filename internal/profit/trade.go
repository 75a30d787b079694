package profit

import "sort"

// Trade is one executed fill from the venue's trade history.
// ID is assigned by the venue, is unique per symbol and defines the
// authoritative ledger order. Time is wall-clock milliseconds and is used
// only for display and date bucketing, never for ordering.
type Trade struct {
	ID              int64   `json:"id"`
	Symbol          string  `json:"symbol"`
	Price           float64 `json:"price"`
	Quantity        float64 `json:"qty"`
	QuoteQuantity   float64 `json:"quoteQty"`
	Commission      float64 `json:"commission"`
	CommissionAsset string  `json:"commissionAsset"`
	Time            int64   `json:"time"`
	IsBuyer         bool    `json:"isBuyer"`
}

// sortByID orders a copy of the ledger by ascending trade id. The input
// slice is never mutated; callers own their ledgers.
func sortByID(trades []Trade) []Trade {
	sorted := make([]Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
