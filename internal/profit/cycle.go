package profit

// CycleProfit is the result of one closed accounting cycle: a stretch of
// accumulated buys followed by one or more sells, closed by the next buy
// (or by the end of the ledger).
type CycleProfit struct {
	// SellID and BuyID are the ids of the last sell and last buy fill
	// observed inside the cycle. They are accumulator markers, not a
	// per-fill pairing.
	SellID int64 `json:"sellId"`
	BuyID  int64 `json:"buyId"`
	// Profit is the net cash result of the cycle, commission-adjusted,
	// positive when the sells brought in more than the buys cost.
	Profit float64 `json:"profit"`
	// SummarySell and SummaryBuy are the cumulative sell proceeds and buy
	// cost over the whole cycle.
	SummarySell float64 `json:"summarySell"`
	SummaryBuy  float64 `json:"summaryBuy"`
	// LastSellProceeds and LastBuyCost are the running sums at the instant
	// the most recent sell/buy fill landed.
	LastSellProceeds float64 `json:"lastSellProceeds"`
	LastBuyCost      float64 `json:"lastBuyCost"`
}

// Compute replays one symbol's ledger and partitions it into closed
// cycles. quoteAsset names the cash side of the pair; a commission charged
// in that asset is deducted from sell proceeds, any other commission asset
// is ledger-external and left alone.
//
// Input order does not matter: the ledger is sorted by trade id before the
// pass. The returned hold flag is true when the ledger ends on an open
// buy-only cycle with no sell yet.
//
// A sell with no prior buy in the ledger is accumulated against a zero
// cost basis, which inflates that cycle's profit. That matches the source
// ledger's accounting and is kept as-is.
func Compute(quoteAsset string, trades []Trade) ([]CycleProfit, bool) {
	var (
		cycles           []CycleProfit
		netCash          float64
		sellSum          float64
		buySum           float64
		lastSell         bool
		sellID           int64
		buyID            int64
		hold             bool
		lastSellProceeds float64
		lastBuyCost      float64
	)

	for _, t := range sortByID(trades) {
		cash := t.QuoteQuantity

		if t.IsBuyer {
			if lastSell {
				// A buy after a sell closes the current cycle and
				// opens the next one.
				hold = false
				cycles = append(cycles, CycleProfit{
					SellID:           sellID,
					BuyID:            buyID,
					Profit:           -netCash,
					SummarySell:      sellSum,
					SummaryBuy:       buySum,
					LastSellProceeds: lastSellProceeds,
					LastBuyCost:      lastBuyCost,
				})
				netCash, sellSum, buySum, lastSell = 0, 0, 0, false
			}
			netCash += cash
			buySum += cash
			buyID = t.ID
			hold = true
			lastBuyCost = buySum
		} else {
			lastSell = true
			sellID = t.ID
			if t.CommissionAsset == quoteAsset {
				netCash -= cash - t.Commission
			} else {
				netCash -= cash
			}
			sellSum += cash
			lastSellProceeds = sellSum
		}
	}

	if lastSell {
		// Ledger ended mid-cycle with sells pending; flush it.
		hold = false
		cycles = append(cycles, CycleProfit{
			SellID:           sellID,
			BuyID:            buyID,
			Profit:           -netCash,
			SummarySell:      sellSum,
			SummaryBuy:       buySum,
			LastSellProceeds: lastSellProceeds,
			LastBuyCost:      lastBuyCost,
		})
	}

	return cycles, hold
}

// TotalProfit sums the realized profit across closed cycles.
func TotalProfit(cycles []CycleProfit) float64 {
	var total float64
	for _, c := range cycles {
		total += c.Profit
	}
	return total
}
