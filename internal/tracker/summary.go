package tracker

import (
	"sort"

	"binance-profit-tracker-go/internal/profit"
)

// Summary is the portfolio view: one row per tracked symbol plus the net
// profit across them.
type Summary struct {
	Rows        []profit.Row `json:"rows"`
	TotalProfit float64      `json:"totalProfit"`
}

// Summary derives the current portfolio summary from whatever data has
// arrived so far. Symbols with no ledger, balance or price yet produce
// fully zeroed rows.
func (t *Tracker) Summary() Summary {
	t.mu.RLock()
	spot := t.spot
	earn := t.earn
	prices := t.prices
	t.mu.RUnlock()

	rows := make([]profit.Row, 0, len(t.cfg.Symbols))
	for _, symbol := range t.cfg.Symbols {
		trades, _ := t.ledgers.Get(symbol)
		cycles, hold := profit.Compute(t.cfg.QuoteAsset, trades)

		asset := t.baseAsset(symbol)
		balance := spot[asset]

		rows = append(rows, profit.BuildRow(
			symbol, cycles, hold, len(trades),
			balance.Free, balance.Locked, earn[asset], prices[symbol],
		))
	}

	return Summary{Rows: rows, TotalProfit: profit.Aggregate(rows)}
}

// Series derives the cumulative daily profit series across every tracked
// symbol's ledger.
func (t *Tracker) Series() []profit.SeriesPoint {
	ledgers := t.ledgers.All()

	cyclesBySymbol := make(map[string][]profit.CycleProfit, len(ledgers))
	for symbol, trades := range ledgers {
		cycles, _ := profit.Compute(t.cfg.QuoteAsset, trades)
		cyclesBySymbol[symbol] = cycles
	}

	return profit.BuildSeries(cyclesBySymbol, ledgers)
}

// Detail is one symbol's ledger annotated for display: each closing sell
// carries its cycle's profit, and the cumulative buy/sell figures are
// keyed by the fills that produced them.
type Detail struct {
	Symbol       string            `json:"symbol"`
	Trades       []profit.Trade    `json:"trades"`
	TotalProfit  float64           `json:"totalProfit"`
	Holding      bool              `json:"holding"`
	ProfitBySell map[int64]float64 `json:"profitBySell"`
	SumBySell    map[int64]float64 `json:"sumBySell"`
	SumByBuy     map[int64]float64 `json:"sumByBuy"`
}

// Detail returns one symbol's annotated ledger, newest fill first. The
// second return is false when no ledger has been fetched for the symbol
// yet.
func (t *Tracker) Detail(symbol string) (Detail, bool) {
	trades, ok := t.ledgers.Get(symbol)
	if !ok {
		return Detail{}, false
	}

	cycles, hold := profit.Compute(t.cfg.QuoteAsset, trades)

	d := Detail{
		Symbol:       symbol,
		Trades:       newestFirst(trades),
		TotalProfit:  profit.TotalProfit(cycles),
		Holding:      hold,
		ProfitBySell: make(map[int64]float64, len(cycles)),
		SumBySell:    make(map[int64]float64, len(cycles)),
		SumByBuy:     make(map[int64]float64, len(cycles)),
	}
	for _, c := range cycles {
		d.ProfitBySell[c.SellID] = c.Profit
		d.SumBySell[c.SellID] = c.SummarySell
		d.SumByBuy[c.BuyID] = c.SummaryBuy
	}

	return d, true
}

func newestFirst(trades []profit.Trade) []profit.Trade {
	sorted := make([]profit.Trade, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID > sorted[j].ID
	})
	return sorted
}
