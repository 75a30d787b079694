package profit

// DustThreshold is the wallet value, in quote-currency units, at or below
// which a position is considered negligible: its unrealized profit
// contributes zero to the portfolio total.
const DustThreshold = 10

// Row is the display-ready view of one symbol, joining the cycle
// calculator's output with live balances and price. It is purely derived
// and is recomputed on every refresh.
type Row struct {
	Symbol     string  `json:"symbol"`
	TradeCount int     `json:"tradeCount"`
	Holding    bool    `json:"holding"`
	Price      float64 `json:"price"`
	SpotFree   float64 `json:"spotFree"`
	SpotLocked float64 `json:"spotLocked"`
	EarnTotal  float64 `json:"earnTotal"`
	// WalletValue is the live price times every unit held (spot free,
	// spot locked and earn).
	WalletValue float64 `json:"walletValue"`
	// RealizedProfit is the sum of all closed-cycle profits.
	RealizedProfit float64 `json:"realizedProfit"`
	// LastBuyCost and LastSellProceeds come from the most recent cycles by
	// buy id and sell id respectively, resolved independently.
	LastBuyCost      float64 `json:"lastBuyCost"`
	LastSellProceeds float64 `json:"lastSellProceeds"`
	// UnrealizedProfit applies the dust threshold and the hold branch; it
	// is the row's contribution to the net portfolio profit.
	UnrealizedProfit float64 `json:"unrealizedProfit"`
	// CombinedTotal is wallet value plus realized profit.
	CombinedTotal float64 `json:"combinedTotal"`
}

// BuildRow derives one symbol's portfolio row. Missing balances or price
// arrive as zero; the row is always produced, degraded rather than failed.
func BuildRow(symbol string, cycles []CycleProfit, holding bool, tradeCount int, spotFree, spotLocked, earnTotal, price float64) Row {
	var (
		lastBuyCost      float64
		lastSellProceeds float64
		maxBuyID         int64
		maxSellID        int64
	)
	for _, c := range cycles {
		if c.BuyID > maxBuyID {
			maxBuyID = c.BuyID
			lastBuyCost = c.LastBuyCost
		}
		if c.SellID > maxSellID {
			maxSellID = c.SellID
			lastSellProceeds = c.LastSellProceeds
		}
	}

	walletValue := price * (spotFree + spotLocked + earnTotal)
	realized := TotalProfit(cycles)

	// Positions worth no more than the dust threshold contribute nothing.
	// Above it, a held position is marked to market against its last buy
	// cost; a flat position additionally counts the proceeds already taken
	// out.
	var unrealized float64
	if walletValue > DustThreshold {
		unrealized = walletValue - lastBuyCost
		if !holding {
			unrealized += lastSellProceeds
		}
	}

	return Row{
		Symbol:           symbol,
		TradeCount:       tradeCount,
		Holding:          holding,
		Price:            price,
		SpotFree:         spotFree,
		SpotLocked:       spotLocked,
		EarnTotal:        earnTotal,
		WalletValue:      walletValue,
		RealizedProfit:   realized,
		LastBuyCost:      lastBuyCost,
		LastSellProceeds: lastSellProceeds,
		UnrealizedProfit: unrealized,
		CombinedTotal:    walletValue + realized,
	}
}
