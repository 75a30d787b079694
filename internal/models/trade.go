package models

import (
	"binance-profit-tracker-go/internal/profit"

	"gorm.io/gorm"
)

// Trade is one cached fill from the venue's trade history. TradeID is the
// venue-assigned id, unique per symbol; the cache keeps fills across
// restarts so summaries can be served before the first refresh completes.
type Trade struct {
	gorm.Model
	Symbol          string  `gorm:"uniqueIndex:idx_symbol_trade_id" json:"symbol"`
	TradeID         int64   `gorm:"uniqueIndex:idx_symbol_trade_id" json:"id"`
	Price           float64 `json:"price"`
	Quantity        float64 `json:"qty"`
	QuoteQuantity   float64 `json:"quoteQty"`
	Commission      float64 `json:"commission"`
	CommissionAsset string  `json:"commissionAsset"`
	Time            int64   `json:"time"`
	IsBuyer         bool    `json:"isBuyer"`
}

// ToFill converts a cached row into the calculator's fill record.
func (t *Trade) ToFill() profit.Trade {
	return profit.Trade{
		ID:              t.TradeID,
		Symbol:          t.Symbol,
		Price:           t.Price,
		Quantity:        t.Quantity,
		QuoteQuantity:   t.QuoteQuantity,
		Commission:      t.Commission,
		CommissionAsset: t.CommissionAsset,
		Time:            t.Time,
		IsBuyer:         t.IsBuyer,
	}
}

// FromFill builds a cache row from a fill record.
func FromFill(f profit.Trade) Trade {
	return Trade{
		Symbol:          f.Symbol,
		TradeID:         f.ID,
		Price:           f.Price,
		Quantity:        f.Quantity,
		QuoteQuantity:   f.QuoteQuantity,
		Commission:      f.Commission,
		CommissionAsset: f.CommissionAsset,
		Time:            f.Time,
		IsBuyer:         f.IsBuyer,
	}
}
