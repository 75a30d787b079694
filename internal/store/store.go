// Package store holds the per-symbol trade ledgers. The profit functions
// are stateless; this keyed store is the single owner of the fetched
// ledgers and hands out copies so callers can never alias its state.
package store

import (
	"fmt"
	"sync"

	"binance-profit-tracker-go/internal/models"
	"binance-profit-tracker-go/internal/profit"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerStore maps symbol to its trade ledger. Safe for concurrent use.
type LedgerStore struct {
	mu      sync.RWMutex
	ledgers map[string][]profit.Trade
}

// NewLedgerStore creates an empty store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{ledgers: make(map[string][]profit.Trade)}
}

// Set replaces one symbol's ledger.
func (s *LedgerStore) Set(symbol string, trades []profit.Trade) {
	copied := make([]profit.Trade, len(trades))
	copy(copied, trades)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[symbol] = copied
}

// Get returns a copy of one symbol's ledger. The second return is false
// when no ledger has been stored for the symbol yet, which callers need
// to tell apart from a ledger with zero activity.
func (s *LedgerStore) Get(symbol string) ([]profit.Trade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades, ok := s.ledgers[symbol]
	if !ok {
		return nil, false
	}
	copied := make([]profit.Trade, len(trades))
	copy(copied, trades)
	return copied, true
}

// All returns a copy of every stored ledger keyed by symbol.
func (s *LedgerStore) All() map[string][]profit.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make(map[string][]profit.Trade, len(s.ledgers))
	for symbol, trades := range s.ledgers {
		copied := make([]profit.Trade, len(trades))
		copy(copied, trades)
		all[symbol] = copied
	}
	return all
}

// Symbols lists the symbols with a stored ledger.
func (s *LedgerStore) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.ledgers))
	for symbol := range s.ledgers {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Persist upserts one symbol's ledger into the cache database.
func Persist(db *gorm.DB, symbol string, trades []profit.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	rows := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, models.FromFill(t))
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "trade_id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to persist ledger for %s: %w", symbol, err)
	}
	return nil
}

// Load fills the store with every cached ledger so summaries can be
// served before the first refresh completes.
func Load(db *gorm.DB, s *LedgerStore) error {
	var rows []models.Trade
	if err := db.Order("trade_id asc").Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load cached ledgers: %w", err)
	}

	bySymbol := make(map[string][]profit.Trade)
	for i := range rows {
		fill := rows[i].ToFill()
		bySymbol[fill.Symbol] = append(bySymbol[fill.Symbol], fill)
	}
	for symbol, trades := range bySymbol {
		s.Set(symbol, trades)
	}
	return nil
}
