package tracker

import (
	"context"
	"strings"
	"sync"
	"time"

	"binance-profit-tracker-go/internal/binance"
	"binance-profit-tracker-go/internal/config"
	"binance-profit-tracker-go/internal/profit"
	"binance-profit-tracker-go/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Tracker owns the refresh cycle: it pulls per-symbol ledgers, balances,
// earn positions and prices from the venue, keeps the latest copy of each
// and derives summaries on demand. Partial data is the normal operating
// condition; anything not fetched yet reads as zero.
type Tracker struct {
	logger  *zap.Logger
	cfg     *config.Tracker
	client  binance.RestClientInterface
	db      *gorm.DB
	ledgers *store.LedgerStore

	mu       sync.RWMutex
	spot     map[string]binance.SpotBalance
	earn     map[string]float64
	prices   map[string]float64
	lastSync time.Time
}

// NewTracker creates a tracker. db may be nil to run without a ledger
// cache.
func NewTracker(logger *zap.Logger, cfg *config.Tracker, client binance.RestClientInterface, db *gorm.DB, ledgers *store.LedgerStore) *Tracker {
	return &Tracker{
		logger:  logger,
		cfg:     cfg,
		client:  client,
		db:      db,
		ledgers: ledgers,
		spot:    make(map[string]binance.SpotBalance),
		earn:    make(map[string]float64),
		prices:  make(map[string]float64),
	}
}

// Run refreshes once immediately, then on every tick until the context is
// cancelled.
func (t *Tracker) Run(ctx context.Context) {
	t.Refresh(ctx)

	interval := time.Duration(t.cfg.RefreshInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t.logger.Info("Starting refresh loop", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Stopping tracker...")
			return
		case <-ticker.C:
			t.Refresh(ctx)
		}
	}
}

// Refresh pulls fresh data from the venue. Every fetch is independent:
// a failed one is logged and the previous value kept, so a refresh never
// fails as a whole.
func (t *Tracker) Refresh(ctx context.Context) {
	t.logger.Info("Refreshing portfolio data...", zap.Int("symbols", len(t.cfg.Symbols)))

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		t.refreshLedgers(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		t.refreshSpot(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		t.refreshEarn(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		t.refreshPrices(ctx)
	}()

	wg.Wait()

	t.mu.Lock()
	t.lastSync = time.Now()
	t.mu.Unlock()

	t.logger.Info("Refresh complete.")
}

type ledgerResult struct {
	symbol string
	trades []profit.Trade
}

// refreshLedgers fetches every symbol's trade history concurrently.
func (t *Tracker) refreshLedgers(ctx context.Context) {
	var wg sync.WaitGroup
	results := make(chan ledgerResult, len(t.cfg.Symbols))

	for _, s := range t.cfg.Symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			trades, err := t.client.GetMyTrades(ctx, symbol)
			if err != nil {
				t.logger.Warn("Failed to fetch trades, keeping cached ledger",
					zap.String("symbol", symbol), zap.Error(err))
				return
			}
			results <- ledgerResult{symbol: symbol, trades: trades}
		}(s)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		t.ledgers.Set(res.symbol, res.trades)
		if t.db != nil {
			if err := store.Persist(t.db, res.symbol, res.trades); err != nil {
				t.logger.Error("Failed to persist ledger", zap.String("symbol", res.symbol), zap.Error(err))
			}
		}
	}
}

func (t *Tracker) refreshSpot(ctx context.Context) {
	balances, err := t.client.GetSpotBalances(ctx)
	if err != nil {
		t.logger.Warn("Failed to fetch spot balances", zap.Error(err))
		return
	}
	t.mu.Lock()
	t.spot = balances
	t.mu.Unlock()
}

// refreshEarn fetches the earn position of every tracked base asset.
func (t *Tracker) refreshEarn(ctx context.Context) {
	type earnResult struct {
		asset string
		total float64
	}

	var wg sync.WaitGroup
	results := make(chan earnResult, len(t.cfg.Symbols))

	for _, s := range t.cfg.Symbols {
		wg.Add(1)
		go func(asset string) {
			defer wg.Done()
			total, err := t.client.GetEarnTotal(ctx, asset)
			if err != nil {
				t.logger.Warn("Failed to fetch earn position",
					zap.String("asset", asset), zap.Error(err))
				return
			}
			results <- earnResult{asset: asset, total: total}
		}(t.baseAsset(s))
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	fresh := make(map[string]float64, len(t.cfg.Symbols))
	for res := range results {
		fresh[res.asset] = res.total
	}

	// Readers snapshot the map reference, so it is swapped wholesale
	// rather than mutated in place. Assets whose fetch failed keep their
	// previous value.
	t.mu.Lock()
	merged := make(map[string]float64, len(t.earn)+len(fresh))
	for asset, total := range t.earn {
		merged[asset] = total
	}
	for asset, total := range fresh {
		merged[asset] = total
	}
	t.earn = merged
	t.mu.Unlock()
}

func (t *Tracker) refreshPrices(ctx context.Context) {
	prices, err := t.client.GetTickerPrices(ctx, t.cfg.Symbols)
	if err != nil {
		t.logger.Warn("Failed to fetch ticker prices", zap.Error(err))
		return
	}
	t.mu.Lock()
	t.prices = prices
	t.mu.Unlock()
}

// baseAsset strips the quote-asset suffix: "ADAFDUSD" -> "ADA".
func (t *Tracker) baseAsset(symbol string) string {
	return strings.TrimSuffix(symbol, t.cfg.QuoteAsset)
}

// LastSync reports when the last refresh finished; zero before the first
// one.
func (t *Tracker) LastSync() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastSync
}
