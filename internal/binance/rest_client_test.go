package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"binance-profit-tracker-go/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a new test server and a RestClient configured to use it.
func setupTestServer(handler http.Handler) (*RestClient, *httptest.Server) {
	server := httptest.NewServer(handler)

	client := resty.New().SetBaseURL(server.URL)
	logger := zap.NewNop() // Use a no-op logger for tests

	rc := &RestClient{
		client:    client,
		apiKey:    "test_api_key",
		secretKey: "test_secret_key",
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}

	return rc, server
}

func TestGetServerTime(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		expectedTime := time.Now().UnixMilli()
		mockResponse := fmt.Sprintf(`{"serverTime": %d}`, expectedTime)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/time", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(mockResponse))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		serverTime, err := rc.GetServerTime(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, expectedTime, serverTime)
	})

	t.Run("APIError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code": -1021, "msg": "Timestamp out of recv window"}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()

		serverTime, err := rc.GetServerTime(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get server time")
		assert.Equal(t, int64(0), serverTime)
	})
}

func TestGetMyTrades(t *testing.T) {
	mockResponse := `[
		{"symbol": "BTCFDUSD", "id": 2, "price": "60000.00", "qty": "0.00100000",
		 "quoteQty": "60.00000000", "commission": "0.06", "commissionAsset": "FDUSD",
		 "time": 1717200000000, "isBuyer": false, "isMaker": true},
		{"symbol": "BTCFDUSD", "id": 1, "price": "58000.00", "qty": "0.00100000",
		 "quoteQty": "58.00000000", "commission": "0.00000100", "commissionAsset": "BTC",
		 "time": 1717100000000, "isBuyer": true, "isMaker": false}
	]`

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/myTrades", r.URL.Path)
		assert.Equal(t, "test_api_key", r.Header.Get("X-MBX-APIKEY"))
		assert.Equal(t, "BTCFDUSD", r.URL.Query().Get("symbol"))
		assert.NotEmpty(t, r.URL.Query().Get("signature"))
		assert.NotEmpty(t, r.URL.Query().Get("timestamp"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockResponse))
	})

	rc, server := setupTestServer(handler)
	defer server.Close()

	trades, err := rc.GetMyTrades(context.Background(), "BTCFDUSD")

	assert.NoError(t, err)
	assert.Len(t, trades, 2)
	assert.Equal(t, int64(2), trades[0].ID)
	assert.InDelta(t, 60.0, trades[0].QuoteQuantity, 1e-9)
	assert.InDelta(t, 0.06, trades[0].Commission, 1e-9)
	assert.Equal(t, "FDUSD", trades[0].CommissionAsset)
	assert.False(t, trades[0].IsBuyer)
	assert.True(t, trades[1].IsBuyer)
}

func TestGetSpotBalances(t *testing.T) {
	mockResponse := `{
		"balances": [
			{"asset": "BTC", "free": "0.5", "locked": "0.1"},
			{"asset": "ADA", "free": "1000", "locked": "0"}
		]
	}`

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/account", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("omitZeroBalances"))
		assert.NotEmpty(t, r.URL.Query().Get("signature"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockResponse))
	})

	rc, server := setupTestServer(handler)
	defer server.Close()

	balances, err := rc.GetSpotBalances(context.Background())

	assert.NoError(t, err)
	assert.Len(t, balances, 2)
	assert.InDelta(t, 0.5, balances["BTC"].Free, 1e-9)
	assert.InDelta(t, 0.1, balances["BTC"].Locked, 1e-9)
	assert.InDelta(t, 1000, balances["ADA"].Free, 1e-9)
}

func TestGetEarnTotal(t *testing.T) {
	mockResponse := `{
		"rows": [
			{"asset": "ADA", "totalAmount": "250.5"},
			{"asset": "ADA", "totalAmount": "100"}
		]
	}`

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sapi/v1/simple-earn/flexible/position", r.URL.Path)
		assert.Equal(t, "ADA", r.URL.Query().Get("asset"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockResponse))
	})

	rc, server := setupTestServer(handler)
	defer server.Close()

	total, err := rc.GetEarnTotal(context.Background(), "ADA")

	assert.NoError(t, err)
	assert.InDelta(t, 350.5, total, 1e-9)
}

func TestGetTickerPrices(t *testing.T) {
	mockResponse := `[
		{"symbol": "BTCFDUSD", "price": "60000.10"},
		{"symbol": "ADAFDUSD", "price": "0.45"},
		{"symbol": "BADFDUSD", "price": "not-a-number"}
	]`

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, `["BTCFDUSD","ADAFDUSD"]`, r.URL.Query().Get("symbols"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockResponse))
	})

	rc, server := setupTestServer(handler)
	defer server.Close()

	prices, err := rc.GetTickerPrices(context.Background(), []string{"BTCFDUSD", "ADAFDUSD"})

	assert.NoError(t, err)
	assert.InDelta(t, 60000.10, prices["BTCFDUSD"], 1e-9)
	assert.InDelta(t, 0.45, prices["ADAFDUSD"], 1e-9)
	// Unparseable prices are skipped, not fatal.
	_, ok := prices["BADFDUSD"]
	assert.False(t, ok)
}

func TestNewRestClient(t *testing.T) {
	cfg := &config.Binance{ApiKey: "k", SecretKey: "s", RateLimit: 20, RateLimitBurst: 5}
	logger := zap.NewNop()
	rc := NewRestClient(cfg, logger)
	assert.NotNil(t, rc)
	assert.Equal(t, cfg.ApiKey, rc.apiKey)
	assert.Equal(t, cfg.SecretKey, rc.secretKey)
}
