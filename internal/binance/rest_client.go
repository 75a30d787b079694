package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"binance-profit-tracker-go/internal/config"
	"binance-profit-tracker-go/internal/profit"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	baseURL    = "https://api.binance.com"
	recvWindow = "9000" // How long a request is valid in milliseconds
)

// RestClientInterface defines the interface for the Binance REST API client.
type RestClientInterface interface {
	GetServerTime(ctx context.Context) (int64, error)
	GetMyTrades(ctx context.Context, symbol string) ([]profit.Trade, error)
	GetSpotBalances(ctx context.Context) (map[string]SpotBalance, error)
	GetEarnTotal(ctx context.Context, asset string) (float64, error)
	GetTickerPrices(ctx context.Context, symbols []string) (map[string]float64, error)
}

// RestClient is a client for the Binance REST API.
// It implements the RestClientInterface.
type RestClient struct {
	client    *resty.Client
	apiKey    string
	secretKey string
	logger    *zap.Logger
	limiter   *rate.Limiter
}

// ensure RestClient implements the interface
var _ RestClientInterface = (*RestClient)(nil)

// NewRestClient creates a new Binance REST API client.
func NewRestClient(cfg *config.Binance, logger *zap.Logger) *RestClient {
	client := resty.New().SetBaseURL(baseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &RestClient{
		client:    client,
		apiKey:    cfg.ApiKey,
		secretKey: cfg.SecretKey,
		logger:    logger,
		limiter:   limiter,
	}
}

// sign creates a HMAC-SHA256 signature for the request.
func (c *RestClient) sign(data string) string {
	h := hmac.New(sha256.New, []byte(c.secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// signedQuery appends timestamp, recvWindow and the signature to params
// and returns the final query string for an authenticated endpoint.
func (c *RestClient) signedQuery(params url.Values) string {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", recvWindow)
	queryString := params.Encode()
	return queryString + "&signature=" + c.sign(queryString)
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *RestClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests || statusCode == 418 { // HTTP 429 or 418
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// GetServerTime fetches the current server time from Binance.
// This is a good endpoint to test connectivity.
func (c *RestClient) GetServerTime(ctx context.Context) (int64, error) {
	type ServerTimeResponse struct {
		ServerTime int64 `json:"serverTime"`
	}

	req := c.client.R().
		SetResult(&ServerTimeResponse{})

	resp, err := c.doRequest(ctx, "GET", "/api/v3/time", req)
	if err != nil {
		c.logger.Error("Failed to get server time", zap.Error(err))
		return 0, fmt.Errorf("failed to get server time: %w", err)
	}

	result := resp.Result().(*ServerTimeResponse)
	return result.ServerTime, nil
}

// tradeResponse is one fill as returned by /api/v3/myTrades. Quantities
// arrive as decimal strings.
type tradeResponse struct {
	Symbol          string `json:"symbol"`
	ID              int64  `json:"id"`
	OrderID         int64  `json:"orderId"`
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	QuoteQty        string `json:"quoteQty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	Time            int64  `json:"time"`
	IsBuyer         bool   `json:"isBuyer"`
	IsMaker         bool   `json:"isMaker"`
}

// GetMyTrades fetches the account's trade history for one symbol.
func (c *RestClient) GetMyTrades(ctx context.Context, symbol string) ([]profit.Trade, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var raw []tradeResponse
	req := c.client.R().
		SetHeader("X-MBX-APIKEY", c.apiKey).
		SetQueryString(c.signedQuery(params)).
		SetResult(&raw)

	_, err := c.doRequest(ctx, "GET", "/api/v3/myTrades", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get trades for %s: %w", symbol, err)
	}

	trades := make([]profit.Trade, 0, len(raw))
	for _, r := range raw {
		price, _ := strconv.ParseFloat(r.Price, 64)
		qty, _ := strconv.ParseFloat(r.Qty, 64)
		quoteQty, _ := strconv.ParseFloat(r.QuoteQty, 64)
		commission, _ := strconv.ParseFloat(r.Commission, 64)
		trades = append(trades, profit.Trade{
			ID:              r.ID,
			Symbol:          r.Symbol,
			Price:           price,
			Quantity:        qty,
			QuoteQuantity:   quoteQty,
			Commission:      commission,
			CommissionAsset: r.CommissionAsset,
			Time:            r.Time,
			IsBuyer:         r.IsBuyer,
		})
	}

	return trades, nil
}

// SpotBalance is one asset's spot balance.
type SpotBalance struct {
	Asset  string
	Free   float64
	Locked float64
}

// accountResponse is the subset of /api/v3/account the tracker needs.
type accountResponse struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// GetSpotBalances fetches all non-zero spot balances keyed by asset.
func (c *RestClient) GetSpotBalances(ctx context.Context) (map[string]SpotBalance, error) {
	params := url.Values{}
	params.Set("omitZeroBalances", "true")

	var raw accountResponse
	req := c.client.R().
		SetHeader("X-MBX-APIKEY", c.apiKey).
		SetQueryString(c.signedQuery(params)).
		SetResult(&raw)

	_, err := c.doRequest(ctx, "GET", "/api/v3/account", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get spot balances: %w", err)
	}

	balances := make(map[string]SpotBalance, len(raw.Balances))
	for _, b := range raw.Balances {
		free, _ := strconv.ParseFloat(b.Free, 64)
		locked, _ := strconv.ParseFloat(b.Locked, 64)
		balances[b.Asset] = SpotBalance{Asset: b.Asset, Free: free, Locked: locked}
	}

	return balances, nil
}

// earnPositionResponse is the subset of the Simple Earn flexible position
// endpoint the tracker needs.
type earnPositionResponse struct {
	Rows []struct {
		Asset       string `json:"asset"`
		TotalAmount string `json:"totalAmount"`
	} `json:"rows"`
}

// GetEarnTotal fetches the total amount of an asset held in Simple Earn
// flexible products, summed across positions.
func (c *RestClient) GetEarnTotal(ctx context.Context, asset string) (float64, error) {
	params := url.Values{}
	params.Set("asset", asset)

	var raw earnPositionResponse
	req := c.client.R().
		SetHeader("X-MBX-APIKEY", c.apiKey).
		SetQueryString(c.signedQuery(params)).
		SetResult(&raw)

	_, err := c.doRequest(ctx, "GET", "/sapi/v1/simple-earn/flexible/position", req)
	if err != nil {
		return 0, fmt.Errorf("failed to get earn positions for %s: %w", asset, err)
	}

	var total float64
	for _, row := range raw.Rows {
		amount, _ := strconv.ParseFloat(row.TotalAmount, 64)
		total += amount
	}

	return total, nil
}

// TickerPrice represents the response for a single ticker price.
type TickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// GetTickerPrices fetches the latest price for the given symbols.
func (c *RestClient) GetTickerPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	// The endpoint takes a JSON array of symbols: ["BTCFDUSD","ETHFDUSD"]
	list := `[`
	for i, s := range symbols {
		if i > 0 {
			list += `,`
		}
		list += `"` + s + `"`
	}
	list += `]`

	var prices []*TickerPrice
	req := c.client.R().
		SetQueryParam("symbols", list).
		SetResult(&prices).
		SetHeader("Content-Type", "application/json")

	_, err := c.doRequest(ctx, "GET", "/api/v3/ticker/price", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker prices: %w", err)
	}

	priceMap := make(map[string]float64, len(prices))
	for _, p := range prices {
		value, err := strconv.ParseFloat(p.Price, 64)
		if err != nil {
			c.logger.Warn("Failed to parse ticker price",
				zap.String("symbol", p.Symbol), zap.String("price", p.Price))
			continue
		}
		priceMap[p.Symbol] = value
	}

	return priceMap, nil
}
