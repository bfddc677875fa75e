package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCoinGeckoURL is the public API root.
const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGecko fetches USD spot prices from the simple/price endpoint.
type CoinGecko struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinGecko creates a client rooted at baseURL.
func NewCoinGecko(baseURL string, httpClient *http.Client) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	return &CoinGecko{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// USDPrices returns the USD price per CoinGecko id. Ids the API does not
// know are simply absent from the result.
func (c *CoinGecko) USDPrices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("coingecko request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("coingecko returned status %d: %s", resp.StatusCode, body)
	}

	var payload map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("coingecko decode: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(payload))
	for id, quote := range payload {
		if usd, ok := quote["usd"]; ok && usd.IsPositive() {
			prices[id] = usd
		}
	}
	return prices, nil
}
