package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// minFXRates is how many currencies a provider must return to be trusted.
const minFXRates = 10

// DefaultFXProviders are tried in order until one answers with a usable table.
var DefaultFXProviders = []string{
	"https://api.exchangerate-api.com/v4/latest/USD",
	"https://open.er-api.com/v6/latest/USD",
	"https://latest.currency-api.pages.dev/v1/currencies/usd.json",
	"https://api.fxratesapi.com/latest",
}

var errNoFXProvider = errors.New("no fx provider returned usable rates")

// FXChain fetches a USD-based rate table from the first provider that answers.
type FXChain struct {
	urls       []string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewFXChain creates a chain over provider urls.
func NewFXChain(urls []string, httpClient *http.Client, log zerolog.Logger) *FXChain {
	if len(urls) == 0 {
		urls = DefaultFXProviders
	}
	return &FXChain{
		urls:       urls,
		httpClient: httpClient,
		log:        log.With().Str("component", "fx").Logger(),
	}
}

// Rates returns units of each currency per 1 USD, keyed by upper-case code.
// USD is always 1.
func (f *FXChain) Rates(ctx context.Context) (map[string]decimal.Decimal, error) {
	for _, u := range f.urls {
		rates, err := f.fetch(ctx, u)
		if err != nil {
			f.log.Warn().Err(err).Str("provider", u).Msg("fx provider failed")
			continue
		}
		rates["USD"] = decimal.NewFromInt(1)
		f.log.Debug().Str("provider", u).Int("rates", len(rates)).Msg("fx rates fetched")
		return rates, nil
	}
	return nil, errNoFXProvider
}

func (f *FXChain) fetch(ctx context.Context, u string) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	rates := extractRates(body)
	if len(rates) <= minFXRates {
		return nil, fmt.Errorf("only %d rates returned", len(rates))
	}
	return rates, nil
}

// extractRates understands the table shapes the common free providers use:
// {"rates": {...}}, {"conversion_rates": {...}}, {"results": {...}},
// {"usd": {...}} and {"data": {"EUR": {"value": 0.9}}}.
func extractRates(body map[string]json.RawMessage) map[string]decimal.Decimal {
	for _, key := range []string{"rates", "conversion_rates", "results", "usd", "data"} {
		raw, ok := body[key]
		if !ok {
			continue
		}
		if rates := decodeTable(raw); len(rates) > 0 {
			return rates
		}
	}
	return nil
}

func decodeTable(raw json.RawMessage) map[string]decimal.Decimal {
	var flat map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &flat); err == nil {
		return normalizeRates(flat)
	}

	var nested map[string]struct {
		Value decimal.Decimal `json:"value"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		flat = make(map[string]decimal.Decimal, len(nested))
		for code, v := range nested {
			flat[code] = v.Value
		}
		return normalizeRates(flat)
	}
	return nil
}

func normalizeRates(in map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for code, rate := range in {
		if rate.IsPositive() {
			out[strings.ToUpper(code)] = rate
		}
	}
	return out
}
