package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"investment-ledger/config"
	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	fxSnapshotKey   = "fx:USD"
	usdSnapshotKey  = "usd:"
	defaultCacheTTL = time.Minute
	defaultTimeout  = 10 * time.Second
)

// usdSource and fxSource are the upstreams the gateway reads through.
type usdSource interface {
	USDPrices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)
}

type fxSource interface {
	Rates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Gateway implements ports.PricingGateway. Quotes are cached in the snapshot
// cache (Redis when configured) and in process for cacheTTL. A quote that
// cannot be obtained is ports.ErrPriceUnknown.
type Gateway struct {
	usd   usdSource
	fx    fxSource
	cache ports.SnapshotCache
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time

	mu      sync.Mutex
	fxTable map[string]decimal.Decimal
	fxAt    time.Time
	quotes  map[string]quote // by symbol
}

type quote struct {
	price decimal.Decimal
	at    time.Time
}

// NewGateway wires the CoinGecko client and the FX chain from cfg. cache may be nil.
func NewGateway(cfg config.PricingConfig, cache ports.SnapshotCache, log zerolog.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}
	return newGateway(
		NewCoinGecko(cfg.CoinGeckoURL, client),
		NewFXChain(cfg.FXProviders, client, log),
		cache, cfg.CacheTTL, log,
	)
}

func newGateway(usd usdSource, fx fxSource, cache ports.SnapshotCache, ttl time.Duration, log zerolog.Logger) *Gateway {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Gateway{
		usd:    usd,
		fx:     fx,
		cache:  cache,
		ttl:    ttl,
		log:    log.With().Str("component", "pricing").Logger(),
		now:    time.Now,
		quotes: make(map[string]quote),
	}
}

// USDPrice returns the USD price of one unit of symbol.
func (g *Gateway) USDPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "USD" {
		return decimal.NewFromInt(1), nil
	}

	if price, ok := g.localQuote(symbol); ok {
		return price, nil
	}
	key := usdSnapshotKey + symbol
	if cached, ok := g.cachedDecimal(ctx, key); ok {
		g.keepQuote(symbol, cached)
		return cached, nil
	}

	id, _ := domain.CoinGeckoID(symbol)
	prices, err := g.usd.USDPrices(ctx, []string{id})
	if err != nil {
		g.log.Warn().Err(err).Str("symbol", symbol).Msg("usd price fetch failed")
		return decimal.Zero, fmt.Errorf("%s: %w", symbol, ports.ErrPriceUnknown)
	}
	price, ok := prices[id]
	if !ok || !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: %w", symbol, ports.ErrPriceUnknown)
	}

	g.keepQuote(symbol, price)
	g.store(ctx, key, price)
	return price, nil
}

// CoinPrices returns the USD price of every listed asset, fetching the stale
// ones in a single upstream call. Assets without a quote are left out.
func (g *Gateway) CoinPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(domain.Assets))
	var (
		ids      []string
		bySymbol = make(map[string]string)
	)
	for _, a := range domain.Assets {
		if price, ok := g.localQuote(a.Symbol); ok {
			out[a.Symbol] = price
			continue
		}
		if cached, ok := g.cachedDecimal(ctx, usdSnapshotKey+a.Symbol); ok {
			g.keepQuote(a.Symbol, cached)
			out[a.Symbol] = cached
			continue
		}
		ids = append(ids, a.CoinGeckoID)
		bySymbol[a.CoinGeckoID] = a.Symbol
	}
	if len(ids) == 0 {
		return out, nil
	}

	prices, err := g.usd.USDPrices(ctx, ids)
	if err != nil {
		g.log.Warn().Err(err).Int("coins", len(ids)).Msg("usd price board fetch failed")
		if len(out) == 0 {
			return nil, fmt.Errorf("coin prices: %w", ports.ErrPriceUnknown)
		}
		return out, nil
	}
	for id, price := range prices {
		symbol, ok := bySymbol[id]
		if !ok || !price.IsPositive() {
			continue
		}
		g.keepQuote(symbol, price)
		g.store(ctx, usdSnapshotKey+symbol, price)
		out[symbol] = price
	}
	return out, nil
}

// ExchangeRates returns units of each known currency per 1 USD.
func (g *Gateway) ExchangeRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	table, err := g.fxRates(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("fx rates unavailable")
		return nil, fmt.Errorf("exchange rates: %w", ports.ErrPriceUnknown)
	}
	out := make(map[string]decimal.Decimal, len(table))
	for code, rate := range table {
		out[code] = rate
	}
	return out, nil
}

func (g *Gateway) localQuote(symbol string) (decimal.Decimal, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	q, ok := g.quotes[symbol]
	if !ok || g.now().Sub(q.at) >= g.ttl {
		return decimal.Zero, false
	}
	return q.price, true
}

func (g *Gateway) keepQuote(symbol string, price decimal.Decimal) {
	g.mu.Lock()
	g.quotes[symbol] = quote{price: price, at: g.now()}
	g.mu.Unlock()
}

// FXRate returns units of currency per 1 USD.
func (g *Gateway) FXRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	currency = domain.NormalizeSymbol(currency)
	if currency == "USD" {
		return decimal.NewFromInt(1), nil
	}

	table, err := g.fxRates(ctx)
	if err != nil {
		g.log.Warn().Err(err).Str("currency", currency).Msg("fx rates unavailable")
		return decimal.Zero, fmt.Errorf("%s: %w", currency, ports.ErrPriceUnknown)
	}
	rate, ok := table[currency]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: %w", currency, ports.ErrPriceUnknown)
	}
	return rate, nil
}

func (g *Gateway) fxRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.fxTable != nil && g.now().Sub(g.fxAt) < g.ttl {
		return g.fxTable, nil
	}

	if g.cache != nil {
		raw, err := g.cache.Get(ctx, fxSnapshotKey)
		if err != nil {
			g.log.Warn().Err(err).Msg("fx snapshot read failed")
		} else if raw != nil {
			var table map[string]decimal.Decimal
			if err := json.Unmarshal(raw, &table); err == nil && len(table) > 0 {
				g.fxTable, g.fxAt = table, g.now()
				return table, nil
			}
		}
	}

	table, err := g.fx.Rates(ctx)
	if err != nil {
		return nil, err
	}
	g.fxTable, g.fxAt = table, g.now()

	if g.cache != nil {
		if raw, err := json.Marshal(table); err == nil {
			if err := g.cache.Set(ctx, fxSnapshotKey, raw, g.ttl); err != nil {
				g.log.Warn().Err(err).Msg("fx snapshot write failed")
			}
		}
	}
	return table, nil
}

func (g *Gateway) cachedDecimal(ctx context.Context, key string) (decimal.Decimal, bool) {
	if g.cache == nil {
		return decimal.Zero, false
	}
	raw, err := g.cache.Get(ctx, key)
	if err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("price snapshot read failed")
		return decimal.Zero, false
	}
	if raw == nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func (g *Gateway) store(ctx context.Context, key string, d decimal.Decimal) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Set(ctx, key, []byte(d.String()), g.ttl); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("price snapshot write failed")
	}
}
