package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang-futures-bot/internal/trading/dto"
	"golang-futures-bot/pkg/config"
	"golang-futures-bot/pkg/logger"

	"github.com/patrickmn/go-cache"
)

// ErrInvalidSymbol is returned when a price lookup fails for a symbol.
var ErrInvalidSymbol = errors.New("invalid symbol")

const defaultBinanceBaseURL = "https://fapi.binance.com"

// BinanceRepository provides access to Binance futures public market data.
type BinanceRepository interface {
	GetPrice(ctx context.Context, symbol string) (*dto.PriceQuote, error)
	GetDetails(ctx context.Context, symbol string) (*dto.MarketDetails, error)
	GetTopMovers(ctx context.Context, limit int) ([]dto.MarketMover, error)
}

type binanceRepository struct {
	baseURL    string
	httpClient *http.Client
	priceCache *cache.Cache
	logger     *logger.Logger
}

// NewBinanceRepository creates a Binance futures market data repository. A
// short-TTL cache sits in front of GetPrice so one sweep over many positions
// on the same symbol costs a single HTTP call.
func NewBinanceRepository(cfg config.Binance, log *logger.Logger) (BinanceRepository, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBinanceBaseURL
	}

	timeout := 10 * time.Second
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid binance timeout: %w", err)
		}
		timeout = d
	}

	cacheTTL := 5 * time.Second
	if cfg.PriceCacheTTL != "" {
		d, err := time.ParseDuration(cfg.PriceCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid price cache ttl: %w", err)
		}
		cacheTTL = d
	}

	return &binanceRepository{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		priceCache: cache.New(cacheTTL, 2*cacheTTL),
		logger:     log,
	}, nil
}

// NormalizeSymbol upper-cases a symbol and appends the USDT quote currency
// when missing.
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !strings.HasSuffix(symbol, "USDT") {
		symbol += "USDT"
	}
	return symbol
}

func (r *binanceRepository) GetPrice(ctx context.Context, symbol string) (*dto.PriceQuote, error) {
	symbol = NormalizeSymbol(symbol)

	if cached, found := r.priceCache.Get(symbol); found {
		quote := cached.(dto.PriceQuote)
		return &quote, nil
	}

	var raw dto.TickerPriceResponse
	if err := r.getJSON(ctx, "/fapi/v1/ticker/price", url.Values{"symbol": {symbol}}, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSymbol, symbol)
	}

	price, err := strconv.ParseFloat(raw.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSymbol, symbol)
	}

	quote := dto.PriceQuote{Symbol: raw.Symbol, Price: price}
	r.priceCache.SetDefault(symbol, quote)
	return &quote, nil
}

func (r *binanceRepository) GetDetails(ctx context.Context, symbol string) (*dto.MarketDetails, error) {
	symbol = NormalizeSymbol(symbol)

	quote, err := r.GetPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	var raw dto.Ticker24hResponse
	if err := r.getJSON(ctx, "/fapi/v1/ticker/24hr", url.Values{"symbol": {symbol}}, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSymbol, symbol)
	}

	details := &dto.MarketDetails{
		Symbol: quote.Symbol,
		Price:  quote.Price,
	}
	details.PriceChange, _ = strconv.ParseFloat(raw.PriceChange, 64)
	details.PriceChangePercent, _ = strconv.ParseFloat(raw.PriceChangePercent, 64)
	details.HighPrice, _ = strconv.ParseFloat(raw.HighPrice, 64)
	details.LowPrice, _ = strconv.ParseFloat(raw.LowPrice, 64)
	details.Volume, _ = strconv.ParseFloat(raw.Volume, 64)
	details.QuoteVolume, _ = strconv.ParseFloat(raw.QuoteVolume, 64)
	return details, nil
}

func (r *binanceRepository) GetTopMovers(ctx context.Context, limit int) ([]dto.MarketMover, error) {
	var raw []dto.Ticker24hResponse
	if err := r.getJSON(ctx, "/fapi/v1/ticker/24hr", nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch market tickers: %w", err)
	}

	movers := make([]dto.MarketMover, 0, len(raw))
	for _, t := range raw {
		if !strings.HasSuffix(t.Symbol, "USDT") {
			continue
		}
		changePercent, _ := strconv.ParseFloat(t.PriceChangePercent, 64)
		quoteVolume, _ := strconv.ParseFloat(t.QuoteVolume, 64)
		movers = append(movers, dto.MarketMover{
			Symbol:             t.Symbol,
			PriceChangePercent: changePercent,
			QuoteVolume:        quoteVolume,
		})
	}

	sort.Slice(movers, func(i, j int) bool {
		return movers[i].QuoteVolume > movers[j].QuoteVolume
	})
	if len(movers) > limit {
		movers = movers[:limit]
	}
	return movers, nil
}

func (r *binanceRepository) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := r.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
