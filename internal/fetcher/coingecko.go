package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/koiblue2800/Bot-cotizaciones/internal/quote"
)

const (
	simplePricePath = "/simple/price"
	trendingPath    = "/search/trending"
)

// CoinGeckoOptions parameterise the CoinGecko fetcher.
type CoinGeckoOptions struct {
	BaseURL       string
	APIKey        string
	CoinIDs       []string
	TrendingLimit int
	Timeout       time.Duration
	UserAgent     string
}

// CoinGecko fetches stablecoin prices and the trending list from the
// CoinGecko public API.
type CoinGecko struct {
	opts    CoinGeckoOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewCoinGecko constructs a CoinGecko fetcher.
func NewCoinGecko(opts CoinGeckoOptions, logger zerolog.Logger) *CoinGecko {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}

	if opts.TrendingLimit <= 0 {
		opts.TrendingLimit = 7
	}

	return &CoinGecko{
		opts:    opts,
		logger:  logger.With().Str("component", "coingecko_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchQuotes retrieves USD prices for the configured coin ids.
func (c *CoinGecko) FetchQuotes(ctx context.Context) (quote.Snapshot, error) {
	if len(c.opts.CoinIDs) == 0 {
		return nil, errors.New("no coin ids configured")
	}

	params := url.Values{}
	params.Set("ids", strings.Join(c.opts.CoinIDs, ","))
	params.Set("vs_currencies", "usd")

	payload, err := c.get(ctx, simplePricePath+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var prices map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(payload, &prices); err != nil {
		return nil, fmt.Errorf("parse coingecko payload: %w", err)
	}

	fetchedAt := time.Now().UTC()
	snapshot := make(quote.Snapshot, len(prices))
	for id, fields := range prices {
		usd, ok := fields["usd"]
		if !ok {
			c.logger.Warn().Str("coin", id).Msg("usd price missing from response")
			continue
		}
		snapshot[id] = quote.Quote{
			Instrument: id,
			Label:      strings.ToUpper(id),
			Fields:     map[string]decimal.Decimal{"usd": usd},
			ObservedAt: fetchedAt,
		}
	}

	c.logger.Debug().Int("instruments", len(snapshot)).Msg("stablecoin quotes fetched")
	return snapshot, nil
}

// FetchTrending retrieves the ranked trending list, truncated to the
// configured limit.
func (c *CoinGecko) FetchTrending(ctx context.Context) ([]quote.TrendingCoin, error) {
	payload, err := c.get(ctx, trendingPath)
	if err != nil {
		return nil, err
	}

	var trending trendingResponse
	if err := json.Unmarshal(payload, &trending); err != nil {
		return nil, fmt.Errorf("parse trending payload: %w", err)
	}

	limit := c.opts.TrendingLimit
	if len(trending.Coins) < limit {
		limit = len(trending.Coins)
	}

	coins := make([]quote.TrendingCoin, 0, limit)
	for idx, entry := range trending.Coins[:limit] {
		coins = append(coins, quote.TrendingCoin{
			Rank:   idx + 1,
			Name:   entry.Item.Name,
			Symbol: strings.ToUpper(entry.Item.Symbol),
		})
	}

	c.logger.Debug().Int("coins", len(coins)).Msg("trending list fetched")
	return coins, nil
}

func (c *CoinGecko) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "bot-cotizaciones/1.0")
	}
	if c.opts.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.opts.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError("coingecko", resp.StatusCode, payload)
	}
	return payload, nil
}

type trendingResponse struct {
	Coins []struct {
		Item struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"item"`
	} `json:"coins"`
}

var (
	_ QuoteFetcher    = (*CoinGecko)(nil)
	_ TrendingFetcher = (*CoinGecko)(nil)
)
