package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/koiblue2800/Bot-cotizaciones/internal/quote"
)

const dolaresPath = "/dolares"

// DolarAPIOptions parameterise the DolarAPI fetcher.
type DolarAPIOptions struct {
	BaseURL   string
	Houses    []string
	Timeout   time.Duration
	UserAgent string
}

// DolarAPI fetches peso exchange quotes from dolarapi.com.
type DolarAPI struct {
	opts    DolarAPIOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
	houses  map[string]struct{}
}

// NewDolarAPI constructs a DolarAPI fetcher.
func NewDolarAPI(opts DolarAPIOptions, logger zerolog.Logger) *DolarAPI {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://dolarapi.com/v1"
	}

	return &DolarAPI{
		opts:    opts,
		logger:  logger.With().Str("component", "dolar_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		houses: lo.SliceToMap(opts.Houses, func(casa string) (string, struct{}) {
			return strings.ToLower(casa), struct{}{}
		}),
	}
}

// FetchQuotes retrieves the configured exchange houses in one batched call.
func (d *DolarAPI) FetchQuotes(ctx context.Context) (quote.Snapshot, error) {
	if len(d.houses) == 0 {
		return nil, errors.New("no exchange houses configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+dolaresPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(d.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "bot-cotizaciones/1.0")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError("dolarapi", resp.StatusCode, payload)
	}

	var quotes []dolarQuote
	if err := json.Unmarshal(payload, &quotes); err != nil {
		return nil, fmt.Errorf("parse dolarapi payload: %w", err)
	}

	fetchedAt := time.Now().UTC()
	snapshot := make(quote.Snapshot, len(d.houses))
	for _, q := range quotes {
		casa := strings.ToLower(q.Casa)
		if _, wanted := d.houses[casa]; !wanted {
			continue
		}

		observedAt := fetchedAt
		if ts, parseErr := time.Parse(time.RFC3339, q.FechaActualizacion); parseErr == nil {
			observedAt = ts.UTC()
		}

		snapshot[casa] = quote.Quote{
			Instrument: casa,
			Label:      q.Nombre,
			Fields: map[string]decimal.Decimal{
				"compra": q.Compra,
				"venta":  q.Venta,
			},
			ObservedAt: observedAt,
		}
	}

	d.logger.Debug().Int("instruments", len(snapshot)).Msg("dolar quotes fetched")
	return snapshot, nil
}

type dolarQuote struct {
	Casa               string          `json:"casa"`
	Nombre             string          `json:"nombre"`
	Compra             decimal.Decimal `json:"compra"`
	Venta              decimal.Decimal `json:"venta"`
	FechaActualizacion string          `json:"fechaActualizacion"`
}

var _ QuoteFetcher = (*DolarAPI)(nil)
