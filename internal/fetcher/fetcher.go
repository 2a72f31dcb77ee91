package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/koiblue2800/Bot-cotizaciones/internal/quote"
)

// QuoteFetcher retrieves the current quotes for one instrument family.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context) (quote.Snapshot, error)
}

// TrendingFetcher retrieves the ranked trending-coin list.
type TrendingFetcher interface {
	FetchTrending(ctx context.Context) ([]quote.TrendingCoin, error)
}

// APIError describes a non-2xx response from a quote provider.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s api error (%d): %s", e.Provider, e.Status, e.Body)
	}
	return fmt.Sprintf("%s api error (%d)", e.Provider, e.Status)
}

// RateLimited reports whether the provider asked us to back off. The poll
// cycle is skipped either way; callers only use this to soften the log level.
func (e *APIError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

func newAPIError(provider string, status int, payload []byte) *APIError {
	return &APIError{
		Provider: provider,
		Status:   status,
		Body:     strings.TrimSpace(string(payload)),
	}
}
