package format

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koiblue2800/Bot-cotizaciones/internal/quote"
)

func dolarEntry(withPrevious bool, compraDelta string) quote.ChangeEntry {
	current := quote.Quote{
		Instrument: "blue",
		Label:      "Blue",
		Fields: map[string]decimal.Decimal{
			"compra": decimal.RequireFromString("1005"),
			"venta":  decimal.RequireFromString("1025"),
		},
	}
	entry := quote.ChangeEntry{
		Instrument: quote.Instrument{ID: "blue", Label: "Blue"},
		Current:    current,
	}
	if withPrevious {
		previous := quote.Quote{
			Instrument: "blue",
			Fields: map[string]decimal.Decimal{
				"compra": decimal.RequireFromString("1000"),
				"venta":  decimal.RequireFromString("1025"),
			},
		}
		entry.Previous = &previous
		entry.Deltas = map[string]decimal.Decimal{
			"compra": decimal.RequireFromString(compraDelta),
			"venta":  decimal.Zero,
		}
	}
	return entry
}

func TestDolarSuppressedWhenNothingChanged(t *testing.T) {
	assert.Empty(t, Dolar(nil, false))
}

func TestDolarInitialWithoutEntriesStillRenders(t *testing.T) {
	text := Dolar(nil, true)
	require.NotEmpty(t, text)
	assert.Contains(t, text, "Cotización del dólar")
	assert.Contains(t, text, "DolarAPI")
}

func TestDolarFirstObservationOmitsDelta(t *testing.T) {
	text := Dolar([]quote.ChangeEntry{dolarEntry(false, "")}, true)
	assert.Contains(t, text, "*Blue*")
	assert.Contains(t, text, "Compra $1005.00")
	assert.NotContains(t, text, "(")
}

func TestDolarSignedDeltaAndZeroOmitted(t *testing.T) {
	text := Dolar([]quote.ChangeEntry{dolarEntry(true, "5")}, false)
	assert.Contains(t, text, "Compra $1005.00 (+5.00)")
	// venta delta is exactly zero, so no suffix on that field
	assert.Contains(t, text, "Venta $1025.00\n")
}

func TestDolarNegativeDelta(t *testing.T) {
	text := Dolar([]quote.ChangeEntry{dolarEntry(true, "-5")}, false)
	assert.Contains(t, text, "(-5.00)")
}

func TestStablecoinsLine(t *testing.T) {
	previous := quote.Quote{
		Instrument: "tether",
		Fields:     map[string]decimal.Decimal{"usd": decimal.RequireFromString("1.00")},
	}
	entry := quote.ChangeEntry{
		Instrument: quote.Instrument{ID: "tether", Label: "TETHER"},
		Previous:   &previous,
		Current: quote.Quote{
			Instrument: "tether",
			Fields:     map[string]decimal.Decimal{"usd": decimal.RequireFromString("1.006")},
		},
		Deltas: map[string]decimal.Decimal{"usd": decimal.RequireFromString("0.006")},
	}

	text := Stablecoins([]quote.ChangeEntry{entry}, false)
	assert.Contains(t, text, "*TETHER*: *$1.006 USD* (+0.0060)")
	assert.Contains(t, text, "CoinGecko")
}

func TestStablecoinsSuppressed(t *testing.T) {
	assert.Empty(t, Stablecoins(nil, false))
}

func TestTrendingDigest(t *testing.T) {
	coins := []quote.TrendingCoin{
		{Rank: 1, Name: "Bitcoin", Symbol: "BTC"},
		{Rank: 2, Name: "", Symbol: ""},
	}

	text := Trending(coins)
	require.NotEmpty(t, text)
	assert.Contains(t, text, "*Top 1:* Bitcoin (BTC)")
	assert.Contains(t, text, "*Top 2:* N/A (N/A)")
	assert.True(t, strings.Contains(text, "Tendencias de criptomonedas"))
}

func TestTrendingEmptyList(t *testing.T) {
	assert.Empty(t, Trending(nil))
}

func TestStartupNonEmpty(t *testing.T) {
	assert.NotEmpty(t, Startup())
}
