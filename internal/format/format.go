package format

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/koiblue2800/Bot-cotizaciones/internal/quote"
)

const (
	footerDolarAPI  = "\nℹ️ Información proporcionada por DolarAPI."
	footerCoinGecko = "\nℹ️ Información proporcionada por CoinGecko."
	placeholder     = "N/A"
)

// Startup is the hello message sent once when the process comes up.
func Startup() string {
	return "🤖 *Bot de cotizaciones iniciado* 🤖\nMonitoreando el mercado 24/7..."
}

// Dolar renders a dolar change set. Returns "" when there is nothing to
// announce, which suppresses the send.
func Dolar(entries []quote.ChangeEntry, isInitial bool) string {
	if len(entries) == 0 && !isInitial {
		return ""
	}

	builder := strings.Builder{}
	builder.WriteString("💵 *Cotización del dólar* 💵\n")
	for _, entry := range entries {
		builder.WriteString(fmt.Sprintf("🔹 *%s*: Compra $%s | Venta $%s\n",
			label(entry.Instrument),
			amountWithDelta(entry, "compra", 2),
			amountWithDelta(entry, "venta", 2),
		))
	}
	builder.WriteString(footerDolarAPI)
	return builder.String()
}

// Stablecoins renders a stablecoin change set. Same suppression rule as Dolar.
func Stablecoins(entries []quote.ChangeEntry, isInitial bool) string {
	if len(entries) == 0 && !isInitial {
		return ""
	}

	builder := strings.Builder{}
	builder.WriteString("🪙 *Precios de stablecoins* 🪙\n")
	for _, entry := range entries {
		builder.WriteString(fmt.Sprintf("🔹 *%s*: *$%s USD*%s\n",
			strings.ToUpper(label(entry.Instrument)),
			amount(entry.Current, "usd"),
			deltaSuffix(entry, "usd", 4),
		))
	}
	builder.WriteString(footerCoinGecko)
	return builder.String()
}

// Trending renders the daily top-N digest. Returns "" for an empty list.
func Trending(coins []quote.TrendingCoin) string {
	if len(coins) == 0 {
		return ""
	}

	lines := lo.Map(coins, func(coin quote.TrendingCoin, _ int) string {
		name := coin.Name
		if name == "" {
			name = placeholder
		}
		symbol := coin.Symbol
		if symbol == "" {
			symbol = placeholder
		}
		return fmt.Sprintf("🔸 *Top %d:* %s (%s)\n", coin.Rank, name, symbol)
	})

	builder := strings.Builder{}
	builder.WriteString("📈 *Tendencias de criptomonedas* 📈\n")
	for _, line := range lines {
		builder.WriteString(line)
	}
	builder.WriteString(footerCoinGecko)
	return builder.String()
}

func label(instrument quote.Instrument) string {
	if instrument.Label != "" {
		return instrument.Label
	}
	return instrument.ID
}

func amount(q quote.Quote, field string) string {
	value, ok := q.Fields[field]
	if !ok {
		return placeholder
	}
	return value.String()
}

func amountWithDelta(entry quote.ChangeEntry, field string, places int32) string {
	value, ok := entry.Current.Fields[field]
	if !ok {
		return placeholder
	}
	return value.StringFixed(places) + deltaSuffix(entry, field, places)
}

// deltaSuffix yields " (+d.dd)" or " (-d.dd)", and "" when the delta is
// exactly zero or the entry is a first observation.
func deltaSuffix(entry quote.ChangeEntry, field string, places int32) string {
	if entry.Previous == nil {
		return ""
	}
	delta, ok := entry.Deltas[field]
	if !ok || delta.IsZero() {
		return ""
	}
	sign := ""
	if delta.GreaterThan(decimal.Zero) {
		sign = "+"
	}
	return fmt.Sprintf(" (%s%s)", sign, delta.StringFixed(places))
}
