package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koiblue2800/Bot-cotizaciones/internal/detector"
	"github.com/koiblue2800/Bot-cotizaciones/internal/fetcher"
	"github.com/koiblue2800/Bot-cotizaciones/internal/format"
	"github.com/koiblue2800/Bot-cotizaciones/internal/monitor"
	"github.com/koiblue2800/Bot-cotizaciones/internal/quote"
)

// SimulateNotification 通过静态行情驱动两个完整的监控周期（首次观测 + 价格变动），
// 用于验证通知链路配置是否正确。
func (a *App) SimulateNotification(ctx context.Context, compra, venta decimal.Decimal) error {
	notifier := a.newNotifier()

	static := &staticQuoteFetcher{}
	static.set("simulado", "Simulado", compra, venta)

	task := monitor.NewPriceTask(
		quote.FamilyDolar,
		static,
		detector.NewAbsolute(),
		format.Dolar,
		notifier,
		a.Logger,
	)

	// First cycle announces the initial observation.
	if err := task.Run(ctx); err != nil {
		return err
	}

	// Second cycle announces a change.
	five := decimal.NewFromInt(5)
	static.set("simulado", "Simulado", compra.Add(five), venta.Add(five))
	return task.Run(ctx)
}

type staticQuoteFetcher struct {
	snapshot quote.Snapshot
}

func (s *staticQuoteFetcher) set(id, label string, compra, venta decimal.Decimal) {
	s.snapshot = quote.Snapshot{
		id: {
			Instrument: id,
			Label:      label,
			Fields: map[string]decimal.Decimal{
				"compra": compra,
				"venta":  venta,
			},
			ObservedAt: time.Now().UTC(),
		},
	}
}

func (s *staticQuoteFetcher) FetchQuotes(ctx context.Context) (quote.Snapshot, error) {
	return s.snapshot, nil
}

var _ fetcher.QuoteFetcher = (*staticQuoteFetcher)(nil)
