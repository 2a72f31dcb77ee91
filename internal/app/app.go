package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/koiblue2800/Bot-cotizaciones/internal/alerting"
	"github.com/koiblue2800/Bot-cotizaciones/internal/config"
	"github.com/koiblue2800/Bot-cotizaciones/internal/detector"
	"github.com/koiblue2800/Bot-cotizaciones/internal/fetcher"
	"github.com/koiblue2800/Bot-cotizaciones/internal/format"
	"github.com/koiblue2800/Bot-cotizaciones/internal/health"
	"github.com/koiblue2800/Bot-cotizaciones/internal/monitor"
	"github.com/koiblue2800/Bot-cotizaciones/internal/quote"
	"github.com/koiblue2800/Bot-cotizaciones/internal/scheduler"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetchers() (*fetcher.DolarAPI, *fetcher.CoinGecko) {
	dolar := fetcher.NewDolarAPI(fetcher.DolarAPIOptions{
		BaseURL:   a.Config.Dolar.BaseURL,
		Houses:    a.Config.Dolar.Houses,
		Timeout:   a.Config.Dolar.RequestTimeout,
		UserAgent: a.Config.Dolar.UserAgent,
	}, a.Logger)

	gecko := fetcher.NewCoinGecko(fetcher.CoinGeckoOptions{
		BaseURL:       a.Config.CoinGecko.BaseURL,
		APIKey:        a.Config.CoinGecko.APIKey,
		CoinIDs:       a.Config.CoinGecko.Coins,
		TrendingLimit: a.Config.CoinGecko.TrendingLimit,
		Timeout:       a.Config.CoinGecko.RequestTimeout,
		UserAgent:     a.Config.CoinGecko.UserAgent,
	}, a.Logger)

	return dolar, gecko
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Telegram.Enabled {
		cfg := a.Config.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return alerting.NewLogNotifier(a.Logger)
}

// Run executes the long-running monitoring service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dolar, gecko := a.newFetchers()
	notifier := a.newNotifier()

	sched := scheduler.New(scheduler.Options{
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	dolarTask := monitor.NewPriceTask(
		quote.FamilyDolar,
		dolar,
		detector.NewAbsolute(),
		format.Dolar,
		notifier,
		a.Logger,
	)
	stablecoinTask := monitor.NewPriceTask(
		quote.FamilyStablecoins,
		gecko,
		detector.NewThreshold(decimal.NewFromFloat(a.Config.CoinGecko.ThresholdPct), "usd"),
		format.Stablecoins,
		notifier,
		a.Logger,
	)
	trendingTask := monitor.NewTrendingTask(
		gecko,
		format.Trending,
		notifier,
		a.Config.Scheduler.TrendingMinInterval,
		a.Logger,
	)

	sched.Add(scheduler.Interval{Every: a.Config.Scheduler.DolarInterval}, dolarTask)
	sched.Add(scheduler.Interval{Every: a.Config.Scheduler.StablecoinInterval}, stablecoinTask)
	sched.Add(scheduler.DailyAt{
		Hour:     a.Config.Scheduler.TrendingHour,
		Minute:   a.Config.Scheduler.TrendingMinute,
		Location: a.Config.TrendingLocation(),
	}, trendingTask)

	if a.Config.Health.Enabled {
		healthSrv := health.New(a.Config.Health.Port, a.Logger)
		go func() {
			if err := healthSrv.Run(ctx); err != nil {
				a.Logger.Error().Err(err).Msg("liveness endpoint failed")
			}
		}()
	}

	if err := notifier.Notify(ctx, format.Startup()); err != nil {
		a.Logger.Warn().Err(err).Msg("startup message delivery failed")
	}

	a.Logger.Info().Msg("starting monitoring service")
	err := sched.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring service stopped")
	return nil
}
