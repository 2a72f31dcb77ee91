package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/koiblue2800/Bot-cotizaciones/internal/alerting"
	"github.com/koiblue2800/Bot-cotizaciones/internal/detector"
	"github.com/koiblue2800/Bot-cotizaciones/internal/fetcher"
	"github.com/koiblue2800/Bot-cotizaciones/internal/quote"
)

// RenderFunc turns a change set into a message body. Empty output
// suppresses the send.
type RenderFunc func(entries []quote.ChangeEntry, isInitial bool) string

// TrendingRenderFunc renders the trending digest body.
type TrendingRenderFunc func(coins []quote.TrendingCoin) string

// PriceTask runs the fetch → evaluate → notify cycle for one price family.
// It is the single owner of that family's baseline; nothing else reads or
// writes it, and the scheduler never overlaps invocations of one task.
type PriceTask struct {
	family   quote.Family
	fetcher  fetcher.QuoteFetcher
	policy   detector.Policy
	render   RenderFunc
	notifier alerting.Notifier
	logger   zerolog.Logger

	lastKnown   quote.Snapshot
	initialSent bool
}

// NewPriceTask constructs a price monitoring task.
func NewPriceTask(family quote.Family, f fetcher.QuoteFetcher, policy detector.Policy, render RenderFunc, notifier alerting.Notifier, logger zerolog.Logger) *PriceTask {
	return &PriceTask{
		family:    family,
		fetcher:   f,
		policy:    policy,
		render:    render,
		notifier:  notifier,
		logger:    logger.With().Str("component", "monitor").Str("family", string(family)).Logger(),
		lastKnown: quote.Snapshot{},
	}
}

// Name identifies the task in scheduler logs.
func (t *PriceTask) Name() string {
	return string(t.family)
}

// Run executes one monitoring cycle.
//
// Invariant: the baseline and the initial flag are committed once a message
// was rendered and delivery attempted, regardless of the send outcome. A
// flapping sink must not cause the same change to be announced twice.
func (t *PriceTask) Run(ctx context.Context) error {
	snapshot, err := t.fetcher.FetchQuotes(ctx)
	if err != nil {
		var apiErr *fetcher.APIError
		if errors.As(err, &apiErr) && apiErr.RateLimited() {
			t.logger.Warn().Err(err).Msg("provider rate limited; cycle skipped")
			return nil
		}
		return fmt.Errorf("fetch %s quotes: %w", t.family, err)
	}

	entries, updated := t.policy.Detect(snapshot, t.lastKnown)
	isInitial := !t.initialSent

	if !isInitial && len(entries) == 0 {
		// Commit first-observation baselines recorded by the detector so a
		// repeated no-op poll does not keep treating them as new.
		t.lastKnown = updated
		t.logger.Debug().Msg("no material changes")
		return nil
	}

	text := t.render(entries, isInitial)
	if text == "" {
		t.lastKnown = updated
		return nil
	}

	if err := t.notifier.Notify(ctx, text); err != nil {
		t.logger.Error().Err(err).Msg("notification delivery failed")
	}

	t.lastKnown = updated
	t.initialSent = true
	t.logger.Info().Int("changes", len(entries)).Bool("initial", isInitial).Msg("cycle notified")
	return nil
}

// TrendingTask sends the daily trending digest, throttled to a minimum
// interval between sends on top of its time-of-day trigger.
type TrendingTask struct {
	fetcher     fetcher.TrendingFetcher
	render      TrendingRenderFunc
	notifier    alerting.Notifier
	logger      zerolog.Logger
	minInterval time.Duration
	now         func() time.Time

	lastSent time.Time
}

// NewTrendingTask constructs the digest task. A non-positive minInterval
// defaults to 23 hours.
func NewTrendingTask(f fetcher.TrendingFetcher, render TrendingRenderFunc, notifier alerting.Notifier, minInterval time.Duration, logger zerolog.Logger) *TrendingTask {
	if minInterval <= 0 {
		minInterval = 23 * time.Hour
	}
	return &TrendingTask{
		fetcher:     f,
		render:      render,
		notifier:    notifier,
		logger:      logger.With().Str("component", "monitor").Str("family", string(quote.FamilyTrending)).Logger(),
		minInterval: minInterval,
		now:         time.Now,
	}
}

// Name identifies the task in scheduler logs.
func (t *TrendingTask) Name() string {
	return string(quote.FamilyTrending)
}

// Run fetches and sends the digest unless throttled. The send timestamp is
// committed after a delivery attempt, same rule as PriceTask.
func (t *TrendingTask) Run(ctx context.Context) error {
	if !t.lastSent.IsZero() && t.now().Sub(t.lastSent) < t.minInterval {
		t.logger.Debug().Time("last_sent", t.lastSent).Msg("digest throttled")
		return nil
	}

	coins, err := t.fetcher.FetchTrending(ctx)
	if err != nil {
		var apiErr *fetcher.APIError
		if errors.As(err, &apiErr) && apiErr.RateLimited() {
			t.logger.Warn().Err(err).Msg("provider rate limited; cycle skipped")
			return nil
		}
		return fmt.Errorf("fetch trending list: %w", err)
	}

	text := t.render(coins)
	if text == "" {
		t.logger.Debug().Msg("empty trending list; nothing to send")
		return nil
	}

	if err := t.notifier.Notify(ctx, text); err != nil {
		t.logger.Error().Err(err).Msg("digest delivery failed")
	}

	t.lastSent = t.now()
	t.logger.Info().Int("coins", len(coins)).Msg("trending digest sent")
	return nil
}
