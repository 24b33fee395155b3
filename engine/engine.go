package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dnldd/htfbot/fetch"
	"github.com/dnldd/htfbot/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
	// maxWorkers is the maximum number of concurrent instrument scans.
	maxWorkers = 8
	// defaultMinSeriesLength is the minimum series length required before
	// detection is meaningful.
	defaultMinSeriesLength = 100
)

// EngineConfig represents the configuration for the signal engine.
type EngineConfig struct {
	// Markets represents the tracked markets.
	Markets []string
	// Interval is the candle interval fetched per scan.
	Interval shared.Interval
	// Lookback is the trailing candle window fetched per scan.
	Lookback time.Duration
	// ScanInterval is the delay between scan cycles.
	ScanInterval time.Duration
	// MinSeriesLength is the minimum series length required for detection.
	MinSeriesLength int
	// FallbackEnabled substitutes a synthetic series when a fetch fails.
	FallbackEnabled bool
	// MarketHours is the upstream market's active trading window.
	MarketHours *shared.MarketHours
	// ExchangeClient represents the market data provider client.
	ExchangeClient shared.MarketFetcher
	// Normalizer maps provider payloads into canonical series.
	Normalizer *fetch.Normalizer
	// Detector analyzes series for trading signals.
	Detector shared.SignalDetector
	// Notify dispatches the provided signal to the notification channel.
	Notify func(ctx context.Context, signal *shared.Signal) error
	// PersistSignal stores the provided dispatched signal, may be nil.
	PersistSignal func(ctx context.Context, signal *shared.Signal) error
	// Cooldown deduplicates repeat signals.
	Cooldown *CooldownTracker
	// SignalLog records forwarded signals for display.
	SignalLog *SignalLog
	// JobScheduler schedules the scan cycles.
	JobScheduler *gocron.Scheduler
	// Now returns the current market time, defaults to kolkata time.
	Now func() (time.Time, error)
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *EngineConfig) Validate() error {
	var errs error

	if len(cfg.Markets) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no markets provided for the engine"))
	}
	if cfg.ScanInterval <= 0 {
		errs = errors.Join(errs, fmt.Errorf("scan interval must be positive"))
	}
	if cfg.Lookback <= 0 {
		errs = errors.Join(errs, fmt.Errorf("lookback window must be positive"))
	}
	if cfg.MarketHours == nil {
		errs = errors.Join(errs, fmt.Errorf("market hours cannot be nil"))
	}
	if cfg.ExchangeClient == nil {
		errs = errors.Join(errs, fmt.Errorf("exchange client cannot be nil"))
	}
	if cfg.Normalizer == nil {
		errs = errors.Join(errs, fmt.Errorf("normalizer cannot be nil"))
	}
	if cfg.Detector == nil {
		errs = errors.Join(errs, fmt.Errorf("detector cannot be nil"))
	}
	if cfg.Notify == nil {
		errs = errors.Join(errs, fmt.Errorf("notify function cannot be nil"))
	}
	if cfg.Cooldown == nil {
		errs = errors.Join(errs, fmt.Errorf("cooldown tracker cannot be nil"))
	}
	if cfg.SignalLog == nil {
		errs = errors.Join(errs, fmt.Errorf("signal log cannot be nil"))
	}
	if cfg.JobScheduler == nil {
		errs = errors.Join(errs, fmt.Errorf("job scheduler cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Engine represents the signal polling engine. It drives scan cycles over the
// configured markets and funnels detected signals through cooldown
// deduplication into dispatch.
type Engine struct {
	cfg        *EngineConfig
	candidates chan shared.Signal
	workers    chan struct{}
}

// NewEngine initializes a new signal engine.
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.MinSeriesLength <= 0 {
		cfg.MinSeriesLength = defaultMinSeriesLength
	}
	if cfg.Now == nil {
		cfg.Now = func() (time.Time, error) {
			now, _, err := shared.KolkataTime()
			return now, err
		}
	}

	return &Engine{
		cfg:        cfg,
		candidates: make(chan shared.Signal, bufferSize),
		workers:    make(chan struct{}, maxWorkers),
	}, nil
}

// fetchSeries fetches and normalizes the trailing candle window for the
// provided market.
func (e *Engine) fetchSeries(ctx context.Context, market string, now time.Time) (*shared.Series, error) {
	start := now.Add(-e.cfg.Lookback)

	payload, err := e.cfg.ExchangeClient.FetchIndexIntraday(ctx, market, e.cfg.Interval, start, now)
	if err != nil {
		return nil, err
	}

	series, err := e.cfg.Normalizer.Normalize(market, e.cfg.Interval, payload)
	if err != nil {
		return nil, err
	}

	return series, nil
}

// fetchCurrentPrice fetches the current quote price for the provided market.
func (e *Engine) fetchCurrentPrice(ctx context.Context, market string) (float64, error) {
	instrument, err := shared.FindInstrument(market)
	if err != nil {
		return 0, err
	}

	payload, err := e.cfg.ExchangeClient.FetchQuote(ctx, market)
	if err != nil {
		return 0, err
	}

	return fetch.LastPrice(payload, instrument)
}

// scanInstrument runs one fetch, normalize and detect pass for the provided
// market, forwarding candidate signals for dispatch. Failures are isolated to
// the instrument and never abort the cycle.
func (e *Engine) scanInstrument(ctx context.Context, market string, now time.Time) {
	series, err := e.fetchSeries(ctx, market, now)
	if err != nil {
		e.cfg.Logger.Error().Msgf("fetching series for %s: %v", market, err)

		if !e.cfg.FallbackEnabled {
			return
		}

		instrument, fErr := shared.FindInstrument(market)
		if fErr != nil {
			return
		}

		e.cfg.Logger.Warn().Msgf("substituting synthetic series for %s", market)
		series = fetch.GenerateSyntheticSeries(instrument, e.cfg.Interval,
			e.cfg.MinSeriesLength+fetch.DefaultSyntheticLength, now)
	}

	if len(series.Candles) < e.cfg.MinSeriesLength {
		// Insufficient history is not an error, detection is skipped for
		// this cycle.
		e.cfg.Logger.Debug().Msgf("%s series too short for detection: %d/%d",
			market, len(series.Candles), e.cfg.MinSeriesLength)
		return
	}

	signals, err := e.cfg.Detector.Detect(series)
	if err != nil {
		e.cfg.Logger.Error().Msgf("detecting signals for %s: %v", market, err)
		return
	}

	if len(signals) == 0 {
		return
	}

	currentPrice, err := e.fetchCurrentPrice(ctx, market)
	if err != nil {
		// The last close stands in when the quote is unavailable.
		e.cfg.Logger.Debug().Msgf("fetching quote for %s: %v", market, err)
	}

	for idx := range signals {
		signals[idx].Synthetic = series.Synthetic
		if currentPrice > 0 {
			signals[idx].Price = currentPrice
		}

		select {
		case e.candidates <- signals[idx]:
			// do nothing.
		case <-ctx.Done():
			// Abandoned cycles discard their candidates entirely.
			return
		default:
			e.cfg.Logger.Error().Msgf("candidate signal channel at capacity: %d/%d",
				len(e.candidates), bufferSize)
		}
	}
}

// scan runs one scan cycle over all configured markets. Per-instrument scans
// run concurrently under the worker limit.
func (e *Engine) scan(ctx context.Context) {
	now, err := e.cfg.Now()
	if err != nil {
		e.cfg.Logger.Error().Msgf("fetching current time: %v", err)
		return
	}

	open, err := e.cfg.MarketHours.IsMarketOpen(now)
	if err != nil {
		e.cfg.Logger.Error().Msgf("checking market hours: %v", err)
		return
	}

	if !open {
		e.cfg.Logger.Debug().Msg("market closed, skipping scan cycle")
		return
	}

	var wg sync.WaitGroup
	for idx := range e.cfg.Markets {
		market := e.cfg.Markets[idx]

		e.workers <- struct{}{}
		wg.Add(1)
		go func(market string) {
			defer wg.Done()
			e.scanInstrument(ctx, market, now)
			<-e.workers
		}(market)
	}

	wg.Wait()
}

// handleCandidate applies cooldown deduplication to the provided candidate and
// dispatches it when it survives. Dispatches are serialized through the run
// loop, so the suppress check, dispatch and record are atomic per key.
func (e *Engine) handleCandidate(ctx context.Context, signal shared.Signal) {
	now, err := e.cfg.Now()
	if err != nil {
		e.cfg.Logger.Error().Msgf("fetching current time: %v", err)
		return
	}

	key := signal.DedupKey()
	if e.cfg.Cooldown.ShouldSuppress(key, now) {
		e.cfg.Logger.Debug().Msgf("suppressing %s signal inside cooldown window", key)
		return
	}

	e.cfg.SignalLog.Append(signal)

	err = e.cfg.Notify(ctx, &signal)
	if err != nil {
		// A failed dispatch never records, the next cycle may retry.
		e.cfg.Logger.Error().Msgf("notifying %s signal: %v", key, err)
		return
	}

	e.cfg.Cooldown.RecordDispatch(key, now)

	if e.cfg.PersistSignal != nil {
		err = e.cfg.PersistSignal(ctx, &signal)
		if err != nil {
			e.cfg.Logger.Error().Msgf("persisting %s signal: %v", key, err)
		}
	}
}

// Run manages the lifecycle processes of the engine.
func (e *Engine) Run(ctx context.Context) error {
	_, err := e.cfg.JobScheduler.Every(e.cfg.ScanInterval).Do(func() {
		e.scan(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling scan cycle: %w", err)
	}

	e.cfg.JobScheduler.StartAsync()
	defer e.cfg.JobScheduler.Stop()

	for {
		select {
		case signal := <-e.candidates:
			e.handleCandidate(ctx, signal)
		case <-ctx.Done():
			return nil
		}
	}
}
