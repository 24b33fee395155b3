package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dnldd/htfbot/database"
	"github.com/dnldd/htfbot/detect"
	"github.com/dnldd/htfbot/engine"
	"github.com/dnldd/htfbot/fetch"
	"github.com/dnldd/htfbot/notify"
	"github.com/dnldd/htfbot/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// defaultSignalLogSize bounds the in-memory signal log.
	defaultSignalLogSize = 50
)

// MonitorConfig represents the configuration struct for the monitor service.
type MonitorConfig struct {
	// Markets represents the tracked markets.
	Markets []string
	// DhanClientID is the dhan api client id.
	DhanClientID string
	// DhanAccessToken is the dhan api access token.
	DhanAccessToken string
	// TelegramBotToken is the telegram bot token, optional.
	TelegramBotToken string
	// TelegramChatID is the telegram destination chat, optional.
	TelegramChatID string
	// DatabaseEndpoint is the rqlite endpoint for signal persistence, optional.
	DatabaseEndpoint string
	// DatabaseUser is the database user.
	DatabaseUser string
	// DatabasePass is the database user pass.
	DatabasePass string
	// Interval is the candle interval fetched per scan.
	Interval shared.Interval
	// Lookback is the trailing candle window fetched per scan.
	Lookback time.Duration
	// ScanInterval is the delay between scan cycles.
	ScanInterval time.Duration
	// CooldownWindow is the minimum elapsed time between repeat alerts of a
	// dedup key.
	CooldownWindow time.Duration
	// MarketOpen is the market open time (IST).
	MarketOpen string
	// MarketClose is the market close time (IST).
	MarketClose string
	// MinSeriesLength is the minimum series length required for detection.
	MinSeriesLength int
	// FallbackEnabled substitutes synthetic series on fetch failures.
	FallbackEnabled bool
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config has sane inputs.
func (cfg *MonitorConfig) Validate() error {
	var errs error

	if len(cfg.Markets) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no markets provided for monitor service"))
	}
	if cfg.DhanClientID == "" {
		errs = errors.Join(errs, fmt.Errorf("dhan client id cannot be an empty string"))
	}
	if cfg.DhanAccessToken == "" {
		errs = errors.Join(errs, fmt.Errorf("dhan access token cannot be an empty string"))
	}
	if cfg.ScanInterval <= 0 {
		errs = errors.Join(errs, fmt.Errorf("scan interval must be positive"))
	}
	if cfg.CooldownWindow <= 0 {
		errs = errors.Join(errs, fmt.Errorf("cooldown window must be positive"))
	}
	if cfg.Lookback <= 0 {
		errs = errors.Join(errs, fmt.Errorf("lookback window must be positive"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	for idx := range cfg.Markets {
		_, err := shared.FindInstrument(cfg.Markets[idx])
		if err != nil {
			errs = errors.Join(errs, err)
		}
	}

	return errs
}

// Monitor represents the market signal monitoring service.
type Monitor struct {
	cfg       *MonitorConfig
	engine    *engine.Engine
	cooldown  *engine.CooldownTracker
	signalLog *engine.SignalLog
	logger    *zerolog.Logger
	wg        sync.WaitGroup
}

// NewMonitor initializes a new monitor service.
func NewMonitor(ctx context.Context, cfg *MonitorConfig) (*Monitor, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	logger := log.With().Str("service", "monitor").Logger()

	_, loc, err := shared.KolkataTime()
	if err != nil {
		return nil, fmt.Errorf("fetching kolkata time: %v", err)
	}

	if cfg.MarketOpen == "" {
		cfg.MarketOpen = shared.MarketOpen
	}
	if cfg.MarketClose == "" {
		cfg.MarketClose = shared.MarketClose
	}

	hours, err := shared.NewMarketHours(cfg.MarketOpen, cfg.MarketClose)
	if err != nil {
		return nil, fmt.Errorf("creating market hours: %v", err)
	}

	dhan, err := fetch.NewDhanClient(&fetch.DhanConfig{
		ClientID:    cfg.DhanClientID,
		AccessToken: cfg.DhanAccessToken,
		BaseURL:     fetch.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating dhan client: %v", err)
	}

	var notifier shared.Notifier
	switch {
	case cfg.TelegramBotToken != "" && cfg.TelegramChatID != "":
		notifier, err = notify.NewTelegramClient(&notify.TelegramConfig{
			BotToken: cfg.TelegramBotToken,
			ChatID:   cfg.TelegramChatID,
			BaseURL:  notify.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("creating telegram client: %v", err)
		}
	default:
		logger.Warn().Msg("no telegram credentials configured, alerts will only be logged")
		notifyLogger := logger.With().Str("component", "notifier").Logger()
		notifier = notify.NewLogNotifier(&notifyLogger)
	}

	var persistSignal func(ctx context.Context, signal *shared.Signal) error
	if cfg.DatabaseEndpoint != "" {
		dbLogger := logger.With().Str("component", "database").Logger()
		db, err := database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DatabaseEndpoint,
			User:     cfg.DatabaseUser,
			Pass:     cfg.DatabasePass,
			Logger:   &dbLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating database: %v", err)
		}

		persistSignal = db.PersistSignal
	}

	cooldown := engine.NewCooldownTracker(cfg.CooldownWindow)
	signalLog := engine.NewSignalLog(defaultSignalLogSize)
	detector := detect.NewLevelDetector(nil)

	engineLogger := logger.With().Str("component", "engine").Logger()
	eng, err := engine.NewEngine(&engine.EngineConfig{
		Markets:         cfg.Markets,
		Interval:        cfg.Interval,
		Lookback:        cfg.Lookback,
		ScanInterval:    cfg.ScanInterval,
		MinSeriesLength: cfg.MinSeriesLength,
		FallbackEnabled: cfg.FallbackEnabled,
		MarketHours:     hours,
		ExchangeClient:  dhan,
		Normalizer:      fetch.NewNormalizer(loc),
		Detector:        detector,
		Notify:          notifier.Notify,
		PersistSignal:   persistSignal,
		Cooldown:        cooldown,
		SignalLog:       signalLog,
		JobScheduler:    gocron.NewScheduler(loc),
		Logger:          &engineLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating engine: %v", err)
	}

	service := &Monitor{
		cfg:       cfg,
		engine:    eng,
		cooldown:  cooldown,
		signalLog: signalLog,
		logger:    &logger,
	}

	return service, nil
}

// SignalSnapshot returns a copy of the recent signal log for rendering.
func (m *Monitor) SignalSnapshot() []shared.Signal {
	return m.signalLog.Snapshot()
}

// ClearSignals resets the signal log and the cooldown tracker.
func (m *Monitor) ClearSignals() {
	m.signalLog.Clear()
	m.cooldown.Clear()
}

// Run handles the lifecycle processes of the monitor service.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()

		err := m.engine.Run(ctx)
		if err != nil {
			m.logger.Error().Msgf("running engine: %v", err)
			m.cfg.Cancel()
		}
	}()

	m.wg.Wait()
}
