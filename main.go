package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dnldd/htfbot/service"
	"github.com/dnldd/htfbot/shared"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitorCfg := service.MonitorConfig{
		Markets:          cfg.Markets,
		DhanClientID:     cfg.DhanClientID,
		DhanAccessToken:  cfg.DhanAccessToken,
		TelegramBotToken: cfg.TelegramBotToken,
		TelegramChatID:   cfg.TelegramChatID,
		DatabaseEndpoint: cfg.DBEndpoint,
		DatabaseUser:     cfg.DBUser,
		DatabasePass:     cfg.DBPass,
		Interval:         shared.FiveMinute,
		Lookback:         time.Duration(cfg.LookbackHours) * time.Hour,
		ScanInterval:     time.Duration(cfg.ScanIntervalSeconds) * time.Second,
		CooldownWindow:   time.Duration(cfg.CooldownMinutes) * time.Minute,
		MarketOpen:       cfg.MarketOpen,
		MarketClose:      cfg.MarketClose,
		MinSeriesLength:  cfg.MinSeriesLength,
		FallbackEnabled:  cfg.Fallback,
		Cancel:           cancel,
	}
	monitor, err := service.NewMonitor(ctx, &monitorCfg)
	if err != nil {
		log.Printf("creating monitor service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	monitor.Run(ctx)
}
