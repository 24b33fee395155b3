package shared

import (
	"context"
	"time"

	"github.com/tidwall/gjson"
)

// MarketFetcher defines the requirements for fetching index market data.
type MarketFetcher interface {
	// FetchIndexIntraday fetches intraday candle data for the provided instrument.
	FetchIndexIntraday(ctx context.Context, market string, interval Interval, start time.Time, end time.Time) (gjson.Result, error)
	// FetchQuote fetches the current quote for the provided instrument.
	FetchQuote(ctx context.Context, market string) (gjson.Result, error)
}

// SignalDetector defines the requirements for detecting trading signals
// from a market data series.
type SignalDetector interface {
	// Detect analyzes the provided series for trading signals.
	Detect(series *Series) ([]Signal, error)
}

// Notifier defines the requirements for dispatching alerts to a
// notification channel.
type Notifier interface {
	// Notify sends the provided signal to the notification channel.
	Notify(ctx context.Context, signal *Signal) error
}

// SignalStorer defines the requirements for persisting dispatched signals.
type SignalStorer interface {
	// PersistSignal stores the provided dispatched signal.
	PersistSignal(ctx context.Context, signal *Signal) error
}
