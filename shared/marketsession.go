package shared

import (
	"fmt"
	"time"
)

const (
	// Market hours (NSE/BSE cash session) in kolkata time (IST).
	MarketOpen  = "09:15"
	MarketClose = "15:30"
)

// MarketHours represents the daily active trading window for the upstream market.
type MarketHours struct {
	Open  string
	Close string
}

// NewMarketHours initializes market hours from the provided open and close times.
func NewMarketHours(open string, close string) (*MarketHours, error) {
	_, err := time.Parse(SessionTimeLayout, open)
	if err != nil {
		return nil, fmt.Errorf("parsing market open: %w", err)
	}

	_, err = time.Parse(SessionTimeLayout, close)
	if err != nil {
		return nil, fmt.Errorf("parsing market close: %w", err)
	}

	return &MarketHours{Open: open, Close: close}, nil
}

// IsMarketOpen checks whether the provided time falls within the market's
// active hours on the same day.
func (m *MarketHours) IsMarketOpen(now time.Time) (bool, error) {
	open, err := time.Parse(SessionTimeLayout, m.Open)
	if err != nil {
		return false, fmt.Errorf("parsing market open: %w", err)
	}

	close, err := time.Parse(SessionTimeLayout, m.Close)
	if err != nil {
		return false, fmt.Errorf("parsing market close: %w", err)
	}

	loc := now.Location()
	mOpen := time.Date(now.Year(), now.Month(), now.Day(), open.Hour(), open.Minute(), 0, 0, loc)
	mClose := time.Date(now.Year(), now.Month(), now.Day(), close.Hour(), close.Minute(), 0, 0, loc)

	isOpen := (now.Equal(mOpen) || now.After(mOpen)) && (now.Before(mClose) || now.Equal(mClose))
	return isOpen, nil
}
