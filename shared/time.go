package shared

import (
	"fmt"
	"time"
)

const (
	// SessionTimeLayout is the format layout for parsing market open and close times in a day.
	SessionTimeLayout = "15:04"
	// DateLayout is the format layout for parsing dates.
	DateLayout = "2006-01-02 15:04:05"
	// KolkataLocation is the locale used for all market times (IST).
	KolkataLocation = "Asia/Kolkata"
)

// KolkataTime returns the current time in kolkata (IST, no daylight savings).
func KolkataTime() (time.Time, *time.Location, error) {
	loc, err := time.LoadLocation(KolkataLocation)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("loading kolkata timezone: %w", err)
	}

	now := time.Now().In(loc)
	return now, loc, nil
}

// Interval represents the market data time period.
type Interval int

const (
	OneMinute Interval = iota
	FiveMinute
	FifteenMinute
	OneHour
)

// String stringifies the provided interval.
func (i *Interval) String() string {
	switch *i {
	case OneMinute:
		return "1"
	case FiveMinute:
		return "5"
	case FifteenMinute:
		return "15"
	case OneHour:
		return "60"
	default:
		return "unknown"
	}
}
