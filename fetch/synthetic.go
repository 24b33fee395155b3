package fetch

import (
	"math/rand"
	"time"

	"github.com/dnldd/htfbot/shared"
)

const (
	// DefaultSyntheticLength is the default number of synthetic candles,
	// enough for a multi-hour window at one minute granularity.
	DefaultSyntheticLength = 180

	// volatilityPercent is the per-step price change bound as a fraction of
	// the instrument's base price.
	volatilityPercent = 0.0015
	// wickJitterPercent bounds the independent high and low wick jitter.
	wickJitterPercent = 0.0005

	// Synthetic volume bounds.
	minSyntheticVolume = 10_000
	maxSyntheticVolume = 90_000
)

// GenerateSyntheticSeries produces a plausible fallback series for the
// provided instrument via a bounded random walk ending at the provided time.
// The series is tagged synthetic so downstream consumers can warn that
// signals are not derived from real data.
func GenerateSyntheticSeries(instrument shared.Instrument, interval shared.Interval, length int, now time.Time) *shared.Series {
	if length <= 0 {
		length = DefaultSyntheticLength
	}

	step := intervalDuration(interval)
	volatility := instrument.BasePrice * volatilityPercent
	jitter := instrument.BasePrice * wickJitterPercent

	candles := make([]shared.Candlestick, 0, length)
	close := instrument.BasePrice
	start := now.Add(-time.Duration(length-1) * step)

	for idx := 0; idx < length; idx++ {
		open := close
		close = open + (rand.Float64()*2-1)*volatility

		bodyHigh := open
		bodyLow := close
		if close > open {
			bodyHigh = close
			bodyLow = open
		}

		candle := shared.Candlestick{
			Open:     open,
			Close:    close,
			High:     bodyHigh + rand.Float64()*jitter,
			Low:      bodyLow - rand.Float64()*jitter,
			Volume:   minSyntheticVolume + rand.Int63n(maxSyntheticVolume-minSyntheticVolume),
			Date:     start.Add(time.Duration(idx) * step),
			Market:   instrument.Name,
			Interval: interval,
		}

		candles = append(candles, candle)
	}

	return &shared.Series{
		Market:    instrument.Name,
		Candles:   candles,
		Synthetic: true,
	}
}

// intervalDuration returns the candle duration for the provided interval.
func intervalDuration(interval shared.Interval) time.Duration {
	switch interval {
	case shared.OneMinute:
		return time.Minute
	case shared.FiveMinute:
		return time.Minute * 5
	case shared.FifteenMinute:
		return time.Minute * 15
	case shared.OneHour:
		return time.Hour
	default:
		return time.Minute
	}
}
