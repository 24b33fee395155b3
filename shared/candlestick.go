package shared

import (
	"fmt"
	"math"
	"time"
)

// Kind represents type of candlestick.
type Kind int

const (
	Marubozu Kind = iota
	Pinbar
	Doji
	Unknown
)

// Sentiment represents the candlestick sentiment.
type Sentiment int

const (
	Neutral Sentiment = iota
	Bullish
	Bearish
)

// Candlestick represents a unit candlestick for a market.
type Candlestick struct {
	Open   float64
	Low    float64
	High   float64
	Close  float64
	Volume int64
	Date   time.Time

	// Metadata fields.
	Market   string
	Interval Interval
}

// Validate asserts the candlestick has sane price and volume bounds.
func (c *Candlestick) Validate() error {
	if c.Volume < 0 {
		return fmt.Errorf("candlestick volume cannot be negative, got %d", c.Volume)
	}

	bodyLow := math.Min(c.Open, c.Close)
	bodyHigh := math.Max(c.Open, c.Close)
	if c.Low > bodyLow || bodyHigh > c.High {
		return fmt.Errorf("candlestick price bounds violated: low %.2f, open %.2f, "+
			"close %.2f, high %.2f", c.Low, c.Open, c.Close, c.High)
	}

	return nil
}

// FetchSentiment returns the provided candlestick's sentiment.
func (c *Candlestick) FetchSentiment() Sentiment {
	sentiment := c.Close - c.Open
	switch {
	case sentiment < 0:
		return Bearish
	case sentiment > 0:
		return Bullish
	default:
		return Neutral
	}
}

// FetchKind returns the candlestick type.
func (c *Candlestick) FetchKind() Kind {
	candleRange := c.High - c.Low
	if candleRange == 0 {
		return Unknown
	}

	candleBody := math.Abs(c.Close - c.Open)
	upperWickRange := c.High - math.Max(c.Open, c.Close)
	lowerWickRange := math.Min(c.Open, c.Close) - c.Low

	bodyPercent := candleBody / candleRange
	upperWickPercent := upperWickRange / candleRange
	lowerWickPercent := lowerWickRange / candleRange

	switch {
	case bodyPercent <= 0.3 && (upperWickPercent >= 0.6 || lowerWickPercent >= 0.6):
		// If the candle body is not more than 30 percent of the candle and has one of its wicks
		// being at least 60 percent of the candle, it's a pin bar.
		return Pinbar
	case bodyPercent <= 0.3 && upperWickPercent >= 0.3 && lowerWickPercent >= 0.3:
		// If the candle body is not more than 30 percent of the candle and has almost
		// identical wicks on both sides of it, it's a doji candle.
		return Doji
	case bodyPercent >= 0.7:
		// If the candle body accounts for over 70 percent of the candle, It is a marubozu candle.
		return Marubozu
	default:
		return Unknown
	}
}
