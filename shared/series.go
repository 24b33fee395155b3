package shared

import (
	"fmt"
)

// Series represents an ordered sequence of candlesticks for a market, strictly
// increasing by timestamp. A series is not mutated after normalization completes.
type Series struct {
	Market    string
	Candles   []Candlestick
	Synthetic bool
}

// Validate asserts the series' candles are strictly ordered, free of duplicate
// timestamps and individually well formed.
func (s *Series) Validate() error {
	for idx := range s.Candles {
		err := s.Candles[idx].Validate()
		if err != nil {
			return fmt.Errorf("candlestick %d: %w", idx, err)
		}

		if idx == 0 {
			continue
		}

		prev := s.Candles[idx-1].Date
		curr := s.Candles[idx].Date
		switch {
		case curr.Equal(prev):
			return fmt.Errorf("duplicate candlestick timestamp %s", curr.Format(DateLayout))
		case curr.Before(prev):
			return fmt.Errorf("candlestick timestamps not increasing: %s before %s",
				curr.Format(DateLayout), prev.Format(DateLayout))
		}
	}

	return nil
}

// Last returns the most recent candlestick of the series.
func (s *Series) Last() (*Candlestick, error) {
	if len(s.Candles) == 0 {
		return nil, fmt.Errorf("series for %s has no candlesticks", s.Market)
	}

	return &s.Candles[len(s.Candles)-1], nil
}
