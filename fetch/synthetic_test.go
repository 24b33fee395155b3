package fetch

import (
	"testing"
	"time"

	"github.com/dnldd/htfbot/shared"
	"github.com/peterldowns/testy/assert"
)

func TestGenerateSyntheticSeries(t *testing.T) {
	instrument, err := shared.FindInstrument("NIFTY")
	assert.NoError(t, err)

	now := time.Date(2025, 2, 4, 12, 0, 0, 0, time.UTC)
	series := GenerateSyntheticSeries(instrument, shared.OneMinute, 120, now)

	assert.True(t, series.Synthetic)
	assert.Equal(t, series.Market, "NIFTY")
	assert.Equal(t, len(series.Candles), 120)

	// Synthetic data must satisfy the same invariants as provider data.
	assert.NoError(t, series.Validate())

	last, err := series.Last()
	assert.NoError(t, err)
	assert.True(t, last.Date.Equal(now))
}

func TestGenerateSyntheticSeriesDefaultLength(t *testing.T) {
	instrument, err := shared.FindInstrument("SENSEX")
	assert.NoError(t, err)

	series := GenerateSyntheticSeries(instrument, shared.OneMinute, 0, time.Now())
	assert.Equal(t, len(series.Candles), DefaultSyntheticLength)
	assert.NoError(t, series.Validate())
}
