package shared

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestNewSignal(t *testing.T) {
	created := time.Date(2025, 2, 4, 10, 30, 0, 0, time.UTC)
	signal := NewSignal("NIFTY", Buy, 24105.5, "reversal at support", created)

	assert.NotEqual(t, signal.ID, "")
	assert.Equal(t, signal.Market, "NIFTY")
	assert.Equal(t, signal.Type, Buy)
	assert.Equal(t, signal.Price, 24105.5)
	assert.Equal(t, signal.CreatedOn, created)
}

func TestSignalDedupKey(t *testing.T) {
	tests := []struct {
		market string
		sType  SignalType
		want   string
	}{
		{"NIFTY", Buy, "NIFTY_BUY"},
		{"NIFTY", Sell, "NIFTY_SELL"},
		{"BANKNIFTY", Buy, "BANKNIFTY_BUY"},
	}

	for _, test := range tests {
		signal := Signal{Market: test.market, Type: test.sType}
		if signal.DedupKey() != test.want {
			t.Errorf("expected dedup key %q, got %q", test.want, signal.DedupKey())
		}
	}
}

func TestSignalTypeString(t *testing.T) {
	assert.Equal(t, Buy.String(), "BUY")
	assert.Equal(t, Sell.String(), "SELL")
	assert.Equal(t, SignalType(9).String(), "unknown")
}
