package shared

import (
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestFindInstrument(t *testing.T) {
	instrument, err := FindInstrument("NIFTY")
	assert.NoError(t, err)
	assert.Equal(t, instrument.SecurityID, "13")
	assert.Equal(t, instrument.ExchangeSegment, "IDX_I")

	_, err = FindInstrument("DOGE")
	assert.Error(t, err)
	assert.True(t, IsErrKind(err, UnknownInstrument))
}

func TestKnownInstruments(t *testing.T) {
	names := KnownInstruments()
	assert.Equal(t, len(names), 3)
}
