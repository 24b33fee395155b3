package engine

import (
	"testing"
	"time"

	"github.com/dnldd/htfbot/shared"
	"github.com/peterldowns/testy/assert"
)

func TestSignalLog(t *testing.T) {
	log := NewSignalLog(3)
	assert.Equal(t, log.Size(), 0)

	created := time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		log.Append(shared.NewSignal("NIFTY", shared.Buy, float64(100+i),
			"test", created.Add(time.Duration(i)*time.Minute)))
	}

	// Bounded at three entries, most recent first.
	assert.Equal(t, log.Size(), 3)

	snapshot := log.Snapshot()
	assert.Equal(t, snapshot[0].Price, float64(104))
	assert.Equal(t, snapshot[1].Price, float64(103))
	assert.Equal(t, snapshot[2].Price, float64(102))

	// Snapshots are copies, mutating one leaves the log untouched.
	snapshot[0].Price = 0
	assert.Equal(t, log.Snapshot()[0].Price, float64(104))

	log.Clear()
	assert.Equal(t, log.Size(), 0)
}
