package engine

import (
	"sync"

	"github.com/dnldd/htfbot/shared"
)

// SignalLog is a bounded, most-recent-first log of dispatched signals.
// Rendering layers read snapshots of it, they never mutate it.
type SignalLog struct {
	max     int
	mtx     sync.Mutex
	signals []shared.Signal
}

// NewSignalLog initializes a new signal log retaining at most max signals.
func NewSignalLog(max int) *SignalLog {
	return &SignalLog{
		max:     max,
		signals: make([]shared.Signal, 0, max),
	}
}

// Append adds the provided signal to the front of the log, evicting the
// oldest entry once the bound is reached.
func (l *SignalLog) Append(signal shared.Signal) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.signals = append([]shared.Signal{signal}, l.signals...)
	if len(l.signals) > l.max {
		l.signals = l.signals[:l.max]
	}
}

// Snapshot returns a copy of the logged signals, most recent first.
func (l *SignalLog) Snapshot() []shared.Signal {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	snapshot := make([]shared.Signal, len(l.signals))
	copy(snapshot, l.signals)

	return snapshot
}

// Size returns the number of logged signals.
func (l *SignalLog) Size() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return len(l.signals)
}

// Clear resets the log.
func (l *SignalLog) Clear() {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.signals = l.signals[:0]
}
