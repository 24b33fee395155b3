package shared

import (
	"time"

	"github.com/google/uuid"
)

// SignalType represents the direction of a trading signal.
type SignalType int

const (
	Buy SignalType = iota
	Sell
)

// String stringifies the provided signal type.
func (t SignalType) String() string {
	switch t {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "unknown"
	}
}

// LevelKind represents the type of price level a signal fired at.
type LevelKind int

const (
	Support LevelKind = iota
	Resistance
)

// String stringifies the provided level kind.
func (l LevelKind) String() string {
	switch l {
	case Support:
		return "support"
	case Resistance:
		return "resistance"
	default:
		return "unknown"
	}
}

// Signal represents a trading signal detected for a market.
type Signal struct {
	ID              string
	Market          string
	Type            SignalType
	Price           float64
	Reason          string
	LevelKind       LevelKind
	LevelPrice      float64
	DistancePercent float64
	Strength        uint32
	StopLoss        float64
	Target          float64
	Synthetic       bool
	CreatedOn       time.Time
}

// NewSignal initializes a new signal.
func NewSignal(market string, sType SignalType, price float64, reason string,
	created time.Time) Signal {
	return Signal{
		ID:        uuid.New().String(),
		Market:    market,
		Type:      sType,
		Price:     price,
		Reason:    reason,
		CreatedOn: created,
	}
}

// DedupKey groups signals that should not double-alert within a cooldown window.
func (s *Signal) DedupKey() string {
	return s.Market + "_" + s.Type.String()
}
