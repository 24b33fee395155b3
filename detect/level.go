// Package detect provides a reference higher-timeframe level detector for the
// signal engine. Any shared.SignalDetector implementation can stand in for it.
package detect

import (
	"fmt"
	"math"

	"github.com/dnldd/htfbot/shared"
)

const (
	// defaultLevelLookback is the number of trailing candles levels are
	// derived from, the most recent candle excluded.
	defaultLevelLookback = 120
	// defaultProximityPercent is the maximum distance from a level, as a
	// percentage of price, for a reaction to be actionable.
	defaultProximityPercent = 0.15
	// defaultMinStrength is the minimum strength score required to fire.
	defaultMinStrength = 6
	// maxStrength caps the strength score.
	maxStrength = 10
	// stopBufferPercent pads the stop loss beyond the reacted level.
	stopBufferPercent = 0.1
	// rewardRatio scales the target from the stop distance.
	rewardRatio = 2
)

// LevelDetectorConfig represents the configuration for the level detector.
type LevelDetectorConfig struct {
	// LevelLookback is the number of trailing candles levels are derived from.
	LevelLookback int
	// ProximityPercent is the maximum actionable distance from a level.
	ProximityPercent float64
	// MinStrength is the minimum strength score required to fire.
	MinStrength uint32
}

// LevelDetector detects reactions at higher-timeframe support and resistance
// levels. It is pure with respect to external state.
type LevelDetector struct {
	cfg *LevelDetectorConfig
}

// Ensure the level detector implements the SignalDetector interface.
var _ shared.SignalDetector = (*LevelDetector)(nil)

// NewLevelDetector initializes a new level detector.
func NewLevelDetector(cfg *LevelDetectorConfig) *LevelDetector {
	if cfg == nil {
		cfg = &LevelDetectorConfig{}
	}
	if cfg.LevelLookback <= 0 {
		cfg.LevelLookback = defaultLevelLookback
	}
	if cfg.ProximityPercent <= 0 {
		cfg.ProximityPercent = defaultProximityPercent
	}
	if cfg.MinStrength == 0 {
		cfg.MinStrength = defaultMinStrength
	}

	return &LevelDetector{cfg: cfg}
}

// levels derives the higher-timeframe support and resistance from the
// provided candles.
func levels(candles []shared.Candlestick) (float64, float64) {
	support := math.MaxFloat64
	resistance := -math.MaxFloat64

	for idx := range candles {
		support = math.Min(support, candles[idx].Low)
		resistance = math.Max(resistance, candles[idx].High)
	}

	return support, resistance
}

// averageVolume returns the mean volume of the provided candles.
func averageVolume(candles []shared.Candlestick) float64 {
	if len(candles) == 0 {
		return 0
	}

	var total int64
	for idx := range candles {
		total += candles[idx].Volume
	}

	return float64(total) / float64(len(candles))
}

// strength scores the provided reaction candle. Strong candle structure,
// above average volume and tight level proximity all add confluence.
func (d *LevelDetector) strength(candle *shared.Candlestick, avgVolume float64, distancePercent float64) uint32 {
	var score uint32 = 5

	switch candle.FetchKind() {
	case shared.Marubozu, shared.Pinbar:
		score += 2
	}

	if avgVolume > 0 && float64(candle.Volume) > avgVolume {
		score++
	}

	if distancePercent < d.cfg.ProximityPercent/2 {
		score += 2
	}

	if score > maxStrength {
		score = maxStrength
	}

	return score
}

// Detect analyzes the provided series for reactions at higher-timeframe levels.
func (d *LevelDetector) Detect(series *shared.Series) ([]shared.Signal, error) {
	if len(series.Candles) < 2 {
		return nil, fmt.Errorf("series for %s too short for level detection", series.Market)
	}

	current := series.Candles[len(series.Candles)-1]
	history := series.Candles[:len(series.Candles)-1]
	if len(history) > d.cfg.LevelLookback {
		history = history[len(history)-d.cfg.LevelLookback:]
	}

	support, resistance := levels(history)
	avgVolume := averageVolume(history)
	sentiment := current.FetchSentiment()

	signals := make([]shared.Signal, 0, 2)

	// A bullish reaction near support is a buy candidate.
	supportDistance := math.Abs(current.Close-support) / support * 100
	if sentiment == shared.Bullish && supportDistance <= d.cfg.ProximityPercent {
		strength := d.strength(&current, avgVolume, supportDistance)
		if strength >= d.cfg.MinStrength {
			signal := shared.NewSignal(series.Market, shared.Buy, current.Close,
				fmt.Sprintf("bullish reaction at support %.2f", support), current.Date)
			signal.LevelKind = shared.Support
			signal.LevelPrice = support
			signal.DistancePercent = supportDistance
			signal.Strength = strength
			signal.StopLoss = support * (1 - stopBufferPercent/100)
			signal.Target = current.Close + (current.Close-signal.StopLoss)*rewardRatio

			signals = append(signals, signal)
		}
	}

	// A bearish reaction near resistance is a sell candidate.
	resistanceDistance := math.Abs(resistance-current.Close) / resistance * 100
	if sentiment == shared.Bearish && resistanceDistance <= d.cfg.ProximityPercent {
		strength := d.strength(&current, avgVolume, resistanceDistance)
		if strength >= d.cfg.MinStrength {
			signal := shared.NewSignal(series.Market, shared.Sell, current.Close,
				fmt.Sprintf("bearish reaction at resistance %.2f", resistance), current.Date)
			signal.LevelKind = shared.Resistance
			signal.LevelPrice = resistance
			signal.DistancePercent = resistanceDistance
			signal.Strength = strength
			signal.StopLoss = resistance * (1 + stopBufferPercent/100)
			signal.Target = current.Close - (signal.StopLoss-current.Close)*rewardRatio

			signals = append(signals, signal)
		}
	}

	return signals, nil
}
