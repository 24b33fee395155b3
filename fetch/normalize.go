package fetch

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dnldd/htfbot/shared"
	"github.com/tidwall/gjson"
)

// candleCollectionKeys are the accepted top-level keys for a candle collection.
var candleCollectionKeys = []string{"data", "candles", "ohlc"}

// fieldAliases maps abbreviated provider field names to their full names.
var fieldAliases = map[string]string{
	"o": "open",
	"h": "high",
	"l": "low",
	"c": "close",
	"v": "volume",
	"t": "timestamp",
}

// requiredFields are the price fields every candle row must carry.
var requiredFields = []string{"open", "high", "low", "close"}

// timestampFields are the accepted timestamp field names, resolved in order.
var timestampFields = []string{"timestamp", "date", "time"}

// rawRow is a single candle row keyed by canonical field name.
type rawRow map[string]gjson.Result

// parseStrategy represents a payload shape handler. A strategy either fully
// coerces the payload to row form or declines it.
type parseStrategy struct {
	name  string
	parse func(payload gjson.Result) ([]rawRow, bool)
}

// Normalizer maps heterogeneous provider payload shapes into canonical series.
type Normalizer struct {
	loc        *time.Location
	strategies []parseStrategy
}

// NewNormalizer initializes a new normalizer targeting the provided timezone.
func NewNormalizer(loc *time.Location) *Normalizer {
	return &Normalizer{
		loc: loc,
		// Strategies are tried in a fixed order: row records first since they
		// are the documented provider shape, columnar arrays second.
		strategies: []parseStrategy{
			{name: "rows", parse: parseRowRecords},
			{name: "columnar", parse: parseColumnar},
		},
	}
}

// canonicalField lower-cases the provided field name and resolves abbreviations.
func canonicalField(name string) string {
	lower := strings.ToLower(name)
	if full, ok := fieldAliases[lower]; ok {
		return full
	}

	return lower
}

// coerceRow converts the provided object result into a canonical row.
func coerceRow(obj gjson.Result) rawRow {
	row := make(rawRow)
	obj.ForEach(func(key, value gjson.Result) bool {
		row[canonicalField(key.String())] = value
		return true
	})

	return row
}

// parseRowRecords handles payloads carrying an array of row records, either
// bare or under an accepted collection key.
func parseRowRecords(payload gjson.Result) ([]rawRow, bool) {
	collection := gjson.Result{}

	switch {
	case payload.IsArray():
		collection = payload
	default:
		for _, key := range candleCollectionKeys {
			candidate := payload.Get(key)
			if candidate.IsArray() {
				collection = candidate
				break
			}
		}
	}

	if !collection.IsArray() {
		return nil, false
	}

	elems := collection.Array()
	if len(elems) == 0 || !elems[0].IsObject() {
		return nil, false
	}

	rows := make([]rawRow, 0, len(elems))
	for idx := range elems {
		rows = append(rows, coerceRow(elems[idx]))
	}

	return rows, true
}

// parseColumnar handles payloads carrying parallel per-field arrays, either at
// the top level or under an accepted collection key.
func parseColumnar(payload gjson.Result) ([]rawRow, bool) {
	containers := []gjson.Result{payload}
	for _, key := range candleCollectionKeys {
		candidate := payload.Get(key)
		if candidate.IsObject() {
			containers = append(containers, candidate)
		}
	}

	for _, container := range containers {
		columns := make(map[string][]gjson.Result)
		container.ForEach(func(key, value gjson.Result) bool {
			if value.IsArray() {
				columns[canonicalField(key.String())] = value.Array()
			}
			return true
		})

		open, ok := columns["open"]
		if !ok {
			continue
		}

		// All columns must be parallel with the open column.
		equal := true
		for _, column := range columns {
			if len(column) != len(open) {
				equal = false
				break
			}
		}
		if !equal {
			continue
		}

		rows := make([]rawRow, 0, len(open))
		for idx := range open {
			row := make(rawRow)
			for field, column := range columns {
				row[field] = column[idx]
			}
			rows = append(rows, row)
		}

		return rows, true
	}

	return nil, false
}

// resolveTimestamp resolves the provided row's timestamp from an epoch-seconds
// numeric field or a parseable timestamp string, converted to the target timezone.
func (n *Normalizer) resolveTimestamp(row rawRow) (time.Time, error) {
	for _, field := range timestampFields {
		value, ok := row[field]
		if !ok {
			continue
		}

		switch value.Type {
		case gjson.Number:
			return time.Unix(value.Int(), 0).In(n.loc), nil
		case gjson.String:
			ts, err := time.ParseInLocation(shared.DateLayout, value.String(), n.loc)
			if err == nil {
				return ts, nil
			}

			ts, err = time.Parse(time.RFC3339, value.String())
			if err == nil {
				return ts.In(n.loc), nil
			}

			return time.Time{}, shared.NewMarketError(shared.MalformedPayload,
				fmt.Sprintf("unparseable timestamp %q", value.String()), nil)
		}
	}

	return time.Time{}, shared.NewMarketError(shared.MalformedPayload, "no timestamp field", nil)
}

// Normalize coerces the provided payload in any known shape into a canonical
// series for the provided market.
func (n *Normalizer) Normalize(market string, interval shared.Interval, payload gjson.Result) (*shared.Series, error) {
	var rows []rawRow
	var ok bool

	for _, strategy := range n.strategies {
		rows, ok = strategy.parse(payload)
		if ok {
			break
		}
	}

	if !ok || len(rows) == 0 {
		return nil, shared.NewMarketError(shared.MalformedPayload, "no candles", nil)
	}

	candles := make([]shared.Candlestick, 0, len(rows))
	for idx := range rows {
		var candle shared.Candlestick

		ts, err := n.resolveTimestamp(rows[idx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", idx, err)
		}
		candle.Date = ts

		for _, field := range requiredFields {
			if _, ok := rows[idx][field]; !ok {
				return nil, shared.NewMarketError(shared.MalformedPayload,
					fmt.Sprintf("row %d missing required field %q", idx, field), nil)
			}
		}

		candle.Open = rows[idx]["open"].Float()
		candle.High = rows[idx]["high"].Float()
		candle.Low = rows[idx]["low"].Float()
		candle.Close = rows[idx]["close"].Float()

		// Volume is informational, a row without it still forms a valid candle.
		if volume, ok := rows[idx]["volume"]; ok {
			candle.Volume = volume.Int()
		}

		candle.Market = market
		candle.Interval = interval

		candles = append(candles, candle)
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})

	// The provider may return a corrected value for the same bar, the
	// later supplied row wins.
	deduped := make([]shared.Candlestick, 0, len(candles))
	for idx := range candles {
		if idx > 0 && candles[idx].Date.Equal(deduped[len(deduped)-1].Date) {
			deduped[len(deduped)-1] = candles[idx]
			continue
		}

		deduped = append(deduped, candles[idx])
	}

	series := &shared.Series{
		Market:  market,
		Candles: deduped,
	}

	// A single invalid row invalidates the whole batch, partial series are
	// never returned.
	err := series.Validate()
	if err != nil {
		return nil, shared.NewMarketError(shared.MalformedPayload, "invalid candle batch", err)
	}

	return series, nil
}
