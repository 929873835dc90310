package models

import (
	"math"
	"time"
)

// Bar is one daily OHLCV observation.
type Bar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Time returns the bar timestamp in UTC.
func (b Bar) Time() time.Time {
	return time.Unix(b.Timestamp, 0).UTC()
}

// RawSeries holds parallel arrays as delivered by a price source, before
// any validation.
type RawSeries struct {
	Timestamps []int64
	Open       []float64
	High       []float64
	Low        []float64
	Close      []float64
	Volume     []float64
}

// PriceSeries is an aligned, immutable sequence of bars. It can only be
// built through NewPriceSeries; accessors hand out copies.
type PriceSeries struct {
	symbol     string
	timestamps []int64
	open       []float64
	high       []float64
	low        []float64
	close      []float64
	volume     []float64
}

// NewPriceSeries aligns raw arrays into a PriceSeries. It fails with a
// *MalformedSeriesError naming the offending array when lengths differ,
// timestamps are not strictly increasing or a value is not a finite number.
func NewPriceSeries(symbol string, raw RawSeries) (*PriceSeries, error) {
	n := len(raw.Close)
	lengths := []struct {
		field string
		n     int
	}{
		{"timestamp", len(raw.Timestamps)},
		{"open", len(raw.Open)},
		{"high", len(raw.High)},
		{"low", len(raw.Low)},
		{"volume", len(raw.Volume)},
	}
	for _, l := range lengths {
		if l.n != n {
			return nil, &MalformedSeriesError{Field: l.field, Reason: "length does not match close"}
		}
	}

	for i := 1; i < n; i++ {
		if raw.Timestamps[i] <= raw.Timestamps[i-1] {
			return nil, &MalformedSeriesError{Field: "timestamp", Reason: "timestamps must be strictly increasing"}
		}
	}

	arrays := []struct {
		field  string
		values []float64
	}{
		{"open", raw.Open},
		{"high", raw.High},
		{"low", raw.Low},
		{"close", raw.Close},
		{"volume", raw.Volume},
	}
	for _, a := range arrays {
		for _, v := range a.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &MalformedSeriesError{Field: a.field, Reason: "non-finite value"}
			}
		}
	}

	return &PriceSeries{
		symbol:     symbol,
		timestamps: append([]int64(nil), raw.Timestamps...),
		open:       append([]float64(nil), raw.Open...),
		high:       append([]float64(nil), raw.High...),
		low:        append([]float64(nil), raw.Low...),
		close:      append([]float64(nil), raw.Close...),
		volume:     append([]float64(nil), raw.Volume...),
	}, nil
}

func (s *PriceSeries) Symbol() string { return s.symbol }

func (s *PriceSeries) Len() int { return len(s.close) }

// Bar returns the i-th bar. It panics when i is out of range, like a slice.
func (s *PriceSeries) Bar(i int) Bar {
	return Bar{
		Timestamp: s.timestamps[i],
		Open:      s.open[i],
		High:      s.high[i],
		Low:       s.low[i],
		Close:     s.close[i],
		Volume:    s.volume[i],
	}
}

// Last returns the most recent bar.
func (s *PriceSeries) Last() (Bar, bool) {
	if s.Len() == 0 {
		return Bar{}, false
	}
	return s.Bar(s.Len() - 1), true
}

func (s *PriceSeries) Timestamps() []int64 { return append([]int64(nil), s.timestamps...) }
func (s *PriceSeries) Opens() []float64    { return append([]float64(nil), s.open...) }
func (s *PriceSeries) Highs() []float64    { return append([]float64(nil), s.high...) }
func (s *PriceSeries) Lows() []float64     { return append([]float64(nil), s.low...) }
func (s *PriceSeries) Closes() []float64   { return append([]float64(nil), s.close...) }
func (s *PriceSeries) Volumes() []float64  { return append([]float64(nil), s.volume...) }

// Time returns the timestamp of bar i in UTC.
func (s *PriceSeries) Time(i int) time.Time {
	return time.Unix(s.timestamps[i], 0).UTC()
}

// DateKey formats bar i as YYYY-MM-DD.
func (s *PriceSeries) DateKey(i int) string {
	return s.Time(i).Format(DateLayout)
}

// DateLayout is the calendar-day format shared by equity curves and quota keys.
const DateLayout = "2006-01-02"
