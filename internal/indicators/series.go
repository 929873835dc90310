// Package indicators computes technical indicators over daily price series.
// Every function is pure and returns a Series aligned index-for-index with
// its input; positions inside an indicator's warm-up window are undefined.
package indicators

import (
	"encoding/json"
	"math"
)

// Value is one indicator reading. Valid is false inside the warm-up window.
type Value struct {
	Float float64
	Valid bool
}

func defined(f float64) Value { return Value{Float: f, Valid: true} }

// MarshalJSON writes undefined values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid || math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

// Ptr returns nil for an undefined value.
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float
	return &f
}

// Series is an indicator output aligned with the source bars.
type Series []Value

func undefinedSeries(n int) Series {
	return make(Series, n)
}

// alignRight places library output onto an n-length series. The
// library skips its idle period, so the last value belongs to index n-1.
func alignRight(n int, values []float64) Series {
	out := undefinedSeries(n)
	if len(values) > n {
		values = values[len(values)-n:]
	}
	offset := n - len(values)
	for i, v := range values {
		out[offset+i] = defined(v)
	}
	return out
}

// At returns the value at i, or an undefined value when i is out of range.
func (s Series) At(i int) Value {
	if i < 0 || i >= len(s) {
		return Value{}
	}
	return s[i]
}

// Last returns the most recent value.
func (s Series) Last() Value {
	return s.At(len(s) - 1)
}

// FirstDefined returns the index of the first defined value, or -1.
func (s Series) FirstDefined() int {
	for i, v := range s {
		if v.Valid {
			return i
		}
	}
	return -1
}

// Ptrs converts the series into nullable floats for transport.
func (s Series) Ptrs() []*float64 {
	out := make([]*float64, len(s))
	for i, v := range s {
		out[i] = v.Ptr()
	}
	return out
}

// Tail returns the last n values, or the whole series when shorter.
func (s Series) Tail(n int) Series {
	if n < 0 || n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// DefinedIndex maps the defined values of a derived series onto a dense
// slice. Positions[k] is the source index of Values[k].
type DefinedIndex struct {
	Positions []int
	Values    []float64
	Len       int
}

// Compact collects the defined values of s along with their source indices.
func Compact(s Series) DefinedIndex {
	idx := DefinedIndex{Len: len(s)}
	for i, v := range s {
		if v.Valid {
			idx.Positions = append(idx.Positions, i)
			idx.Values = append(idx.Values, v.Float)
		}
	}
	return idx
}

// Scatter places a series computed over idx.Values back onto the source
// positions. derived must have len(idx.Values) entries.
func (idx DefinedIndex) Scatter(derived Series) Series {
	out := undefinedSeries(idx.Len)
	for k, v := range derived {
		if k >= len(idx.Positions) {
			break
		}
		out[idx.Positions[k]] = v
	}
	return out
}
