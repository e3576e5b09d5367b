// Package param provides the mixer parameter table and the anti-pop slewers.
package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Parameter is one host-visible control. Values are kept in plain units
// (fader position, pan 0..1, button 0/1) and clamped to [Min, Max].
type Parameter struct {
	ID           uint32
	Name         string
	Min          float64
	Max          float64
	DefaultValue float64
	StepCount    int32

	// Atomic value for lock-free access in audio thread
	value atomic.Uint64

	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Value returns the current plain value.
func (p *Parameter) Value() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue stores a plain value, clamped to the parameter range.
// NaN is ignored.
func (p *Parameter) SetValue(v float64) {
	if math.IsNaN(v) {
		return
	}
	if v < p.Min {
		v = p.Min
	} else if v > p.Max {
		v = p.Max
	}
	if p.StepCount > 0 {
		v = math.Round(v)
	}
	p.value.Store(math.Float64bits(v))
}

// Reset restores the default value.
func (p *Parameter) Reset() {
	p.SetValue(p.DefaultValue)
}

// Normalized returns the value mapped to 0..1.
func (p *Parameter) Normalized() float64 {
	return p.Normalize(p.Value())
}

// SetNormalized stores a value given in 0..1.
func (p *Parameter) SetNormalized(n float64) {
	p.SetValue(p.Denormalize(n))
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	normalized := (plain - p.Min) / (p.Max - p.Min)
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.Min + normalized*(p.Max-p.Min)
}

// SetFormatter sets custom value formatting
func (p *Parameter) SetFormatter(format func(float64) string, parse func(string) (float64, error)) {
	p.formatFunc = format
	p.parseFunc = parse
}

// FormatValue returns the formatted current value.
func (p *Parameter) FormatValue() string {
	plain := p.Value()
	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}
	if p.StepCount > 0 {
		return fmt.Sprintf("%.0f", plain)
	}
	return fmt.Sprintf("%.3f", plain)
}

// ParseValue parses a string into a plain value.
func (p *Parameter) ParseValue(str string) (float64, error) {
	if p.parseFunc != nil {
		return p.parseFunc(str)
	}
	return strconv.ParseFloat(str, 64)
}

// Bool reports whether a button parameter is on.
func (p *Parameter) Bool() bool {
	return p.Value() >= 0.5
}
