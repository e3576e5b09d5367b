// Package filter provides the cutoff filters used by mixer strips.
//
// Cutoff frequencies are normalized: Hz divided by the sample rate.
package filter

import "math"

// Kind selects the response of a Biquad.
type Kind int

const (
	// LowpassKind passes frequencies below the cutoff
	LowpassKind Kind = iota
	// HighpassKind passes frequencies above the cutoff
	HighpassKind
)

// ButterworthQ is the Q of a maximally flat second-order section.
const ButterworthQ = 0.707

// maxNormalizedCutoff keeps the bilinear prewarp away from Nyquist.
const maxNormalizedCutoff = 0.49

// Biquad implements a second-order IIR filter (biquad), one sample at a time.
// Direct Form I.
type Biquad struct {
	kind Kind
	q    float64

	// Coefficients, normalized by a0
	b0, b1, b2 float32
	a1, a2     float32

	// State
	x1, x2 float32
	y1, y2 float32
}

// NewBiquad creates a biquad of the given kind at a normalized cutoff.
func NewBiquad(kind Kind, fc, q float64) *Biquad {
	b := &Biquad{}
	b.SetParameters(kind, fc, q)
	return b
}

// SetParameters configures the response. fc is normalized (Hz / sample rate).
func (b *Biquad) SetParameters(kind Kind, fc, q float64) {
	b.kind = kind
	b.q = q
	b.SetCutoffFrequency(fc)
}

// SetCutoffFrequency moves the cutoff and keeps kind and Q. State is kept so
// that a knob turn does not click.
func (b *Biquad) SetCutoffFrequency(fc float64) {
	if fc <= 0 {
		fc = 1e-6
	}
	if fc > maxNormalizedCutoff {
		fc = maxNormalizedCutoff
	}
	q := b.q
	if q <= 0 {
		q = ButterworthQ
	}

	k := math.Tan(math.Pi * fc)
	norm := 1.0 / (1.0 + k/q + k*k)
	switch b.kind {
	case HighpassKind:
		b.b0 = float32(norm)
		b.b1 = float32(-2.0 * norm)
		b.b2 = float32(norm)
	default:
		b.b0 = float32(k * k * norm)
		b.b1 = float32(2.0 * k * k * norm)
		b.b2 = float32(k * k * norm)
	}
	b.a1 = float32(2.0 * (k*k - 1.0) * norm)
	b.a2 = float32((1.0 - k/q + k*k) * norm)
}

// Process filters one sample.
func (b *Biquad) Process(x float32) float32 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2 = b.x1
	b.x1 = x
	b.y2 = b.y1
	b.y1 = y
	return y
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// FirstOrderHighpass is a one-pole, one-zero high-pass (6 dB/oct).
type FirstOrderHighpass struct {
	b0, b1, a1 float32
	x1, y1     float32
}

// SetCutoffFrequency sets the normalized cutoff.
func (f *FirstOrderHighpass) SetCutoffFrequency(fc float64) {
	if fc <= 0 {
		fc = 1e-6
	}
	if fc > maxNormalizedCutoff {
		fc = maxNormalizedCutoff
	}
	k := math.Tan(math.Pi * fc)
	f.b0 = float32(1.0 / (1.0 + k))
	f.b1 = -f.b0
	f.a1 = float32((k - 1.0) / (k + 1.0))
}

// Process filters one sample.
func (f *FirstOrderHighpass) Process(x float32) float32 {
	y := f.b0*x + f.b1*f.x1 - f.a1*f.y1
	f.x1 = x
	f.y1 = y
	return y
}

// Reset clears the filter state
func (f *FirstOrderHighpass) Reset() {
	f.x1, f.y1 = 0, 0
}
