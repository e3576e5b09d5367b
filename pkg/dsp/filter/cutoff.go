package filter

// Cutoff is the contract a mixer strip needs from a filter: move the cutoff,
// filter a sample, clear state. fc is normalized (Hz / sample rate).
type Cutoff interface {
	SetCutoffFrequency(fc float64)
	Process(x float32) float32
	Reset()
}

// HighpassQ is the Q of the biquad stage of the strip high-pass. Together with
// the first-order stage it gives an 18 dB/oct slope with a slight bump.
const HighpassQ = 1.0

// Highpass is a first-order stage followed by a biquad high-pass.
type Highpass struct {
	pre FirstOrderHighpass
	bq  Biquad
}

// NewHighpass returns an 18 dB/oct high-pass at normalized cutoff fc.
func NewHighpass(fc float64) *Highpass {
	h := &Highpass{}
	h.bq.SetParameters(HighpassKind, fc, HighpassQ)
	h.pre.SetCutoffFrequency(fc)
	return h
}

// SetCutoffFrequency moves both stages.
func (h *Highpass) SetCutoffFrequency(fc float64) {
	h.pre.SetCutoffFrequency(fc)
	h.bq.SetCutoffFrequency(fc)
}

// Process filters one sample.
func (h *Highpass) Process(x float32) float32 {
	return h.bq.Process(h.pre.Process(x))
}

// Reset clears both stages.
func (h *Highpass) Reset() {
	h.pre.Reset()
	h.bq.Reset()
}

// NewLowpass returns a Butterworth 12 dB/oct low-pass at normalized cutoff fc.
func NewLowpass(fc float64) *Biquad {
	return NewBiquad(LowpassKind, fc, ButterworthQ)
}

var (
	_ Cutoff = (*Highpass)(nil)
	_ Cutoff = (*Biquad)(nil)
)
