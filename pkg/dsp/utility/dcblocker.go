package utility

import "math"

// DefaultDCCutoff is the cutoff used by the master bus DC blocker.
const DefaultDCCutoff = 10.0

// DCBlocker removes DC offset from a stereo signal, one sample at a time.
// It is a first-order high-pass: y[n] = x[n] - x[n-1] + R * y[n-1].
type DCBlocker struct {
	x1, y1      [2]float32
	coefficient float32
}

// NewDCBlocker creates a stereo DC blocker for the given cutoff and sample rate.
func NewDCBlocker(cutoffHz, sampleRate float64) *DCBlocker {
	dc := &DCBlocker{}
	dc.SetCutoff(cutoffHz, sampleRate)
	return dc
}

// SetCutoff updates the cutoff frequency. State is kept.
func (dc *DCBlocker) SetCutoff(cutoffHz, sampleRate float64) {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	r := 1.0 - (2.0 * math.Pi * cutoffHz / sampleRate)

	// Clamp R to ensure stability
	if r < 0.9 {
		r = 0.9
	}
	if r > 0.9999 {
		r = 0.9999
	}
	dc.coefficient = float32(r)
}

// Process removes DC from one stereo frame.
func (dc *DCBlocker) Process(left, right float32) (float32, float32) {
	outL := left - dc.x1[0] + dc.coefficient*dc.y1[0]
	outR := right - dc.x1[1] + dc.coefficient*dc.y1[1]
	dc.x1[0], dc.y1[0] = left, outL
	dc.x1[1], dc.y1[1] = right, outR
	return outL, outR
}

// Reset clears the DC blocker state.
func (dc *DCBlocker) Reset() {
	dc.x1 = [2]float32{}
	dc.y1 = [2]float32{}
}
