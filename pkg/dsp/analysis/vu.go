// Package analysis provides the per-strip level meters of the mixer.
package analysis

import "math"

// VU meter ballistics.
const (
	// RMSTime is the averaging time constant of the RMS reading, in seconds
	RMSTime = 0.3
	// PeakRelease is the time for the peak reading to fall by 20 dB, in seconds
	PeakRelease = 1.5
)

// VU is a dual (peak and RMS) stereo meter fed one frame at a time.
type VU struct {
	peak [2]float32
	ms   [2]float32
}

// Process feeds one stereo frame. sampleTime is 1/sampleRate.
func (v *VU) Process(sampleTime, left, right float32) {
	rmsCoeff := min(1, sampleTime/RMSTime)
	release := float32(math.Pow(0.1, float64(sampleTime/PeakRelease)))
	in := [2]float32{left, right}
	for i, x := range in {
		if math.IsNaN(float64(x)) {
			continue
		}
		a := x
		if a < 0 {
			a = -a
		}
		v.ms[i] += (a*a - v.ms[i]) * rmsCoeff
		v.peak[i] *= release
		if a > v.peak[i] {
			v.peak[i] = a
		}
	}
}

// Peak returns the peak reading of a channel (0 left, 1 right).
func (v *VU) Peak(ch int) float32 {
	return v.peak[ch&1]
}

// RMS returns the RMS reading of a channel.
func (v *VU) RMS(ch int) float32 {
	return float32(math.Sqrt(float64(v.ms[ch&1])))
}

// PeakDB returns the peak reading in dB, or -Inf for silence.
func (v *VU) PeakDB(ch int) float64 {
	p := v.Peak(ch)
	if p <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(float64(p))
}

// Reset clears the meter.
func (v *VU) Reset() {
	*v = VU{}
}
