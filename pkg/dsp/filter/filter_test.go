package filter

import (
	"math"
	"testing"
)

// steadyPeak runs a sine through f and returns the output peak after the
// filter has settled.
func steadyPeak(f Cutoff, freq, sampleRate float64) float64 {
	peak := 0.0
	n := int(sampleRate / 2)
	for i := 0; i < n; i++ {
		x := float32(math.Sin(2 * math.Pi * freq * float64(i) / sampleRate))
		y := f.Process(x)
		if i > n/2 && math.Abs(float64(y)) > peak {
			peak = math.Abs(float64(y))
		}
	}
	return peak
}

func TestHighpass(t *testing.T) {
	const sr = 44100.0
	tests := []struct {
		name   string
		freq   float64
		minOut float64
		maxOut float64
	}{
		{"Passband", 2000, 0.95, 1.05},
		{"Stopband", 25, 0.0, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHighpass(200 / sr)
			peak := steadyPeak(h, tt.freq, sr)
			if peak < tt.minOut || peak > tt.maxOut {
				t.Errorf("peak at %.0fHz = %f, want [%f, %f]", tt.freq, peak, tt.minOut, tt.maxOut)
			}
		})
	}
}

func TestLowpass(t *testing.T) {
	const sr = 44100.0
	lp := NewLowpass(1000 / sr)
	if peak := steadyPeak(lp, 100, sr); peak < 0.95 || peak > 1.05 {
		t.Errorf("passband peak = %f", peak)
	}

	lp.Reset()
	if peak := steadyPeak(lp, 10000, sr); peak > 0.05 {
		t.Errorf("stopband peak = %f", peak)
	}
}

func TestLowpassCutoffResponse(t *testing.T) {
	const sr = 48000.0
	lp := NewLowpass(1000 / sr)
	peak := steadyPeak(lp, 1000, sr)
	// Butterworth is -3dB at the cutoff
	if math.Abs(peak-math.Sqrt(0.5)) > 0.03 {
		t.Errorf("gain at cutoff = %f, want about 0.707", peak)
	}
}

func TestCutoffClamping(t *testing.T) {
	b := NewBiquad(LowpassKind, 0.9, ButterworthQ)
	for i := 0; i < 1000; i++ {
		y := b.Process(float32(i%2*2 - 1))
		if math.IsNaN(float64(y)) || math.IsInf(float64(y), 0) {
			t.Fatal("filter became unstable above Nyquist")
		}
	}

	b.SetCutoffFrequency(-1)
	y := b.Process(1)
	if math.IsNaN(float64(y)) {
		t.Fatal("negative cutoff produced NaN")
	}
}

func TestReset(t *testing.T) {
	h := NewHighpass(0.01)
	h.Process(1)
	h.Process(-1)
	h.Reset()
	if y := h.Process(0); y != 0 {
		t.Errorf("state not cleared, got %f", y)
	}
}
