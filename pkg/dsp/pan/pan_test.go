package pan

import (
	"math"
	"testing"
)

func TestSinCos(t *testing.T) {
	for i := 0; i <= 16; i++ {
		theta := float32(i) / 16 * float32(math.Pi/2)
		s, c := SinCos(theta)
		if math.Abs(float64(s)-math.Sin(float64(theta))) > 0.005 {
			t.Errorf("sin(%f) = %f, want %f", theta, s, math.Sin(float64(theta)))
		}
		if math.Abs(float64(c)-math.Cos(float64(theta))) > 0.005 {
			t.Errorf("cos(%f) = %f, want %f", theta, c, math.Cos(float64(theta)))
		}
	}
}

func TestSinCosSqrt2Center(t *testing.T) {
	s, c := SinCosSqrt2(float32(math.Pi / 4))
	if math.Abs(float64(s-1)) > 0.001 || math.Abs(float64(c-1)) > 0.001 {
		t.Errorf("center should be near unity, got sin=%f cos=%f", s, c)
	}
}

func TestMonoLaws(t *testing.T) {
	tests := []struct {
		name      string
		law       MonoLaw
		sideGain  float32 // near-side gain at hard pan
		tolerance float32
	}{
		{"No compensation", MonoNoCompensation, 1.0, 1e-6},
		{"Equal power", MonoEqualPower, float32(math.Sqrt2), 0.01},
		{"Compromise", MonoCompromise, float32(math.Sqrt(2 * math.Sqrt2)), 0.01},
		{"Linear", MonoLinear, 2.0, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center := Mono(0.5, tt.law)
			if center != Unity {
				t.Errorf("center should be unity, got %v", center)
			}

			left := Mono(0, tt.law)
			if math.Abs(float64(left[LL]-tt.sideGain)) > float64(tt.tolerance) {
				t.Errorf("hard left L gain = %f, want %f", left[LL], tt.sideGain)
			}
			if math.Abs(float64(left[RR])) > 1e-6 {
				t.Errorf("hard left R gain = %f, want 0", left[RR])
			}

			right := Mono(1, tt.law)
			if math.Abs(float64(right[LL])) > 0.01 {
				t.Errorf("hard right L gain = %f, want 0", right[LL])
			}

			for p := float32(0); p <= 1; p += 0.05 {
				m := Mono(p, tt.law)
				for lane, g := range m {
					if g < 0 || g > 2.01 || math.IsNaN(float64(g)) {
						t.Fatalf("pan %f lane %d gain out of range: %f", p, lane, g)
					}
				}
			}
		})
	}
}

func TestStereoLaws(t *testing.T) {
	t.Run("BalanceLinear", func(t *testing.T) {
		m := Stereo(0.25, StereoBalanceLinear)
		if m[LL] != 1 || math.Abs(float64(m[RR]-0.5)) > 1e-6 || m[RL] != 0 || m[LR] != 0 {
			t.Errorf("unexpected matrix %v", m)
		}
	})

	t.Run("BalanceEqualPower", func(t *testing.T) {
		m := Stereo(0, StereoBalanceEqualPower)
		if math.Abs(float64(m[LL]-math.Sqrt2)) > 0.01 || math.Abs(float64(m[RR])) > 1e-6 {
			t.Errorf("unexpected matrix %v", m)
		}
	})

	t.Run("TruePanHardLeft", func(t *testing.T) {
		m := Stereo(0, StereoTruePan)
		l, r := m.Apply(0.3, 0.7)
		if math.Abs(float64(l-1.0)) > 1e-6 || r != 0 {
			t.Errorf("hard left should fold R into L, got l=%f r=%f", l, r)
		}
	})

	t.Run("TruePanHardRight", func(t *testing.T) {
		m := Stereo(1, StereoTruePan)
		l, r := m.Apply(0.3, 0.7)
		if l != 0 || math.Abs(float64(r-1.0)) > 1e-6 {
			t.Errorf("hard right should fold L into R, got l=%f r=%f", l, r)
		}
	})

	t.Run("ClampedInput", func(t *testing.T) {
		if Stereo(-3, StereoBalanceLinear) != Stereo(0, StereoBalanceLinear) {
			t.Error("pan below 0 should clamp")
		}
		if Stereo(float32(math.NaN()), StereoTruePan) != Unity {
			t.Error("NaN pan should fall back to center")
		}
	})
}

func TestResolveStereo(t *testing.T) {
	if ResolveStereo(StereoTruePan, StereoBalanceLinear) != StereoTruePan {
		t.Error("global law should win")
	}
	if ResolveStereo(StereoPerTrack, StereoBalanceLinear) != StereoBalanceLinear {
		t.Error("per track should defer to local law")
	}
	if ResolveStereo(StereoPerTrack, StereoPerTrack) != StereoBalanceEqualPower {
		t.Error("local per track is invalid and should fall back")
	}
}

func TestMatrixScaled(t *testing.T) {
	m := Unity.Scaled(0.5)
	l, r := m.Apply(1, -1)
	if l != 0.5 || r != -0.5 {
		t.Errorf("got l=%f r=%f", l, r)
	}
}
