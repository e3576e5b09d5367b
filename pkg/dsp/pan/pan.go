// Package pan provides mixer pan laws and the 2x2 stereo gain matrix they produce.
package pan

import (
	"math"
)

// MonoLaw selects how a mono source is spread across the stereo pair.
type MonoLaw int8

const (
	// MonoNoCompensation keeps center at unity and the near side at unity (+0dB)
	MonoNoCompensation MonoLaw = iota
	// MonoEqualPower uses sine/cosine panning (+3dB at the sides)
	MonoEqualPower
	// MonoCompromise sits between equal power and linear (+4.5dB)
	MonoCompromise
	// MonoLinear uses linear panning (+6dB at the sides)
	MonoLinear
)

// StereoLaw selects how a stereo source reacts to the pan control.
type StereoLaw int8

const (
	// StereoBalanceLinear attenuates the far side linearly
	StereoBalanceLinear StereoLaw = iota
	// StereoBalanceEqualPower attenuates the far side with sine/cosine (+3dB near side)
	StereoBalanceEqualPower
	// StereoTruePan folds the far side into the near side
	StereoTruePan
	// StereoPerTrack is a global setting only: each strip uses its own law
	StereoPerTrack
)

// Matrix holds the four gain lanes of a stereo strip, in the order
// L->L, R->L, L->R, R->R.
type Matrix [4]float32

// Lanes of a Matrix.
const (
	LL = 0
	RL = 1
	LR = 2
	RR = 3
)

// Apply routes one stereo frame through the matrix.
func (m *Matrix) Apply(left, right float32) (float32, float32) {
	return left*m[LL] + right*m[RL], left*m[LR] + right*m[RR]
}

// Scaled returns the matrix multiplied by a scalar gain.
func (m Matrix) Scaled(g float32) Matrix {
	return Matrix{m[0] * g, m[1] * g, m[2] * g, m[3] * g}
}

// Unity is the center-panned, pass-through matrix.
var Unity = Matrix{1, 0, 0, 1}

const (
	sin3 = -0.166666667
	sin5 = 0.00833333333
)

// SinCos computes sin and cos of theta with a Maclaurin series through the
// fifth power; the cosine comes from cos(x) = sin(Pi/2 - x).
// Only valid for 0 <= theta <= Pi/2.
func SinCos(theta float32) (sin, cos float32) {
	sin = theta + theta*theta*theta*(sin3+theta*theta*sin5)
	theta = float32(math.Pi/2) - theta
	cos = theta + theta*theta*theta*(sin3+theta*theta*sin5)
	return
}

// SinCosSqrt2 is SinCos scaled by sqrt(2) so that center is unity.
func SinCosSqrt2(theta float32) (sin, cos float32) {
	sin, cos = SinCos(theta)
	return sin * math.Sqrt2, cos * math.Sqrt2
}

// clampPan keeps pan in [0, 1]; NaN becomes center.
func clampPan(p float32) float32 {
	if math.IsNaN(float64(p)) {
		return 0.5
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Mono returns the matrix for a mono source (only the L->L and R->R lanes are
// used; the caller feeds the mono signal to both inputs).
// pan: 0 = hard left, 0.5 = center, 1 = hard right.
func Mono(p float32, law MonoLaw) Matrix {
	p = clampPan(p)
	if p == 0.5 {
		return Unity
	}
	var m Matrix
	panL := 1 - p
	switch law {
	case MonoEqualPower:
		m[RR], m[LL] = SinCosSqrt2(p * float32(math.Pi/2))
	case MonoCompromise:
		s, c := SinCosSqrt2(p * float32(math.Pi/2))
		m[LL] = float32(math.Sqrt(math.Abs(float64(c * panL * 2))))
		m[RR] = float32(math.Sqrt(math.Abs(float64(s * p * 2))))
	case MonoLinear:
		m[LL] = panL * 2
		m[RR] = p * 2
	default:
		m[LL] = min(1, panL*2)
		m[RR] = min(1, p*2)
	}
	return m
}

// Stereo returns the matrix for a stereo source.
// StereoPerTrack is resolved by the caller; here it falls back to equal power balance.
func Stereo(p float32, law StereoLaw) Matrix {
	p = clampPan(p)
	if p == 0.5 {
		return Unity
	}
	var m Matrix
	panL := 1 - p
	switch law {
	case StereoBalanceLinear:
		m[LL] = min(1, panL*2)
		m[RR] = min(1, p*2)
	case StereoTruePan:
		if p < 0.5 {
			m[LL] = 1
			m[RL] = 1 - p*2
			m[RR] = p * 2
		} else {
			m[LL] = panL * 2
			m[LR] = p*2 - 1
			m[RR] = 1
		}
	default:
		m[RR], m[LL] = SinCosSqrt2(p * float32(math.Pi/2))
	}
	return m
}

// ResolveStereo picks the law a strip should use given the global setting and
// the strip's local one.
func ResolveStereo(global, local StereoLaw) StereoLaw {
	if global == StereoPerTrack {
		if local == StereoPerTrack {
			return StereoBalanceEqualPower
		}
		return local
	}
	return global
}
