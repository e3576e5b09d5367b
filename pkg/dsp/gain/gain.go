// Package gain provides amplitude, fader-law and clipping operations.
package gain

import (
	"math"
)

// Constants for dB conversion
const (
	// MinDB is the minimum dB value (effectively -infinity)
	MinDB = -200.0
)

// LinearToDb converts a linear amplitude value to decibels.
// Returns MinDB for values <= 0.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return 20.0 * math.Log10(linear)
}

// DbToLinear converts a decibel value to linear amplitude.
// Values <= MinDB return 0.
func DbToLinear(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10.0, db/20.0)
}

// IntegerDb rounds a linear gain to the nearest whole dB and returns it as
// linear gain again. Used for the master dim amount so that the displayed
// value and the applied value agree.
func IntegerDb(linear float64) float64 {
	if linear <= 0 {
		return 0
	}
	db := math.Round(20.0 * math.Log10(linear))
	return math.Pow(10.0, db/20.0)
}

// Scale applies a fader law: the display position raised to an integer
// exponent. Multiplication only, no libm call, since this runs per sample.
// Negative positions are treated as 0.
func Scale(position float32, exponent int) float32 {
	if position <= 0 {
		return 0
	}
	g := float32(1)
	for i := 0; i < exponent; i++ {
		g *= position
	}
	return g
}

// Unscale is the inverse of Scale: it converts a linear gain back to a
// display position.
func Unscale(linear float64, exponent int) float64 {
	if linear <= 0 || exponent <= 0 {
		return 0
	}
	return math.Pow(linear, 1.0/float64(exponent))
}

// MaxPosition returns the display position that yields maxLinearGain.
func MaxPosition(maxLinearGain float64, exponent int) float64 {
	return Unscale(maxLinearGain, exponent)
}

// Saturate is a smooth clipper: close to linear for small inputs, reaching
// ceiling at 3x ceiling input and holding it beyond.
func Saturate(input, ceiling float32) float32 {
	if ceiling <= 0 {
		return 0
	}
	return ceiling * fastTanh32(input/ceiling)
}

// HardClip applies hard clipping to limit signal amplitude.
func HardClip(input, threshold float32) float32 {
	if input > threshold {
		return threshold
	}
	if input < -threshold {
		return -threshold
	}
	return input
}

// fastTanh32 approximates tanh for soft clipping.
func fastTanh32(x float32) float32 {
	if x < -3 {
		return -1
	}
	if x > 3 {
		return 1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}
