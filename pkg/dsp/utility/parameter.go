// Package utility provides common DSP utility functions and processors.
package utility

// Clamp32 keeps value within [min, max].
func Clamp32(value, min, max float32) float32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// CVToUnit maps a control voltage in the ±10 V convention to 0..1.
// Negative voltages, NaN and anything above 10 V are clamped.
func CVToUnit(volts float32) float32 {
	v := volts * 0.1
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
