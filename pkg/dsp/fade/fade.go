// Package fade implements the shaped mute fade of a mixer strip.
//
// A fade moves a gain between 0 and 1 at a rate given in seconds per full
// swing. The curve is linear for a zero shape, bends toward an exponential
// curve for positive shapes and toward a logarithmic curve for negative ones.
package fade

import "math"

// A is the steepness of the exponential and logarithmic curves.
const A = 4.0

// MinRate is the smallest fade rate, in seconds, that still fades. Anything
// below it mutes and unmutes instantly.
const MinRate = 0.1

// eAM1 is e^A - 1.
var eAM1 = math.Exp(A) - 1

// snapEpsilon absorbs the rounding error accumulated by repeated steps.
const snapEpsilon = 1e-9

// ClampShape keeps a curve shape in [-1, 1]. NaN is the linear curve.
func ClampShape(shape float64) float64 {
	if math.IsNaN(shape) {
		return 0
	}
	return max(-1, min(1, shape))
}

// ClampRate keeps a fade rate non-negative. NaN is an instant mute.
func ClampRate(rate float64) float64 {
	if !(rate > 0) {
		return 0
	}
	return rate
}

func crossfade(a, b, fraction float64) float64 {
	return a + fraction*(b-a)
}

func expCurve(x float64) float64 {
	return (math.Exp(A*x) - 1) / eAM1
}

func logCurve(x float64) float64 {
	return math.Log(x*eAM1+1) / A
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// UpdateGain advances a fade by one step and returns the new gain.
//
// target is 0 or 1, x is the curve position that persists between calls, step
// is the position increment for this call and shape is clamped to [-1, 1].
//
// In symmetrical mode x itself travels toward target and the gain is read off
// the curve at x, so fading out retraces the fade in. In asymmetrical mode the
// curve shapes the increment instead: the gain moves toward target by the
// curve's slope at x, and x keeps advancing until the gain reaches target.
func UpdateGain(gain, target float64, x *float64, step, shape float64, symmetrical bool) float64 {
	shape = ClampShape(shape)
	if symmetrical {
		switch {
		case target < *x:
			*x -= step
			if *x < target+snapEpsilon {
				*x = target
			}
		case target > *x:
			*x += step
			if *x > target-snapEpsilon {
				*x = target
			}
		}

		pos := clampUnit(*x)
		newGain := pos
		if *x != target {
			if shape > 0 {
				newGain = crossfade(newGain, expCurve(pos), shape)
			} else if shape < 0 {
				newGain = crossfade(newGain, logCurve(pos), -shape)
			}
		}
		return newGain
	}

	delta := step
	pos := max(0, *x)
	next := pos + step
	if shape > 0 {
		delta = crossfade(delta, expCurve(next)-expCurve(pos), shape)
	} else if shape < 0 {
		delta = crossfade(delta, logCurve(next)-logCurve(pos), -shape)
	}

	newGain := gain
	if target > gain {
		newGain += delta
	} else if target < gain {
		newGain -= delta
	}

	switch {
	case target > gain && target < newGain+snapEpsilon:
		newGain = target
	case target < gain && target > newGain-snapEpsilon:
		newGain = target
	default:
		*x += step
	}
	return newGain
}

// State is where a fade sits in its cycle.
type State int

const (
	// IdleOn means the gain rests at 1
	IdleOn State = iota
	// IdleOff means the gain rests at 0
	IdleOff
	// FadingIn means the gain is rising toward 1
	FadingIn
	// FadingOut means the gain is falling toward 0
	FadingOut
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case IdleOn:
		return "idle-on"
	case IdleOff:
		return "idle-off"
	case FadingIn:
		return "fading-in"
	case FadingOut:
		return "fading-out"
	default:
		return "unknown"
	}
}

// Params are the per-step inputs of an Engine.
type Params struct {
	// Rate is the fade time in seconds for a full swing
	Rate float64
	// Shape bends the curve, in [-1, 1]
	Shape float64
	// TimeStep is the elapsed time in seconds
	TimeStep float64
	// Symmetrical selects the symmetrical curve mode
	Symmetrical bool
	// Exponent is applied to the gain to give Scaled
	Exponent int
}

// Engine holds the fade state of one strip.
type Engine struct {
	Gain   float64
	X      float64
	Target float64
	Scaled float64
}

// Reset puts the engine at rest, on or off.
func (e *Engine) Reset(on, symmetrical bool) {
	e.Gain = 0
	if on {
		e.Gain = 1
	}
	e.X = 0
	if symmetrical {
		e.X = e.Gain
	}
	e.Scaled = e.Gain
	e.Target = -1
}

// Step moves the engine toward target and returns the scaled gain.
func (e *Engine) Step(target float64, p Params) float64 {
	if !p.Symmetrical && target != e.Target {
		e.X = 0
	}
	e.Target = target

	if p.Rate >= MinRate && e.Gain != target {
		e.Gain = UpdateGain(e.Gain, target, &e.X, p.TimeStep/p.Rate, p.Shape, p.Symmetrical)
		e.Scaled = scale(e.Gain, p.Exponent)
		return e.Scaled
	}

	e.Gain = target
	e.X = 0
	if p.Symmetrical {
		e.X = target
	}
	e.Scaled = e.Gain
	return e.Scaled
}

// State reports the fade cycle position.
func (e *Engine) State() State {
	switch {
	case e.Gain >= 1:
		return IdleOn
	case e.Gain <= 0 && e.Target <= 0:
		return IdleOff
	case e.Target == 0:
		return FadingOut
	default:
		return FadingIn
	}
}

func scale(g float64, exponent int) float64 {
	if exponent <= 1 {
		return g
	}
	s := g
	for i := 1; i < exponent; i++ {
		s *= g
	}
	return s
}
