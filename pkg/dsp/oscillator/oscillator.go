// Package oscillator provides the test signals fed to mixer inputs by the
// offline renderer.
package oscillator

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// ErrUnknownShape is returned by ParseShape.
var ErrUnknownShape = fault.New("unknown waveform", ftag.With(ftag.InvalidArgument))

// Shape selects a waveform.
type Shape int

const (
	Sine Shape = iota
	Saw
	Square
	Triangle
	// Noise is uniform white noise
	Noise
	// DC holds the amplitude
	DC
)

var shapeNames = []string{"sine", "saw", "square", "triangle", "noise", "dc"}

func (s Shape) String() string {
	if s >= 0 && int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// ParseShape converts a waveform name, case-insensitive, into a Shape.
func ParseShape(name string) (Shape, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range shapeNames {
		if s == n {
			return Shape(i), nil
		}
	}
	return Sine, fault.Wrap(ErrUnknownShape, fmsg.With(name))
}

// Oscillator generates one waveform at a fixed amplitude in volts.
type Oscillator struct {
	shape      Shape
	amplitude  float32
	sampleRate float64
	frequency  float64
	phase      float64
	phaseInc   float64
	rand       *rand.Rand
}

// New creates an oscillator. Noise is seeded so renders are repeatable.
func New(shape Shape, sampleRate, freq float64, amplitude float32, seed uint64) *Oscillator {
	o := &Oscillator{
		shape:      shape,
		amplitude:  amplitude,
		sampleRate: sampleRate,
		rand:       rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
	o.SetFrequency(freq)
	return o
}

// SetFrequency sets the oscillator frequency
func (o *Oscillator) SetFrequency(freq float64) {
	o.frequency = freq
	o.phaseInc = freq / o.sampleRate
}

// SetSampleRate keeps the frequency at a new rate.
func (o *Oscillator) SetSampleRate(sr float64) {
	if sr <= 0 {
		return
	}
	o.sampleRate = sr
	o.SetFrequency(o.frequency)
}

// SetPhase sets the oscillator phase (0-1)
func (o *Oscillator) SetPhase(phase float64) {
	o.phase = phase - math.Floor(phase)
}

// Reset resets the oscillator phase to 0
func (o *Oscillator) Reset() {
	o.phase = 0.0
}

func (o *Oscillator) updatePhase() {
	o.phase += o.phaseInc
	if o.phase >= 1.0 {
		o.phase -= math.Floor(o.phase)
	}
}

// Next returns the next sample.
func (o *Oscillator) Next() float32 {
	var v float32
	switch o.shape {
	case Saw:
		v = float32(2.0*o.phase - 1.0)
	case Square:
		v = 1
		if o.phase >= 0.5 {
			v = -1
		}
	case Triangle:
		if o.phase < 0.5 {
			v = float32(4.0*o.phase - 1.0)
		} else {
			v = float32(3.0 - 4.0*o.phase)
		}
	case Noise:
		v = float32(o.rand.Float64()*2.0 - 1.0)
	case DC:
		v = 1
	default:
		v = float32(math.Sin(2.0 * math.Pi * o.phase))
	}
	o.updatePhase()
	return v * o.amplitude
}

// Process fills buffer - no allocations
func (o *Oscillator) Process(buffer []float32) {
	for i := range buffer {
		buffer[i] = o.Next()
	}
}
