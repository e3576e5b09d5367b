package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/justyntemme/mixengine/pkg/dsp/oscillator"
)

// ErrScenario is returned for scenarios that decode but make no sense.
var ErrScenario = fault.New("invalid scenario", ftag.With(ftag.InvalidArgument))

// Tone feeds a test signal into one track.
type Tone struct {
	Track  int     `json:"track"`
	Shape  string  `json:"shape"`
	Freq   float64 `json:"freq"`
	Amp    float32 `json:"amp"`
	Stereo bool    `json:"stereo"`
	Seed   uint64  `json:"seed"`

	shape oscillator.Shape
}

// Event is one timed change: a parameter set by name, or a raw MIDI message
// for the control surface.
type Event struct {
	At    float64  `json:"at"`
	Param string   `json:"param,omitempty"`
	Value *float64 `json:"value,omitempty"`
	MIDI  []int    `json:"midi,omitempty"`
}

// Scenario is the input of the render command.
type Scenario struct {
	Config     string  `json:"config"`
	SampleRate float32 `json:"sampleRate"`
	Duration   float64 `json:"duration"`
	Every      int     `json:"every"`
	Eco        *bool   `json:"eco"`
	Expander   bool    `json:"expander"`

	Tones  []Tone   `json:"tones"`
	Events []Event  `json:"events"`
	Record []string `json:"record"`
}

// ParseScenario decodes and checks a scenario. Track numbers are 1-based;
// whether they exist is checked when the mixer is built.
func ParseScenario(r io.Reader) (*Scenario, error) {
	var sc Scenario
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("decode scenario", "The scenario is not valid JSON or has unknown fields"),
			ftag.With(ftag.InvalidArgument))
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func invalid(format string, args ...any) error {
	return fault.Wrap(ErrScenario, fmsg.With(fmt.Sprintf(format, args...)))
}

func (sc *Scenario) validate() error {
	if sc.Duration <= 0 {
		return invalid("duration %g, must be positive", sc.Duration)
	}
	if sc.Every < 0 {
		return invalid("every %d, must not be negative", sc.Every)
	}
	if sc.Every == 0 {
		sc.Every = 64
	}
	for i := range sc.Tones {
		t := &sc.Tones[i]
		if t.Track < 1 {
			return invalid("tone %d: track %d, tracks start at 1", i, t.Track)
		}
		shape, err := oscillator.ParseShape(t.Shape)
		if t.Shape == "" {
			shape, err = oscillator.Sine, nil
		}
		if err != nil {
			return fault.Wrap(err, fmsg.With("tone "+strconv.Itoa(i)))
		}
		t.shape = shape
		if t.Freq <= 0 && shape != oscillator.DC && shape != oscillator.Noise {
			t.Freq = 440
		}
		if t.Amp == 0 {
			t.Amp = 5
		}
	}
	for i, e := range sc.Events {
		if e.At < 0 {
			return invalid("event %d: at %g, must not be negative", i, e.At)
		}
		switch {
		case e.Param != "" && len(e.MIDI) > 0:
			return invalid("event %d: set either param or midi", i)
		case e.Param != "":
			if e.Value == nil {
				return invalid("event %d: param %s has no value", i, e.Param)
			}
		case len(e.MIDI) > 0:
			if len(e.MIDI) > 3 {
				return invalid("event %d: %d midi bytes, at most 3", i, len(e.MIDI))
			}
			for _, b := range e.MIDI {
				if b < 0 || b > 255 {
					return invalid("event %d: midi byte %d", i, b)
				}
			}
		default:
			return invalid("event %d: nothing to do", i)
		}
	}
	return nil
}
