package mixer

import "github.com/justyntemme/mixengine/pkg/dsp/utility"

// Frame is one stereo sample in volts.
type Frame [2]float32

// CV is a control voltage input.
type CV struct {
	V         float32
	Connected bool
}

// Unit maps 0..10 V to 0..1. A disconnected input reads 1.
func (c CV) Unit() float32 {
	if !c.Connected {
		return 1
	}
	return utility.CVToUnit(c.V)
}

// TrackInput is everything a track reads from the outside for one sample.
type TrackInput struct {
	Signal    Frame
	Connected bool
	// Stereo is set when the right channel has its own signal; a mono track
	// copies left to right.
	Stereo bool

	InsertReturn    Frame
	InsertConnected bool

	VolCV  CV
	PanCV  CV
	MuteCV CV
	SoloCV CV
}

// GroupInput holds the external inputs of a group.
type GroupInput struct {
	InsertReturn    Frame
	InsertConnected bool

	VolCV  CV
	PanCV  CV
	MuteCV CV
	SoloCV CV
}

// AuxReturnInput holds the insert return of an aux return strip.
type AuxReturnInput struct {
	InsertReturn    Frame
	InsertConnected bool
}

// MasterInput holds the master inputs.
type MasterInput struct {
	Chain          Frame
	ChainConnected bool
	VolCV          CV
	MuteCV         CV
}

// Inputs is the mixer input for one sample.
type Inputs struct {
	Tracks []TrackInput
	Groups []GroupInput
	Auxes  []AuxReturnInput
	Master MasterInput
}

// NewInputs returns zeroed inputs sized for cfg.
func NewInputs(cfg Config) *Inputs {
	return &Inputs{
		Tracks: make([]TrackInput, cfg.Tracks),
		Groups: make([]GroupInput, cfg.Groups),
		Auxes:  make([]AuxReturnInput, cfg.Auxes),
	}
}

// Outputs is the mixer output for one sample.
type Outputs struct {
	Main Frame
	// Direct holds the direct outs of tracks, then groups, then auxes
	Direct []Frame
	// InsertSends holds the insert sends in the same order
	InsertSends []Frame
}

// NewOutputs returns outputs sized for cfg.
func NewOutputs(cfg Config) *Outputs {
	n := cfg.Tracks + cfg.Groups + cfg.Auxes
	return &Outputs{
		Direct:      make([]Frame, n),
		InsertSends: make([]Frame, n),
	}
}

// schmitt is a trigger with hysteresis on a CV input.
type schmitt struct {
	high bool
}

// process returns true on a rising edge.
func (s *schmitt) process(v float32) bool {
	if s.high {
		if v <= cvTriggerLow {
			s.high = false
		}
		return false
	}
	if v >= cvTriggerHigh {
		s.high = true
		return true
	}
	return false
}
