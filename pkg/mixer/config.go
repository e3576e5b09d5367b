package mixer

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/justyntemme/mixengine/pkg/framework/debug"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = fault.New("invalid mixer configuration", ftag.With(ftag.InvalidArgument))

// Config sets the size of a mixer.
type Config struct {
	Tracks int
	Groups int
	Auxes  int
}

// Config16 is the large mixer: 16 tracks, 4 groups, 4 auxes.
var Config16 = Config{Tracks: 16, Groups: 4, Auxes: 4}

// Config8 is the small mixer: 8 tracks, 2 groups, 4 auxes.
var Config8 = Config{Tracks: 8, Groups: 2, Auxes: 4}

// Channels is the number of tracks plus groups, the faders that can link.
func (c Config) Channels() int {
	return c.Tracks + c.Groups
}

// Validate checks the counts.
func (c Config) Validate() error {
	switch {
	case c.Tracks < 1:
		return fault.Wrap(ErrInvalidConfig, fmsg.With(fmt.Sprintf("tracks = %d, need at least 1", c.Tracks)))
	case c.Groups < 0 || c.Groups*MaxAuxes > 64:
		return fault.Wrap(ErrInvalidConfig, fmsg.With(fmt.Sprintf("groups = %d, allowed 0 to %d", c.Groups, 64/MaxAuxes)))
	case c.Auxes < 0 || c.Auxes > MaxAuxes:
		return fault.Wrap(ErrInvalidConfig, fmsg.With(fmt.Sprintf("auxes = %d, allowed 0 to %d", c.Auxes, MaxAuxes)))
	case c.Tracks+c.Groups+c.Auxes > MaxChannels:
		return fault.Wrap(ErrInvalidConfig, fmsg.With(fmt.Sprintf("%d channels, at most %d", c.Tracks+c.Groups+c.Auxes, MaxChannels)))
	}
	return nil
}

// ParseConfig returns a preset by name ("16" or "8").
func ParseConfig(name string) (Config, error) {
	switch name {
	case "16", "mixer16":
		return Config16, nil
	case "8", "mixer8":
		return Config8, nil
	}
	return Config{}, fault.Wrap(ErrInvalidConfig,
		fmsg.WithDesc("unknown preset "+name, "Use 16 or 8"))
}

// LinkMode selects how a moved linked fader drives the others.
type LinkMode int8

const (
	// LinkAbsolute sets every linked fader to the moved fader's value
	LinkAbsolute LinkMode = iota
	// LinkRelative moves every linked fader by the same amount
	LinkRelative
)

type options struct {
	logger     *debug.Logger
	sampleRate float32
	linkMode   LinkMode
}

// Option configures a Mixer or an AuxExpander.
type Option func(*options)

// WithLogger sets the logger. The default logs nothing.
func WithLogger(l *debug.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSampleRate sets the starting sample rate.
func WithSampleRate(sr float32) Option {
	return func(o *options) {
		if sr > 0 {
			o.sampleRate = sr
		}
	}
}

// WithLinkMode sets how linked faders follow each other.
func WithLinkMode(m LinkMode) Option {
	return func(o *options) {
		o.linkMode = m
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:     debug.Discard(),
		sampleRate: DefaultSampleRate,
		linkMode:   LinkAbsolute,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
