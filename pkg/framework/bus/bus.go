// Package bus provides the signal taps and summing buses of a mixer and the
// description of its audio ports.
package bus

// Tap is a point along a strip where the signal can be picked off.
type Tap int8

const (
	// PreInsert is the input after gain adjust and pre-insert filters
	PreInsert Tap = iota
	// PostInsert is after the insert return and post-insert filters
	PostInsert
	// PostFader is after fader, pan and fade
	PostFader
	// PostSolo is after the solo gain, what the strip adds to the mix
	PostSolo

	// NumTaps is the number of taps per strip
	NumTaps
)

// String returns the tap name.
func (t Tap) String() string {
	switch t {
	case PreInsert:
		return "pre-insert"
	case PostInsert:
		return "post-insert"
	case PostFader:
		return "post-fader"
	case PostSolo:
		return "post-solo"
	default:
		return "unknown"
	}
}

// Mode selects the tap used by direct outs or aux sends. The first four
// values equal the taps; PerTrack only appears as a global setting and
// defers to each strip.
type Mode int8

// PerTrack delegates the tap choice to the strip.
const PerTrack Mode = Mode(NumTaps)

// DefaultMode is post-solo.
const DefaultMode = Mode(PostSolo)

// Select returns the tap for a global mode and a strip's local mode.
// Out-of-range values fall back to post-solo.
func Select(global, local Mode) Tap {
	m := global
	if m == PerTrack {
		m = local
	}
	if m < 0 || m >= Mode(NumTaps) {
		return PostSolo
	}
	return Tap(m)
}

// Taps holds one stereo frame per tap.
type Taps [NumTaps][2]float32

// Set stores a frame at a tap.
func (t *Taps) Set(tap Tap, left, right float32) {
	t[tap] = [2]float32{left, right}
}

// Get returns the frame at a tap.
func (t *Taps) Get(tap Tap) (float32, float32) {
	return t[tap][0], t[tap][1]
}

// Clear zeroes every tap.
func (t *Taps) Clear() {
	*t = Taps{}
}

// Sum is a stereo summing bus.
type Sum [2]float32

// Add mixes a frame into the bus.
func (s *Sum) Add(left, right float32) {
	s[0] += left
	s[1] += right
}

// AddScaled mixes a frame scaled by g.
func (s *Sum) AddScaled(left, right, g float32) {
	s[0] += left * g
	s[1] += right * g
}

// Clear zeroes the bus.
func (s *Sum) Clear() {
	*s = Sum{}
}

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

// Info describes one audio port of the mixer.
type Info struct {
	Direction    Direction
	ChannelCount int32
	Name         string
}

// Configuration lists the audio ports of a mixer.
type Configuration struct {
	buses []Info
}

// Add appends a port.
func (c *Configuration) Add(dir Direction, channels int32, name string) *Configuration {
	c.buses = append(c.buses, Info{Direction: dir, ChannelCount: channels, Name: name})
	return c
}

// Count returns the number of ports in a direction.
func (c *Configuration) Count(dir Direction) int {
	n := 0
	for _, b := range c.buses {
		if b.Direction == dir {
			n++
		}
	}
	return n
}

// Get returns the index-th port of a direction, or nil.
func (c *Configuration) Get(dir Direction, index int) *Info {
	for i := range c.buses {
		if c.buses[i].Direction != dir {
			continue
		}
		if index == 0 {
			return &c.buses[i]
		}
		index--
	}
	return nil
}

// Channels returns the total channel count of a direction.
func (c *Configuration) Channels(dir Direction) int32 {
	var n int32
	for _, b := range c.buses {
		if b.Direction == dir {
			n += b.ChannelCount
		}
	}
	return n
}
