package mixer

import (
	"github.com/justyntemme/mixengine/pkg/dsp/pan"
	"github.com/justyntemme/mixengine/pkg/framework/bus"
)

// TrackMove asks the expander to rotate its per-track send levels the same
// way the mixer rotated its tracks. Seq changes once per move.
type TrackMove struct {
	From, To int
	Seq      uint32
}

// AuxSendMessage travels from the mixer to the expander, once per sample.
// Fields below UpdateSlow are only refreshed when it is set.
type AuxSendMessage struct {
	// Sends holds the aux send tap of each track then group
	Sends []Frame
	// GroupGains holds the fade and solo gain of each group, applied to
	// the sends of its tracks when GroupsControlTrackSendLevels is set
	GroupGains []float32

	UpdateSlow bool

	Names                        []string
	TrackGroups                  []int
	Move                         TrackMove
	EcoMask                      uint64
	GroupsControlTrackSendLevels bool
	// MuteGroupedReturn has bit g*MaxAuxes+a set when the sends of group g
	// to aux a must be muted because aux a returns into group g
	MuteGroupedReturn uint64
	AuxFadeGains      [MaxAuxes]float32
}

// AuxReturnMessage travels from the expander to the mixer, once per sample.
type AuxReturnMessage struct {
	Returns [MaxAuxes]Frame
	Fader   [MaxAuxes]float32
	Pan     [MaxAuxes]float32
	FaderCV [MaxAuxes]CV

	UpdateSlow bool

	DirectOutsModes [MaxAuxes]bus.Mode
	StereoPanLaws   [MaxAuxes]pan.StereoLaw
	Names           [MaxAuxes]string
	VUColors        [MaxAuxes]int8
	DispColors      [MaxAuxes]int8

	Mute        [MaxAuxes]bool
	Solo        [MaxAuxes]bool
	Group       [MaxAuxes]int
	FadeRate    [MaxAuxes]float32
	FadeProfile [MaxAuxes]float32
}

// Pack20 returns mute, solo, group, fade rate and fade profile of the four
// returns as one flat block of 20 values.
func (m *AuxReturnMessage) Pack20() [20]float32 {
	var v [20]float32
	for a := 0; a < MaxAuxes; a++ {
		v[a] = b2f(m.Mute[a])
		v[a+4] = b2f(m.Solo[a])
		v[a+8] = float32(m.Group[a])
		v[a+12] = m.FadeRate[a]
		v[a+16] = m.FadeProfile[a]
	}
	return v
}

// Unpack20 is the inverse of Pack20.
func (m *AuxReturnMessage) Unpack20(v [20]float32) {
	for a := 0; a < MaxAuxes; a++ {
		m.Mute[a] = v[a] >= 0.5
		m.Solo[a] = v[a+4] >= 0.5
		m.Group[a] = int(v[a+8] + 0.5)
		m.FadeRate[a] = v[a+12]
		m.FadeProfile[a] = v[a+16]
	}
}

// defaults fills the message the mixer uses when no expander is attached.
func (m *AuxReturnMessage) defaults() {
	*m = AuxReturnMessage{}
	for a := 0; a < MaxAuxes; a++ {
		m.Fader[a] = 1
		m.Pan[a] = 0.5
		m.DirectOutsModes[a] = bus.DefaultMode
		m.StereoPanLaws[a] = pan.StereoBalanceEqualPower
		m.Names[a] = defaultName(KindAux, a)
	}
}

// Link is the connection between a Mixer and an AuxExpander. The mixer
// reads Return and writes Send; the expander does the opposite, so the
// returns arrive one sample late.
type Link struct {
	Send      AuxSendMessage
	Return    AuxReturnMessage
	Connected bool
}

// NewLink returns a connected link sized for cfg.
func NewLink(cfg Config) *Link {
	n := cfg.Channels()
	l := &Link{
		Send: AuxSendMessage{
			Sends:       make([]Frame, n),
			GroupGains:  make([]float32, cfg.Groups),
			Names:       make([]string, n),
			TrackGroups: make([]int, cfg.Tracks),
			Move:        TrackMove{From: -1, To: -1},
		},
		Connected: true,
	}
	l.Return.defaults()
	return l
}
