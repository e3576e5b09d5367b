package mixer

import (
	"github.com/justyntemme/mixengine/pkg/dsp/gain"
	"github.com/justyntemme/mixengine/pkg/dsp/pan"
	"github.com/justyntemme/mixengine/pkg/framework/bus"
	"github.com/justyntemme/mixengine/pkg/framework/param"
	"github.com/justyntemme/mixengine/pkg/framework/state"
)

// FilterPos selects where the strip filters sit relative to the insert.
type FilterPos int8

const (
	FilterPreInsert FilterPos = iota
	FilterPostInsert
	// FilterPerTrack is a global setting only
	FilterPerTrack
)

// resolve returns the position for a strip given its local setting.
func (f FilterPos) resolve(local FilterPos) FilterPos {
	if f == FilterPerTrack {
		f = local
	}
	if f != FilterPreInsert {
		return FilterPostInsert
	}
	return FilterPreInsert
}

// ChainMode selects where the chain input joins the master.
type ChainMode int8

const (
	ChainPre ChainMode = iota
	ChainPost
)

// Display holds the global display settings. They do not change the audio
// and are only carried for the surfaces and for persistence.
type Display struct {
	Cloaked   bool
	VUColor   int8
	DispColor int8
	Details   uint8
}

// pack returns the four settings as one word, one byte each.
func (d Display) pack() int64 {
	var c uint32
	if d.Cloaked {
		c = 0xFF
	}
	c |= uint32(uint8(d.VUColor)) << 8
	c |= uint32(uint8(d.DispColor)) << 16
	c |= uint32(d.Details) << 24
	return int64(c)
}

func (d *Display) unpack(v int64) {
	c := uint32(v)
	d.Cloaked = c&0xFF != 0
	d.VUColor = int8(c >> 8)
	d.DispColor = int8(c >> 16)
	d.Details = uint8(c >> 24)
}

// GlobalState is the mixer-wide configuration read by every strip. It is
// handed to each strip on every call; nothing else writes it during a
// sample pass.
type GlobalState struct {
	cfg Config

	PanLawMono                         pan.MonoLaw
	PanLawStereo                       pan.StereoLaw
	DirectOutsMode                     bus.Mode
	AuxSendsMode                       bus.Mode
	GroupsControlTrackSendLevels       bool
	AuxReturnsMutedWhenMainSolo        bool
	AuxReturnsSolosMuteDry             bool
	ChainMode                          ChainMode
	Display                            Display
	SymmetricalFade                    bool
	FilterPos                          FilterPos
	GroupedAuxReturnFeedbackProtection bool
	MomentaryCvButtons                 bool
	LinearVolCvInputs                  bool
	LinkMode                           LinkMode

	// Linked marks tracks then groups whose faders move together
	Linked ChannelSet
	// Eco marks tracks, then groups, then auxes that refresh their
	// controls at a reduced rate
	Eco ChannelSet

	linkedFaderReloadValues []float32

	// not persisted
	SampleTime               float32
	maxTGFader               float32
	oldFaders                []float32
	requestLinkedFaderReload bool
	Solo                     SoloState
}

func newGlobalState(cfg Config, linkMode LinkMode) *GlobalState {
	n := cfg.Channels()
	g := &GlobalState{
		cfg:                     cfg,
		LinkMode:                linkMode,
		Linked:                  NewChannelSet(n, false),
		Eco:                     NewChannelSet(n+cfg.Auxes, true),
		linkedFaderReloadValues: make([]float32, n),
		oldFaders:               make([]float32, n),
		maxTGFader:              float32(gain.MaxPosition(TrkAndGrpFaderMaxLinearGain, TrkAndGrpFaderScalingExponent)),
		SampleTime:              1 / DefaultSampleRate,
		Solo:                    newSoloState(cfg),
	}
	g.onReset()
	return g
}

func (g *GlobalState) onReset() {
	g.PanLawMono = pan.MonoEqualPower
	g.PanLawStereo = pan.StereoBalanceEqualPower
	g.DirectOutsMode = bus.DefaultMode
	g.AuxSendsMode = bus.DefaultMode
	g.GroupsControlTrackSendLevels = false
	g.AuxReturnsMutedWhenMainSolo = false
	g.AuxReturnsSolosMuteDry = false
	g.ChainMode = ChainPost
	g.Display = Display{Details: 0x7}
	g.SymmetricalFade = false
	g.FilterPos = FilterPostInsert
	g.GroupedAuxReturnFeedbackProtection = true
	g.MomentaryCvButtons = true
	g.LinearVolCvInputs = false
	for i := range g.Linked {
		g.Linked[i] = false
	}
	for i := range g.Eco {
		g.Eco[i] = true
	}
	for i := range g.linkedFaderReloadValues {
		g.linkedFaderReloadValues[i] = 1
	}
}

// IsLinked reports whether channel c (tracks then groups) is linked.
func (g *GlobalState) IsLinked(c int) bool {
	return g.Linked.Has(c)
}

// SetLinked links or unlinks channel c.
func (g *GlobalState) SetLinked(c int, on bool) {
	g.Linked.Set(c, on)
}

// stereoLaw resolves the stereo pan law for a strip.
func (g *GlobalState) stereoLaw(local pan.StereoLaw) pan.StereoLaw {
	return pan.ResolveStereo(g.PanLawStereo, local)
}

// syncLinkedFaders runs the pending reload or propagates a moved linked
// fader to the other linked faders. faders is the index of the first
// track fader; groups follow the tracks.
func (g *GlobalState) syncLinkedFaders(tbl *param.Table, faders int) {
	n := len(g.oldFaders)
	if g.requestLinkedFaderReload {
		for c := 0; c < n; c++ {
			tbl.Set(faders+c, float64(g.linkedFaderReloadValues[c]))
			g.oldFaders[c] = tbl.Value(faders + c)
		}
		g.requestLinkedFaderReload = false
		return
	}

	for c := 0; c < n; c++ {
		v := tbl.Value(faders + c)
		if v == g.oldFaders[c] {
			continue
		}
		if g.Linked.Has(c) {
			delta := v - g.oldFaders[c]
			for o := 0; o < n; o++ {
				if o == c || !g.Linked.Has(o) {
					continue
				}
				if g.LinkMode == LinkRelative {
					nv := g.oldFaders[o] + delta
					tbl.Set(faders+o, float64(min(max(nv, 0), g.maxTGFader)))
				} else {
					tbl.Set(faders+o, float64(v))
				}
			}
			for o := 0; o < n; o++ {
				g.oldFaders[o] = tbl.Value(faders + o)
			}
			return
		}
		g.oldFaders[c] = v
	}
}

func (g *GlobalState) dataToValues(v state.Values, tbl *param.Table, faders int) {
	v.SetInt("panLawMono", int64(g.PanLawMono))
	v.SetInt("panLawStereo", int64(g.PanLawStereo))
	v.SetInt("directOutsMode", int64(g.DirectOutsMode))
	v.SetInt("auxSendsMode", int64(g.AuxSendsMode))
	v.SetBool("groupsControlTrackSendLevels", g.GroupsControlTrackSendLevels)
	v.SetBool("auxReturnsMutedWhenMainSolo", g.AuxReturnsMutedWhenMainSolo)
	v.SetBool("auxReturnsSolosMuteDry", g.AuxReturnsSolosMuteDry)
	v.SetInt("chainMode", int64(g.ChainMode))
	v.SetInt("colorAndCloak", g.Display.pack())
	v.SetBool("symmetricalFade", g.SymmetricalFade)
	v.SetUint64("linkBitMask", g.Linked.Mask())
	v.SetInt("filterPos", int64(g.FilterPos))
	v.SetBool("groupedAuxReturnFeedbackProtection", g.GroupedAuxReturnFeedbackProtection)
	v.SetUint64("ecoMode", g.Eco.Mask())
	v.SetBool("momentaryCvButtons", g.MomentaryCvButtons)
	v.SetBool("linearVolCvInputs", g.LinearVolCvInputs)

	fs := make([]float32, len(g.oldFaders))
	for c := range fs {
		fs[c] = tbl.Value(faders + c)
	}
	v.SetFloats("faders", fs)
}

func (g *GlobalState) dataFromValues(v state.Values, tbl *param.Table, faders int) {
	var i8 int8
	if v.Int8("panLawMono", &i8) {
		g.PanLawMono = pan.MonoLaw(i8)
	}
	if v.Int8("panLawStereo", &i8) {
		g.PanLawStereo = pan.StereoLaw(i8)
	}
	if v.Int8("directOutsMode", &i8) {
		g.DirectOutsMode = bus.Mode(i8)
	}
	if v.Int8("auxSendsMode", &i8) {
		g.AuxSendsMode = bus.Mode(i8)
	}
	v.Bool("groupsControlTrackSendLevels", &g.GroupsControlTrackSendLevels)
	v.Bool("auxReturnsMutedWhenMainSolo", &g.AuxReturnsMutedWhenMainSolo)
	v.Bool("auxReturnsSolosMuteDry", &g.AuxReturnsSolosMuteDry)
	if v.Int8("chainMode", &i8) {
		g.ChainMode = ChainMode(i8)
	}
	var cc int64
	if v.Int64("colorAndCloak", &cc) {
		g.Display.unpack(cc)
	}
	v.Bool("symmetricalFade", &g.SymmetricalFade)
	var mask uint64
	if v.Uint64("linkBitMask", &mask) {
		g.Linked.SetMask(mask)
	}
	if v.Int8("filterPos", &i8) {
		g.FilterPos = FilterPos(i8)
	}
	v.Bool("groupedAuxReturnFeedbackProtection", &g.GroupedAuxReturnFeedbackProtection)
	if v.Uint64("ecoMode", &mask) {
		g.Eco.SetMask(mask)
	}
	v.Bool("momentaryCvButtons", &g.MomentaryCvButtons)
	v.Bool("linearVolCvInputs", &g.LinearVolCvInputs)

	// the reload values default to the faders already restored from params
	for c := range g.linkedFaderReloadValues {
		g.linkedFaderReloadValues[c] = tbl.Value(faders + c)
	}
	v.Floats("faders", g.linkedFaderReloadValues)
	// applied synchronously at the start of the next sample
	g.requestLinkedFaderReload = true
}
