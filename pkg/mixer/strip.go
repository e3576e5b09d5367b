package mixer

import (
	"strconv"

	"github.com/justyntemme/mixengine/pkg/dsp/analysis"
	"github.com/justyntemme/mixengine/pkg/dsp/fade"
	"github.com/justyntemme/mixengine/pkg/dsp/filter"
	"github.com/justyntemme/mixengine/pkg/dsp/gain"
	"github.com/justyntemme/mixengine/pkg/dsp/pan"
	"github.com/justyntemme/mixengine/pkg/framework/bus"
	"github.com/justyntemme/mixengine/pkg/framework/param"
	"github.com/justyntemme/mixengine/pkg/framework/state"
)

// Kind is the role of a strip.
type Kind int8

const (
	KindTrack Kind = iota
	KindGroup
	KindAux
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindGroup:
		return "group"
	case KindAux:
		return "aux"
	default:
		return "unknown"
	}
}

// Caps describes what a strip kind can do. The strip code is shared; the
// kinds differ only in these switches.
type Caps struct {
	Kind       Kind
	Filters    bool
	GainAdjust bool
	// AlwaysStereo strips ignore the mono input path
	AlwaysStereo bool
	Exponent     int
	MaxGain      float32
	idPrefix     string
}

var (
	trackCaps = Caps{
		Kind:       KindTrack,
		Filters:    true,
		GainAdjust: true,
		Exponent:   TrkAndGrpFaderScalingExponent,
		MaxGain:    TrkAndGrpFaderMaxLinearGain,
		idPrefix:   "id_t",
	}
	groupCaps = Caps{
		Kind:         KindGroup,
		AlwaysStereo: true,
		Exponent:     TrkAndGrpFaderScalingExponent,
		MaxGain:      TrkAndGrpFaderMaxLinearGain,
		idPrefix:     "id_g",
	}
	auxCaps = Caps{
		Kind:         KindAux,
		AlwaysStereo: true,
		Exponent:     GlobalAuxReturnScalingExponent,
		MaxGain:      GlobalAuxReturnMaxLinearGain,
		idPrefix:     "id_a",
	}
)

// Settings are the per-strip options that live outside the parameter table.
// They make up the first level of a copy and paste.
type Settings struct {
	GainAdjust     float32
	FadeRate       float32
	FadeProfile    float32
	HPFCutoff      float32
	LPFCutoff      float32
	DirectOutsMode bus.Mode
	AuxSendsMode   bus.Mode
	PanLawStereo   pan.StereoLaw
	VUColor        int8
	FilterPos      FilterPos
	DispColor      int8
	PanCvLevel     float32
}

// DefaultSettings returns the settings of a fresh strip.
func DefaultSettings() Settings {
	return Settings{
		GainAdjust:     1,
		HPFCutoff:      DefHPFCutoffFreq,
		LPFCutoff:      DefLPFCutoffFreq,
		DirectOutsMode: bus.DefaultMode,
		AuxSendsMode:   bus.DefaultMode,
		PanLawStereo:   pan.StereoBalanceEqualPower,
		FilterPos:      FilterPostInsert,
		PanCvLevel:     1,
	}
}

// Controls are the control values a strip reads on a refresh.
type Controls struct {
	Fader float32
	Pan   float32
	Mute  bool
	VolCV CV
	PanCV CV
}

type panSignature struct {
	mono   pan.MonoLaw
	global pan.StereoLaw
	local  pan.StereoLaw
	stereo bool
}

// Strip is one track, group or aux return.
type Strip struct {
	Caps
	// Index is the position within its kind
	Index int
	// Channel is the position among tracks, then groups, then auxes
	Channel int
	Name    string
	Settings

	Fade fade.Engine

	ids        string
	stereo     bool
	sampleTime float32

	faderGain  float32
	panMatrix  pan.Matrix
	gainMatrix pan.Matrix
	fadeScaled float32
	soloGain   float32
	// fadeScaledWithSolo is the target of the mute and solo slewer
	fadeScaledWithSolo float32

	gainMatrixSlewer param.Slewer4
	muteSlewer       param.Slewer
	muteSoloSlewer   param.Slewer
	inGainSlewer     param.Slewer

	hpf [2]filter.Highpass
	lpf [2]filter.Biquad

	oldFader float32
	oldPan   float32
	oldSig   panSignature
	sigValid bool

	Taps       bus.Taps
	InsertSend Frame
	VU         analysis.VU
}

func newStrip(caps Caps, index, channel int, sampleTime float32) *Strip {
	s := &Strip{
		Caps:       caps,
		Index:      index,
		Channel:    channel,
		ids:        caps.idPrefix + strconv.Itoa(index) + "_",
		sampleTime: sampleTime,
		Name:       defaultName(caps.Kind, index),
	}
	s.gainMatrixSlewer.SetRiseFall(param.AntipopSlewSlow, param.AntipopSlewSlow)
	s.muteSlewer.SetRiseFall(param.AntipopSlewFast, param.AntipopSlewFast)
	s.muteSoloSlewer.SetRiseFall(param.AntipopSlewFast, param.AntipopSlewFast)
	s.inGainSlewer.SetRiseFall(param.AntipopSlewFast, param.AntipopSlewFast)
	for i := range s.hpf {
		s.hpf[i] = *filter.NewHighpass(0.1)
		s.lpf[i] = *filter.NewLowpass(0.4)
	}
	return s
}

func defaultName(k Kind, index int) string {
	switch k {
	case KindGroup:
		return "GRP" + strconv.Itoa(index+1)
	case KindAux:
		return string(rune('A' + index))
	default:
		return "-" + leftPad(strconv.Itoa(index+1)) + "-"
	}
}

func leftPad(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

// onReset restores the default settings and rebuilds derived state.
func (s *Strip) onReset(g *GlobalState, on bool) {
	s.Settings = DefaultSettings()
	s.Name = defaultName(s.Kind, s.Index)
	s.SetHPFCutoff(DefHPFCutoffFreq)
	s.SetLPFCutoff(DefLPFCutoffFreq)
	s.resetNonJSON(g, on)
}

// resetNonJSON zeroes the gain matrices and slewers and restarts the fade
// from the current mute state, so the strip ramps in from silence.
func (s *Strip) resetNonJSON(g *GlobalState, on bool) {
	s.stereo = s.AlwaysStereo
	s.panMatrix = pan.Matrix{}
	s.faderGain = 0
	s.gainMatrix = pan.Matrix{}
	s.gainMatrixSlewer.Reset()
	s.muteSlewer.Reset()
	s.muteSoloSlewer.Reset()
	s.inGainSlewer.Reset()
	for i := range s.hpf {
		s.hpf[i].Reset()
		s.lpf[i].Reset()
	}
	s.oldPan = -10
	s.oldFader = -10
	s.sigValid = false
	s.VU.Reset()
	s.Taps.Clear()
	s.InsertSend = Frame{}
	s.Fade.Reset(on, g.SymmetricalFade)
	s.fadeScaled = float32(s.Fade.Scaled)
	s.soloGain = 1
	s.fadeScaledWithSolo = s.fadeScaled
}

// SetHPFCutoff sets the high-pass cutoff in Hz.
func (s *Strip) SetHPFCutoff(hz float32) {
	s.HPFCutoff = hz
	for i := range s.hpf {
		s.hpf[i].SetCutoffFrequency(float64(hz * s.sampleTime))
	}
}

// SetLPFCutoff sets the low-pass cutoff in Hz.
func (s *Strip) SetLPFCutoff(hz float32) {
	s.LPFCutoff = hz
	for i := range s.lpf {
		s.lpf[i].SetCutoffFrequency(float64(hz * s.sampleTime))
	}
}

// HPFOn reports whether the high-pass is in the signal path.
func (s *Strip) HPFOn() bool {
	return s.Filters && s.HPFCutoff >= MinHPFCutoffFreq
}

// LPFOn reports whether the low-pass is in the signal path.
func (s *Strip) LPFOn() bool {
	return s.Filters && s.LPFCutoff <= MaxLPFCutoffFreq
}

func (s *Strip) setSampleTime(st float32) {
	s.sampleTime = st
	s.SetHPFCutoff(s.HPFCutoff)
	s.SetLPFCutoff(s.LPFCutoff)
}

// control refreshes the fade, fader and pan targets. dt is the time since
// the previous refresh.
func (s *Strip) control(g *GlobalState, c Controls, soloGain, dt float32) {
	target := 1.0
	if c.Mute {
		target = 0
	}
	s.fadeScaled = float32(s.Fade.Step(target, fade.Params{
		Rate:        float64(s.FadeRate),
		Shape:       float64(s.FadeProfile),
		TimeStep:    float64(dt),
		Symmetrical: g.SymmetricalFade,
		Exponent:    s.Exponent,
	}))
	s.soloGain = soloGain
	s.fadeScaledWithSolo = s.fadeScaled * soloGain

	if g.LinearVolCvInputs && c.VolCV.Connected {
		s.faderGain = min(gain.Scale(c.Fader, s.Exponent), s.MaxGain) * c.VolCV.Unit()
		s.oldFader = -10
	} else {
		withCV := c.Fader * c.VolCV.Unit()
		if withCV != s.oldFader {
			s.oldFader = withCV
			s.faderGain = min(gain.Scale(withCV, s.Exponent), s.MaxGain)
		}
	}

	p := c.Pan
	if c.PanCV.Connected {
		p += c.PanCV.V * 0.1 * s.PanCvLevel
	}
	p = min(max(p, 0), 1)
	sig := panSignature{
		mono:   g.PanLawMono,
		global: g.PanLawStereo,
		local:  s.PanLawStereo,
		stereo: s.stereo,
	}
	if p != s.oldPan || !s.sigValid || sig != s.oldSig {
		s.oldPan = p
		s.oldSig = sig
		s.sigValid = true
		if s.stereo {
			s.panMatrix = pan.Stereo(p, g.stereoLaw(s.PanLawStereo))
		} else {
			s.panMatrix = pan.Mono(p, g.PanLawMono)
		}
	}
	s.gainMatrix = s.panMatrix.Scaled(s.faderGain)
}

// slew advances every slewer by one sample. A slewer that already sits on
// its target is skipped.
func (s *Strip) slew(g *GlobalState) {
	dt := g.SampleTime
	rate := float32(param.AntipopSlewSlow)
	if g.LinearVolCvInputs {
		rate = param.AntipopSlewFast
	}
	s.gainMatrixSlewer.SetRiseFall(rate, rate)
	if !s.gainMatrixSlewer.Settled(s.gainMatrix) {
		s.gainMatrixSlewer.Process(dt, s.gainMatrix)
	}
	if !s.muteSlewer.Settled(s.fadeScaled) {
		s.muteSlewer.Process(dt, s.fadeScaled)
	}
	if !s.muteSoloSlewer.Settled(s.fadeScaledWithSolo) {
		s.muteSoloSlewer.Process(dt, s.fadeScaledWithSolo)
	}
	if s.Caps.GainAdjust && !s.inGainSlewer.Settled(s.Settings.GainAdjust) {
		s.inGainSlewer.Process(dt, s.Settings.GainAdjust)
	}
}

func (s *Strip) filter(l, r float32) (float32, float32) {
	if s.HPFCutoff >= MinHPFCutoffFreq {
		l = s.hpf[0].Process(l)
		if s.stereo {
			r = s.hpf[1].Process(r)
		}
	}
	if s.LPFCutoff <= MaxLPFCutoffFreq {
		l = s.lpf[0].Process(l)
		if s.stereo {
			r = s.lpf[1].Process(r)
		}
	}
	if !s.stereo {
		r = l
	}
	return l, r
}

// run passes one frame through the strip and fills its taps.
func (s *Strip) run(g *GlobalState, in Frame, ret Frame, retConnected bool) {
	l, r := in[0], in[1]
	if !s.stereo {
		r = l
	}
	if s.Caps.GainAdjust {
		l *= s.inGainSlewer.Out
		r *= s.inGainSlewer.Out
	}

	pos := FilterPostInsert
	if s.Filters {
		pos = g.FilterPos.resolve(s.FilterPos)
		if pos == FilterPreInsert {
			l, r = s.filter(l, r)
		}
	}
	s.Taps.Set(bus.PreInsert, l, r)
	s.InsertSend = Frame{l, r}
	if retConnected {
		l, r = ret[0], ret[1]
	}
	if s.Filters && pos == FilterPostInsert {
		l, r = s.filter(l, r)
	}
	s.Taps.Set(bus.PostInsert, l, r)

	m := pan.Matrix(s.gainMatrixSlewer.Out)
	l, r = m.Apply(l, r)
	s.Taps.Set(bus.PostFader, l*s.muteSlewer.Out, r*s.muteSlewer.Out)
	l *= s.muteSoloSlewer.Out
	r *= s.muteSoloSlewer.Out
	s.Taps.Set(bus.PostSolo, l, r)
	s.VU.Process(g.SampleTime, l, r)
}

// silence clears the outputs of a strip with nothing connected.
func (s *Strip) silence() {
	s.Taps.Clear()
	s.InsertSend = Frame{}
	s.VU.Reset()
}

// Out returns the frame the strip adds to the mix.
func (s *Strip) Out() (float32, float32) {
	return s.Taps.Get(bus.PostSolo)
}

// FaderGain returns the linear fader gain after scaling.
func (s *Strip) FaderGain() float32 {
	return s.faderGain
}

// EffectiveGain returns the slewed gain from the mute and solo stage times
// the slewed left-to-left lane of the gain matrix.
func (s *Strip) EffectiveGain() float32 {
	return s.muteSoloSlewer.Out * s.gainMatrixSlewer.Out[pan.LL]
}

// SoloGain returns the solo gain of the last refresh.
func (s *Strip) SoloGain() float32 {
	return s.soloGain
}

// Stereo reports whether the strip runs in stereo.
func (s *Strip) Stereo() bool {
	return s.stereo
}

func (s *Strip) settingsToValues(v state.Values) {
	if s.Caps.GainAdjust {
		v.SetFloat(s.ids+"gainAdjust", s.Settings.GainAdjust)
	}
	v.SetFloat(s.ids+"fadeRate", s.FadeRate)
	v.SetFloat(s.ids+"fadeProfile", s.FadeProfile)
	if s.Filters {
		v.SetFloat(s.ids+"hpfCutoffFreq", s.HPFCutoff)
		v.SetFloat(s.ids+"lpfCutoffFreq", s.LPFCutoff)
		v.SetInt(s.ids+"filterPos", int64(s.FilterPos))
	}
	v.SetInt(s.ids+"directOutsMode", int64(s.DirectOutsMode))
	v.SetInt(s.ids+"auxSendsMode", int64(s.AuxSendsMode))
	v.SetInt(s.ids+"panLawStereo", int64(s.PanLawStereo))
	v.SetInt(s.ids+"vuColorThemeLocal", int64(s.VUColor))
	v.SetInt(s.ids+"dispColorLocal", int64(s.DispColor))
	v.SetFloat(s.ids+"panCvLevel", s.PanCvLevel)
	v.SetString(s.ids+"name", s.Name)
}

// clampFade keeps a fade rate non-negative and a fade profile in [-1, 1].
func clampFade(rate, profile *float32) {
	*rate = float32(fade.ClampRate(float64(*rate)))
	*profile = float32(fade.ClampShape(float64(*profile)))
}

func (s *Strip) settingsFromValues(v state.Values) {
	if s.Caps.GainAdjust {
		v.Float(s.ids+"gainAdjust", &s.Settings.GainAdjust)
	}
	v.Float(s.ids+"fadeRate", &s.FadeRate)
	v.Float(s.ids+"fadeProfile", &s.FadeProfile)
	clampFade(&s.FadeRate, &s.FadeProfile)
	if s.Filters {
		hz := s.HPFCutoff
		if v.Float(s.ids+"hpfCutoffFreq", &hz) {
			s.SetHPFCutoff(hz)
		}
		hz = s.LPFCutoff
		if v.Float(s.ids+"lpfCutoffFreq", &hz) {
			s.SetLPFCutoff(hz)
		}
		var fp int8
		if v.Int8(s.ids+"filterPos", &fp) {
			s.FilterPos = FilterPos(fp)
		}
	}
	var i8 int8
	if v.Int8(s.ids+"directOutsMode", &i8) {
		s.DirectOutsMode = bus.Mode(i8)
	}
	if v.Int8(s.ids+"auxSendsMode", &i8) {
		s.AuxSendsMode = bus.Mode(i8)
	}
	if v.Int8(s.ids+"panLawStereo", &i8) {
		s.PanLawStereo = pan.StereoLaw(i8)
	}
	v.Int8(s.ids+"vuColorThemeLocal", &s.VUColor)
	v.Int8(s.ids+"dispColorLocal", &s.DispColor)
	v.Float(s.ids+"panCvLevel", &s.PanCvLevel)
	v.String(s.ids+"name", &s.Name)
}
