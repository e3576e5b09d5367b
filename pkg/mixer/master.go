package mixer

import (
	"github.com/justyntemme/mixengine/pkg/dsp/analysis"
	"github.com/justyntemme/mixengine/pkg/dsp/fade"
	"github.com/justyntemme/mixengine/pkg/dsp/gain"
	"github.com/justyntemme/mixengine/pkg/dsp/pan"
	"github.com/justyntemme/mixengine/pkg/dsp/utility"
	"github.com/justyntemme/mixengine/pkg/framework/param"
	"github.com/justyntemme/mixengine/pkg/framework/state"
)

// Clipping selects the master output limiter.
type Clipping int8

const (
	ClipSoft Clipping = iota
	ClipHard
)

// lanes of the master chain and mute slewer
const (
	laneChainPre = iota
	laneChainPost
	laneFade
)

// mono fold-down matrix
var monoMatrix = pan.Matrix{0.5, 0.5, 0.5, 0.5}

// MasterControls are the master parameters for one sample.
type MasterControls struct {
	Fader float32
	Mute  bool
	Dim   bool
	Mono  bool
}

// Master is the output strip.
type Master struct {
	DCBlock     bool
	Clipping    Clipping
	FadeRate    float32
	FadeProfile float32
	VUColor     int8
	DispColor   int8
	DimGain     float32
	Name        string

	Fade fade.Engine

	dimGainIntegerDB float32
	faderGain        float32
	oldFader         float32
	gainMatrix       pan.Matrix
	gainSlewer       param.Slewer4
	chainTargets     [4]float32
	chainSlewer      param.Slewer4
	dc               *utility.DCBlocker
	sampleRate       float64

	VU analysis.VU
}

func newMaster(sampleRate float64) *Master {
	m := &Master{
		sampleRate: sampleRate,
		dc:         utility.NewDCBlocker(utility.DefaultDCCutoff, sampleRate),
	}
	m.gainSlewer.SetRiseFall(param.AntipopSlewSlow, param.AntipopSlewSlow)
	m.chainSlewer.SetRiseFall(param.AntipopSlewFast, param.AntipopSlewFast)
	return m
}

func (m *Master) onReset(g *GlobalState, on bool) {
	m.DCBlock = false
	m.Clipping = ClipSoft
	m.FadeRate = 0
	m.FadeProfile = 0
	m.VUColor = 0
	m.DispColor = 0
	m.DimGain = DefaultDimGain
	m.Name = "MASTER"
	m.resetNonJSON(g, on)
}

func (m *Master) resetNonJSON(g *GlobalState, on bool) {
	m.chainTargets = [4]float32{}
	m.faderGain = 0
	m.gainMatrix = pan.Matrix{}
	m.gainSlewer.Reset()
	m.chainSlewer.Reset()
	m.dc.SetCutoff(utility.DefaultDCCutoff, m.sampleRate)
	m.dc.Reset()
	m.oldFader = -10
	m.VU.Reset()
	m.Fade.Reset(on, g.SymmetricalFade)
	m.updateDimGain()
}

func (m *Master) setSampleRate(sr float64) {
	m.sampleRate = sr
	m.dc.SetCutoff(utility.DefaultDCCutoff, sr)
}

// SetDimGain sets the dim amount as a linear gain. The applied gain is
// rounded to whole dB.
func (m *Master) SetDimGain(linear float32) {
	m.DimGain = linear
	m.updateDimGain()
}

func (m *Master) updateDimGain() {
	m.dimGainIntegerDB = float32(gain.IntegerDb(float64(m.DimGain)))
}

// DimGainIntegerDB returns the dim gain that is applied.
func (m *Master) DimGainIntegerDB() float32 {
	return m.dimGainIntegerDB
}

// FaderGain returns the linear fader gain, before dim.
func (m *Master) FaderGain() float32 {
	return m.faderGain
}

func (m *Master) process(g *GlobalState, mix Frame, in MasterInput, c MasterControls) Frame {
	dt := g.SampleTime

	target := 1.0
	if c.Mute {
		target = 0
	}
	m.chainTargets[laneFade] = float32(m.Fade.Step(target, fade.Params{
		Rate:        float64(m.FadeRate),
		Shape:       float64(m.FadeProfile),
		TimeStep:    float64(dt),
		Symmetrical: g.SymmetricalFade,
		Exponent:    MasterFaderScalingExponent,
	}))
	m.chainTargets[laneChainPre] = 0
	m.chainTargets[laneChainPost] = 0
	if in.ChainConnected {
		if g.ChainMode == ChainPre {
			m.chainTargets[laneChainPre] = 1
		} else {
			m.chainTargets[laneChainPost] = 1
		}
	}

	fader := c.Fader * in.VolCV.Unit()
	if fader != m.oldFader {
		m.oldFader = fader
		m.faderGain = min(gain.Scale(fader, MasterFaderScalingExponent), MasterFaderMaxLinearGain)
	}
	base := pan.Unity
	if c.Mono {
		base = monoMatrix
	}
	gn := m.faderGain
	if c.Dim {
		gn *= m.dimGainIntegerDB
	}
	m.gainMatrix = base.Scaled(gn)

	if !m.gainSlewer.Settled(m.gainMatrix) {
		m.gainSlewer.Process(dt, m.gainMatrix)
	}
	if !m.chainSlewer.Settled(m.chainTargets) {
		m.chainSlewer.Process(dt, m.chainTargets)
	}

	l, r := mix[0], mix[1]
	if pre := m.chainSlewer.Out[laneChainPre]; pre != 0 {
		l += in.Chain[0] * pre
		r += in.Chain[1] * pre
	}
	gm := pan.Matrix(m.gainSlewer.Out)
	l, r = gm.Apply(l, r)
	if post := m.chainSlewer.Out[laneChainPost]; post != 0 {
		l += in.Chain[0] * post
		r += in.Chain[1] * post
	}
	l *= m.chainSlewer.Out[laneFade]
	r *= m.chainSlewer.Out[laneFade]

	if m.DCBlock {
		l, r = m.dc.Process(l, r)
	}
	if m.Clipping == ClipHard {
		l = gain.HardClip(l, ClipVoltage)
		r = gain.HardClip(r, ClipVoltage)
	} else {
		l = gain.Saturate(l, ClipVoltage)
		r = gain.Saturate(r, ClipVoltage)
	}
	m.VU.Process(dt, l, r)
	return Frame{l, r}
}

func (m *Master) dataToValues(v state.Values) {
	v.SetBool("dcBlock", m.DCBlock)
	v.SetInt("clipping", int64(m.Clipping))
	v.SetFloat("fadeRate", m.FadeRate)
	v.SetFloat("fadeProfile", m.FadeProfile)
	v.SetInt("vuColorThemeLocal", int64(m.VUColor))
	v.SetInt("dispColorLocal", int64(m.DispColor))
	v.SetFloat("dimGain", m.DimGain)
	v.SetString("masterLabel", m.Name)
}

func (m *Master) dataFromValues(v state.Values) {
	v.Bool("dcBlock", &m.DCBlock)
	var i8 int8
	if v.Int8("clipping", &i8) {
		m.Clipping = Clipping(i8)
	}
	v.Float("fadeRate", &m.FadeRate)
	v.Float("fadeProfile", &m.FadeProfile)
	clampFade(&m.FadeRate, &m.FadeProfile)
	v.Int8("vuColorThemeLocal", &m.VUColor)
	v.Int8("dispColorLocal", &m.DispColor)
	v.Float("dimGain", &m.DimGain)
	v.String("masterLabel", &m.Name)
}
