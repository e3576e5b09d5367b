package mixer

import (
	"math"

	"github.com/justyntemme/mixengine/pkg/dsp/gain"
	"github.com/justyntemme/mixengine/pkg/dsp/utility"
)

var maxAuxFader = float32(gain.MaxPosition(GlobalAuxReturnMaxLinearGain, GlobalAuxReturnScalingExponent))

// sanitize clamps a value coming over the link; NaN becomes def.
func sanitize(v, lo, hi, def float32) float32 {
	if math.IsNaN(float64(v)) {
		return def
	}
	return utility.Clamp32(v, lo, hi)
}

// processAux runs aux return strip a. Its controls and settings come from
// the expander; without one they stay at their defaults and the return is
// silent.
func (m *Mixer) processAux(a int, ret *AuxReturnMessage, in *AuxReturnInput, out *Outputs) {
	g := m.global
	s := m.auxes[a]
	s.FadeRate = ret.FadeRate[a]
	s.FadeProfile = ret.FadeProfile[a]
	clampFade(&s.FadeRate, &s.FadeProfile)
	s.PanLawStereo = ret.StereoPanLaws[a]
	s.DirectOutsMode = ret.DirectOutsModes[a]
	if ret.UpdateSlow {
		if ret.Names[a] != "" {
			s.Name = ret.Names[a]
		}
		s.VUColor = ret.VUColors[a]
		s.DispColor = ret.DispColors[a]
	}

	if ok, dt := m.refresh(s.Channel); ok {
		s.control(g, Controls{
			Fader: sanitize(ret.Fader[a], 0, maxAuxFader, 1),
			Pan:   sanitize(ret.Pan[a], 0, 1, 0.5),
			Mute:  ret.Mute[a],
			VolCV: ret.FaderCV[a],
		}, g.Solo.Aux[a], dt)
	}
	s.slew(g)
	s.run(g, ret.Returns[a], in.InsertReturn, in.InsertConnected)
	m.outputs(s, out)

	l, r := s.Out()
	if gr := m.validGroup(ret.Group[a]); gr > 0 {
		m.groupIn[gr-1].Add(l, r)
		return
	}
	m.mix.Add(l, r)
}
