package mixer

// processGroup runs group gr on the sum of its tracks and aux returns.
// Groups always feed the master mix.
func (m *Mixer) processGroup(gr int, in *GroupInput, out *Outputs) {
	g := m.global
	s := m.groups[gr]
	c := s.Channel
	if ok, dt := m.refresh(c); ok {
		s.control(g, m.controls(c, in.VolCV, in.PanCV), g.Solo.Group[gr], dt)
	}
	s.slew(g)
	s.run(g, Frame(m.groupIn[gr]), in.InsertReturn, in.InsertConnected)
	m.outputs(s, out)
	m.auxSend(s)
	m.send.GroupGains[gr] = s.muteSoloSlewer.Out * s.faderGain

	l, r := s.Out()
	m.mix.AddScaled(l, r, m.dry.Out)
}
