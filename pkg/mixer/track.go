package mixer

// processTrack runs track t. A track with nothing connected outputs silence
// and is left out of every sum.
func (m *Mixer) processTrack(t int, in *TrackInput, out *Outputs) {
	g := m.global
	s := m.tracks[t]
	if !in.Connected {
		s.silence()
		out.Direct[t] = Frame{}
		out.InsertSends[t] = Frame{}
		m.send.Sends[t] = Frame{}
		return
	}

	s.stereo = in.Stereo
	if ok, dt := m.refresh(t); ok {
		s.control(g, m.controls(t, in.VolCV, in.PanCV), g.Solo.Track[t], dt)
	}
	s.slew(g)
	s.run(g, in.Signal, in.InsertReturn, in.InsertConnected)
	m.outputs(s, out)
	m.auxSend(s)

	l, r := s.Out()
	if gr := m.trackGroup(t); gr > 0 {
		m.groupIn[gr-1].Add(l, r)
		return
	}
	m.mix.AddScaled(l, r, m.dry.Out)
}
