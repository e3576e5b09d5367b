package mixer

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/google/uuid"
)

// ErrKindMismatch is returned when a buffer from one strip kind is pasted
// onto another.
var ErrKindMismatch = fault.New("settings buffer is for another strip kind", ftag.With(ftag.InvalidArgument))

// ErrChannelRange is returned for a track or group index outside the mixer.
var ErrChannelRange = fault.New("channel index out of range", ftag.With(ftag.InvalidArgument))

// SettingsBuffer is a copy of one strip. Level 1 holds the settings and the
// link flag; level 2 adds the parameters, the name and the fade state, and
// is what track moves use.
type SettingsBuffer struct {
	// Source is the mixer the buffer was copied from
	Source uuid.UUID
	Kind   Kind

	Settings Settings
	Linked   bool

	Level2   bool
	Group    float32
	Fader    float32
	Mute     float32
	Solo     float32
	Pan      float32
	Name     string
	FadeGain float64
	FadeX    float64
}

func (m *Mixer) strip(c int) *Strip {
	if c < m.cfg.Tracks {
		return m.tracks[c]
	}
	return m.groups[c-m.cfg.Tracks]
}

func (m *Mixer) write(c int, buf *SettingsBuffer) {
	s := m.strip(c)
	*buf = SettingsBuffer{
		Source:   m.id,
		Kind:     s.Kind,
		Settings: s.Settings,
		Linked:   m.global.IsLinked(c),
	}
}

func (m *Mixer) read(c int, buf *SettingsBuffer) error {
	s := m.strip(c)
	if buf.Kind != s.Kind {
		return fault.Wrap(ErrKindMismatch, fmsg.With(fmt.Sprintf("%s onto %s", buf.Kind, s.Kind)))
	}
	s.Settings = buf.Settings
	s.SetHPFCutoff(buf.Settings.HPFCutoff)
	s.SetLPFCutoff(buf.Settings.LPFCutoff)
	m.global.SetLinked(c, buf.Linked)
	return nil
}

func (m *Mixer) write2(c int, buf *SettingsBuffer) {
	m.write(c, buf)
	s := m.strip(c)
	lay := m.layout
	buf.Level2 = true
	if s.Kind == KindTrack {
		buf.Group = m.params.Value(lay.Group + c)
	}
	buf.Fader = m.params.Value(lay.Fader + c)
	buf.Mute = m.params.Value(lay.Mute + c)
	buf.Solo = m.params.Value(lay.Solo + c)
	buf.Pan = m.params.Value(lay.Pan + c)
	buf.Name = s.Name
	buf.FadeGain = s.Fade.Gain
	buf.FadeX = s.Fade.X
}

func (m *Mixer) read2(c int, buf *SettingsBuffer) error {
	if err := m.read(c, buf); err != nil {
		return err
	}
	if !buf.Level2 {
		return nil
	}
	s := m.strip(c)
	lay := m.layout
	if s.Kind == KindTrack {
		m.params.Set(lay.Group+c, float64(buf.Group))
	}
	m.params.Set(lay.Fader+c, float64(buf.Fader))
	m.params.Set(lay.Mute+c, float64(buf.Mute))
	m.params.Set(lay.Solo+c, float64(buf.Solo))
	m.params.Set(lay.Pan+c, float64(buf.Pan))
	s.Name = buf.Name
	s.Fade.Gain = buf.FadeGain
	s.Fade.X = buf.FadeX
	return nil
}

func (m *Mixer) trackIndex(t int) error {
	if t < 0 || t >= m.cfg.Tracks {
		return fault.Wrap(ErrChannelRange, fmsg.With(fmt.Sprintf("track %d of %d", t, m.cfg.Tracks)))
	}
	return nil
}

func (m *Mixer) groupIndex(gr int) error {
	if gr < 0 || gr >= m.cfg.Groups {
		return fault.Wrap(ErrChannelRange, fmsg.With(fmt.Sprintf("group %d of %d", gr, m.cfg.Groups)))
	}
	return nil
}

// CopyTrack copies track t. level2 includes parameters, name and fade state.
func (m *Mixer) CopyTrack(t int, level2 bool) (SettingsBuffer, error) {
	var buf SettingsBuffer
	if err := m.trackIndex(t); err != nil {
		return buf, err
	}
	if level2 {
		m.write2(t, &buf)
	} else {
		m.write(t, &buf)
	}
	return buf, nil
}

// PasteTrack applies a buffer to track t. A level 1 buffer only changes
// the settings and the link flag.
func (m *Mixer) PasteTrack(t int, buf SettingsBuffer) error {
	if err := m.trackIndex(t); err != nil {
		return err
	}
	if err := m.read2(t, &buf); err != nil {
		return err
	}
	m.syncOldFaders()
	return nil
}

// CopyGroup copies group gr.
func (m *Mixer) CopyGroup(gr int, level2 bool) (SettingsBuffer, error) {
	var buf SettingsBuffer
	if err := m.groupIndex(gr); err != nil {
		return buf, err
	}
	c := m.cfg.Tracks + gr
	if level2 {
		m.write2(c, &buf)
	} else {
		m.write(c, &buf)
	}
	return buf, nil
}

// PasteGroup applies a buffer to group gr.
func (m *Mixer) PasteGroup(gr int, buf SettingsBuffer) error {
	if err := m.groupIndex(gr); err != nil {
		return err
	}
	if err := m.read2(m.cfg.Tracks+gr, &buf); err != nil {
		return err
	}
	m.syncOldFaders()
	return nil
}

// MoveTrack moves track from to position to and shifts the tracks in
// between by one. The expander is told to rotate its send levels the same
// way on its next slow update.
func (m *Mixer) MoveTrack(from, to int) error {
	if err := m.trackIndex(from); err != nil {
		return err
	}
	if err := m.trackIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	var saved, tmp SettingsBuffer
	m.write2(from, &saved)
	step := 1
	if to < from {
		step = -1
	}
	for t := from; t != to; t += step {
		m.write2(t+step, &tmp)
		// same kind on both ends, cannot fail
		_ = m.read2(t, &tmp)
	}
	_ = m.read2(to, &saved)
	m.syncOldFaders()
	m.move = TrackMove{From: from, To: to, Seq: m.move.Seq + 1}
	m.log.Info("%s: moved track %d to %d", m.id, from+1, to+1)
	return nil
}

// syncOldFaders takes the current faders as the link baseline so that a
// paste or move is not propagated to linked faders.
func (m *Mixer) syncOldFaders() {
	g := m.global
	for c := range g.oldFaders {
		g.oldFaders[c] = m.params.Value(m.layout.Fader + c)
	}
}
