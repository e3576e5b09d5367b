// Package mixer is the signal path of a multi-channel audio mixer: tracks,
// groups, aux returns and a master bus, with fades, pan laws, solo and
// mute resolution, linked faders and an aux expander link.
//
// A Mixer is driven one sample at a time from a single goroutine. Nothing
// in Process allocates or locks.
package mixer

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/google/uuid"

	"github.com/justyntemme/mixengine/pkg/framework/bus"
	"github.com/justyntemme/mixengine/pkg/framework/debug"
	"github.com/justyntemme/mixengine/pkg/framework/param"
)

// ErrLinkSize is returned when a link was built for another configuration.
var ErrLinkSize = fault.New("link does not match mixer configuration", ftag.With(ftag.InvalidArgument))

// Mixer is the mother module: strips, master, parameter table and global
// state.
type Mixer struct {
	id     uuid.UUID
	cfg    Config
	log    *debug.Logger
	params *param.Table
	layout Layout
	global *GlobalState

	tracks []*Strip
	groups []*Strip
	auxes  []*Strip
	master *Master

	link     *Link
	noReturn AuxReturnMessage
	scratch  AuxSendMessage
	send     *AuxSendMessage

	groupIn []bus.Sum
	mix     bus.Sum
	dry     param.Slewer

	// tracks then groups
	muteTrig       []schmitt
	soloTrig       []schmitt
	masterMuteTrig schmitt

	solo       SoloInputs
	groupUsage []uint64
	sampleRate float32
	counter    uint64
	move       TrackMove
}

// New builds a mixer and resets it to defaults.
func New(cfg Config, opts ...Option) (*Mixer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	m := &Mixer{
		id:         uuid.New(),
		cfg:        cfg,
		global:     newGlobalState(cfg, o.linkMode),
		sampleRate: o.sampleRate,
		groupIn:    make([]bus.Sum, cfg.Groups),
		muteTrig:   make([]schmitt, cfg.Channels()),
		soloTrig:   make([]schmitt, cfg.Channels()),
		groupUsage: make([]uint64, cfg.Groups),
		solo: SoloInputs{
			TrackSolo:  make([]bool, cfg.Tracks),
			TrackGroup: make([]int, cfg.Tracks),
			GroupSolo:  make([]bool, cfg.Groups),
			AuxSolo:    make([]bool, cfg.Auxes),
		},
		move: TrackMove{From: -1, To: -1},
	}
	m.log = o.logger.With("mixer")
	m.params, m.layout = buildParams(cfg)
	m.global.SampleTime = 1 / o.sampleRate

	st := m.global.SampleTime
	for t := 0; t < cfg.Tracks; t++ {
		m.tracks = append(m.tracks, newStrip(trackCaps, t, t, st))
	}
	for gr := 0; gr < cfg.Groups; gr++ {
		m.groups = append(m.groups, newStrip(groupCaps, gr, cfg.Tracks+gr, st))
	}
	for a := 0; a < cfg.Auxes; a++ {
		m.auxes = append(m.auxes, newStrip(auxCaps, a, cfg.Channels()+a, st))
	}
	m.master = newMaster(float64(o.sampleRate))
	m.dry.SetRiseFall(param.AntipopSlewFast, param.AntipopSlewFast)

	m.noReturn.defaults()
	m.scratch = NewLink(cfg).Send
	m.send = &m.scratch

	m.OnReset()
	m.log.Info("%s: created %d tracks, %d groups, %d auxes at %.0f Hz",
		m.id, cfg.Tracks, cfg.Groups, cfg.Auxes, o.sampleRate)
	return m, nil
}

// ID returns the instance id.
func (m *Mixer) ID() uuid.UUID {
	return m.id
}

// Config returns the mixer size.
func (m *Mixer) Config() Config {
	return m.cfg
}

// Params returns the parameter table.
func (m *Mixer) Params() *param.Table {
	return m.params
}

// Layout returns the parameter indices.
func (m *Mixer) Layout() Layout {
	return m.layout
}

// Global returns the global state.
func (m *Mixer) Global() *GlobalState {
	return m.global
}

// Track returns track t.
func (m *Mixer) Track(t int) *Strip {
	return m.tracks[t]
}

// Group returns group gr.
func (m *Mixer) Group(gr int) *Strip {
	return m.groups[gr]
}

// Aux returns aux return strip a.
func (m *Mixer) Aux(a int) *Strip {
	return m.auxes[a]
}

// Master returns the master strip.
func (m *Mixer) Master() *Master {
	return m.master
}

// GroupUsage returns the channels feeding group gr as a bit mask over
// tracks, groups and auxes. It is refreshed on slow updates.
func (m *Mixer) GroupUsage(gr int) uint64 {
	return m.groupUsage[gr]
}

// SetLink attaches an expander link, or detaches with nil.
func (m *Mixer) SetLink(l *Link) error {
	if l == nil {
		m.link = nil
		m.send = &m.scratch
		m.log.Info("%s: expander detached", m.id)
		return nil
	}
	if len(l.Send.Sends) != m.cfg.Channels() || len(l.Send.GroupGains) != m.cfg.Groups ||
		len(l.Send.TrackGroups) != m.cfg.Tracks {
		return fault.Wrap(ErrLinkSize, fmsg.With(fmt.Sprintf("%d sends for %d channels", len(l.Send.Sends), m.cfg.Channels())))
	}
	m.link = l
	m.send = &l.Send
	m.log.Info("%s: expander attached", m.id)
	return nil
}

// Buses describes the audio ports.
func (m *Mixer) Buses() *bus.Configuration {
	c := &bus.Configuration{}
	for t := 0; t < m.cfg.Tracks; t++ {
		c.Add(bus.DirectionInput, 2, "Track "+fmt.Sprint(t+1))
	}
	c.Add(bus.DirectionInput, 2, "Chain")
	c.Add(bus.DirectionOutput, 2, "Main")
	for ch := 0; ch < m.cfg.Channels()+m.cfg.Auxes; ch++ {
		c.Add(bus.DirectionOutput, 2, "Direct "+m.channelName(ch))
	}
	return c
}

func (m *Mixer) channelName(ch int) string {
	switch {
	case ch < m.cfg.Tracks:
		return m.tracks[ch].Name
	case ch < m.cfg.Channels():
		return m.groups[ch-m.cfg.Tracks].Name
	default:
		return m.auxes[ch-m.cfg.Channels()].Name
	}
}

// OnReset restores every default: parameters, global state and strips.
func (m *Mixer) OnReset() {
	m.params.ResetAll()
	m.global.onReset()
	for _, s := range m.allStrips() {
		s.onReset(m.global, true)
	}
	m.master.onReset(m.global, true)
	m.ResetNonJSON()
	m.log.Info("%s: reset", m.id)
}

// ResetNonJSON rebuilds derived state after a reset or a load: gain
// matrices and slewers go to zero and fades restart from the mute
// parameters.
func (m *Mixer) ResetNonJSON() {
	g := m.global
	m.syncOldFaders()
	for c, s := range m.tracks {
		s.resetNonJSON(g, !m.muted(c))
	}
	for gr, s := range m.groups {
		s.resetNonJSON(g, !m.muted(m.cfg.Tracks+gr))
	}
	ret := m.returns()
	for a, s := range m.auxes {
		s.resetNonJSON(g, !ret.Mute[a])
	}
	m.master.resetNonJSON(g, m.params.Value(m.layout.MasterMute) < 0.5)
	m.dry.Reset()
	for i := range m.muteTrig {
		m.muteTrig[i] = schmitt{}
		m.soloTrig[i] = schmitt{}
	}
	m.masterMuteTrig = schmitt{}
	g.Solo.clear()
	m.counter = 0
}

// OnSampleRateChange updates everything that depends on the sample rate.
func (m *Mixer) OnSampleRateChange(sr float32) {
	if sr <= 0 {
		return
	}
	m.sampleRate = sr
	m.global.SampleTime = 1 / sr
	for _, s := range m.allStrips() {
		s.setSampleTime(m.global.SampleTime)
	}
	m.master.setSampleRate(float64(sr))
	m.log.Info("%s: sample rate %.0f Hz", m.id, sr)
}

// SampleRate returns the current sample rate.
func (m *Mixer) SampleRate() float32 {
	return m.sampleRate
}

func (m *Mixer) allStrips() []*Strip {
	all := make([]*Strip, 0, len(m.tracks)+len(m.groups)+len(m.auxes))
	all = append(all, m.tracks...)
	all = append(all, m.groups...)
	return append(all, m.auxes...)
}

func (m *Mixer) muted(c int) bool {
	return m.params.Value(m.layout.Mute+c) >= 0.5
}

func (m *Mixer) returns() *AuxReturnMessage {
	if m.link != nil && m.link.Connected {
		return &m.link.Return
	}
	return &m.noReturn
}

// trackGroup returns the group of track t, 1..N, or 0 for none.
func (m *Mixer) trackGroup(t int) int {
	return m.validGroup(int(m.params.Value(m.layout.Group+t) + 0.5))
}

func (m *Mixer) validGroup(gr int) int {
	if gr < 1 || gr > m.cfg.Groups {
		return 0
	}
	return gr
}

// refresh reports whether channel ch refreshes its controls this sample
// and the time step to use.
func (m *Mixer) refresh(ch int) (bool, float32) {
	dt := m.global.SampleTime
	if !m.global.Eco.Has(ch) {
		return true, dt
	}
	if (m.counter+uint64(ch))%EcoDecimation != 0 {
		return false, 0
	}
	return true, dt * EcoDecimation
}

func (m *Mixer) controls(c int, vol, pan CV) Controls {
	lay := m.layout
	return Controls{
		Fader: m.params.Value(lay.Fader + c),
		Pan:   m.params.Value(lay.Pan + c),
		Mute:  m.muted(c),
		VolCV: vol,
		PanCV: pan,
	}
}

// cvButton drives a toggle parameter from a CV input. Momentary mode flips
// the parameter on each rising edge; gate mode follows the trigger.
func (m *Mixer) cvButton(tr *schmitt, cv CV, idx int) {
	if !cv.Connected {
		return
	}
	edge := tr.process(cv.V)
	if m.global.MomentaryCvButtons {
		if edge {
			m.params.Set(idx, 1-float64(m.params.Value(idx)))
		}
		return
	}
	on := 0.0
	if tr.high {
		on = 1
	}
	m.params.Set(idx, on)
}

func (m *Mixer) cvButtons(in *Inputs) {
	lay := m.layout
	for t := range m.tracks {
		m.cvButton(&m.muteTrig[t], in.Tracks[t].MuteCV, lay.Mute+t)
		m.cvButton(&m.soloTrig[t], in.Tracks[t].SoloCV, lay.Solo+t)
	}
	for gr := range m.groups {
		c := m.cfg.Tracks + gr
		m.cvButton(&m.muteTrig[c], in.Groups[gr].MuteCV, lay.Mute+c)
		m.cvButton(&m.soloTrig[c], in.Groups[gr].SoloCV, lay.Solo+c)
	}
	m.cvButton(&m.masterMuteTrig, in.Master.MuteCV, lay.MasterMute)
}

func (m *Mixer) resolveSolo(ret *AuxReturnMessage) {
	lay := m.layout
	si := &m.solo
	for t := range si.TrackSolo {
		si.TrackSolo[t] = m.params.Value(lay.Solo+t) >= 0.5
		si.TrackGroup[t] = m.trackGroup(t)
	}
	for gr := range si.GroupSolo {
		si.GroupSolo[gr] = m.params.Value(lay.Solo+m.cfg.Tracks+gr) >= 0.5
	}
	for a := range si.AuxSolo {
		si.AuxSolo[a] = ret.Solo[a]
	}
	m.global.Solo.Resolve(m.global, *si)
}

// Process runs one sample. in and out must be sized for the mixer
// configuration.
func (m *Mixer) Process(in *Inputs, out *Outputs) {
	g := m.global
	g.syncLinkedFaders(m.params, m.layout.Fader)
	m.cvButtons(in)

	ret := m.returns()
	m.resolveSolo(ret)

	m.mix.Clear()
	for i := range m.groupIn {
		m.groupIn[i].Clear()
	}
	if !m.dry.Settled(g.Solo.Dry) {
		m.dry.Process(g.SampleTime, g.Solo.Dry)
	}

	for t := range m.tracks {
		m.processTrack(t, &in.Tracks[t], out)
	}
	for a := range m.auxes {
		m.processAux(a, ret, &in.Auxes[a], out)
	}
	for gr := range m.groups {
		m.processGroup(gr, &in.Groups[gr], out)
	}

	lay := m.layout
	out.Main = m.master.process(g, Frame(m.mix), in.Master, MasterControls{
		Fader: m.params.Value(lay.MasterFader),
		Mute:  m.params.Value(lay.MasterMute) >= 0.5,
		Dim:   m.params.Value(lay.MasterDim) >= 0.5,
		Mono:  m.params.Value(lay.MasterMono) >= 0.5,
	})

	m.fillSlow(ret)
	m.counter++
}

// outputs writes the direct out and insert send of a strip.
func (m *Mixer) outputs(s *Strip, out *Outputs) {
	l, r := s.Taps.Get(bus.Select(m.global.DirectOutsMode, s.DirectOutsMode))
	out.Direct[s.Channel] = Frame{l, r}
	out.InsertSends[s.Channel] = s.InsertSend
}

func (m *Mixer) auxSend(s *Strip) {
	l, r := s.Taps.Get(bus.Select(m.global.AuxSendsMode, s.AuxSendsMode))
	m.send.Sends[s.Channel] = Frame{l, r}
}

// fillSlow refreshes the slow part of the send message and the group
// usage masks every SlowDecimation samples.
func (m *Mixer) fillSlow(ret *AuxReturnMessage) {
	s := m.send
	g := m.global
	s.UpdateSlow = m.counter%SlowDecimation == 0
	if !s.UpdateSlow {
		return
	}
	for c := range s.Names {
		s.Names[c] = m.strip(c).Name
	}
	for t := range s.TrackGroups {
		s.TrackGroups[t] = m.trackGroup(t)
	}
	s.Move = m.move
	s.EcoMask = g.Eco.Mask()
	s.GroupsControlTrackSendLevels = g.GroupsControlTrackSendLevels

	s.MuteGroupedReturn = 0
	for a, st := range m.auxes {
		s.AuxFadeGains[a] = float32(st.Fade.Gain)
		gr := m.validGroup(ret.Group[a])
		if gr > 0 && g.GroupedAuxReturnFeedbackProtection {
			s.MuteGroupedReturn |= 1 << uint((gr-1)*MaxAuxes+a)
		}
	}

	for gr := range m.groupUsage {
		m.groupUsage[gr] = 0
	}
	for t := range m.tracks {
		if gr := m.trackGroup(t); gr > 0 {
			m.groupUsage[gr-1] |= 1 << uint(t)
		}
	}
	for a, st := range m.auxes {
		if gr := m.validGroup(ret.Group[a]); gr > 0 {
			m.groupUsage[gr-1] |= 1 << uint(st.Channel)
		}
	}
}
