package mixer

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/justyntemme/mixengine/pkg/dsp/filter"
	"github.com/justyntemme/mixengine/pkg/dsp/gain"
	"github.com/justyntemme/mixengine/pkg/dsp/pan"
	"github.com/justyntemme/mixengine/pkg/framework/bus"
	"github.com/justyntemme/mixengine/pkg/framework/debug"
	"github.com/justyntemme/mixengine/pkg/framework/param"
	"github.com/justyntemme/mixengine/pkg/framework/state"
)

// ExpanderLayout holds the base indices of the expander parameters.
// Send is indexed channel*MaxAuxes+aux over tracks then groups; the others
// are indexed by aux.
type ExpanderLayout struct {
	Send       int
	GlobalSend int
	SendMute   int
	RetFader   int
	RetPan     int
	RetMute    int
	RetSolo    int
	RetGroup   int
}

// ExpanderInputs are the effect returns and return fader CVs for one
// sample.
type ExpanderInputs struct {
	Returns     [MaxAuxes]Frame
	ReturnVolCV [MaxAuxes]CV
}

// ExpanderOutputs are the aux sends for one sample.
type ExpanderOutputs struct {
	Sends [MaxAuxes]Frame
}

// AuxSettings are the per-aux options kept by the expander.
type AuxSettings struct {
	FadeRate       float32
	FadeProfile    float32
	DirectOutsMode bus.Mode
	PanLawStereo   pan.StereoLaw
	Name           string
	VUColor        int8
	DispColor      int8
}

type returnFilters struct {
	ids        string
	HPFCutoff  float32
	LPFCutoff  float32
	hpf        [2]filter.Highpass
	lpf        [2]filter.Biquad
	sampleTime float32
}

func (f *returnFilters) setHPF(hz float32) {
	f.HPFCutoff = hz
	for i := range f.hpf {
		f.hpf[i].SetCutoffFrequency(float64(hz * f.sampleTime))
	}
}

func (f *returnFilters) setLPF(hz float32) {
	f.LPFCutoff = hz
	for i := range f.lpf {
		f.lpf[i].SetCutoffFrequency(float64(hz * f.sampleTime))
	}
}

func (f *returnFilters) reset() {
	for i := range f.hpf {
		f.hpf[i].Reset()
		f.lpf[i].Reset()
	}
}

func (f *returnFilters) process(in Frame) Frame {
	if f.HPFCutoff >= MinHPFCutoffFreq {
		in[0] = f.hpf[0].Process(in[0])
		in[1] = f.hpf[1].Process(in[1])
	}
	if f.LPFCutoff <= MaxLPFCutoffFreq {
		in[0] = f.lpf[0].Process(in[0])
		in[1] = f.lpf[1].Process(in[1])
	}
	return in
}

// AuxExpander owns the aux send levels and the aux return controls. It
// sums the sends of the mixer into four aux buses and hands the effect
// returns back over the link.
type AuxExpander struct {
	id     uuid.UUID
	cfg    Config
	log    *debug.Logger
	params *param.Table
	layout ExpanderLayout

	Aux     [MaxAuxes]AuxSettings
	filters [MaxAuxes]returnFilters

	sendSlewers  []param.Slewer4
	globalSlewer param.Slewer4

	trackGroups   []int
	muteGrouped   uint64
	groupsControl bool
	lastMove      uint32
	names         []string

	counter uint64
}

func auxLetter(a int) string {
	return string(rune('A' + a))
}

// NewAuxExpander builds an expander for a mixer of size cfg.
func NewAuxExpander(cfg Config, opts ...Option) (*AuxExpander, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	e := &AuxExpander{
		id:          uuid.New(),
		cfg:         cfg,
		sendSlewers: make([]param.Slewer4, cfg.Channels()),
		trackGroups: make([]int, cfg.Tracks),
		names:       make([]string, cfg.Channels()),
	}
	e.log = o.logger.With("aux")
	e.buildParams()
	st := 1 / o.sampleRate
	for a := range e.filters {
		f := &e.filters[a]
		f.ids = "id_x" + strconv.Itoa(a) + "_"
		f.sampleTime = st
		for i := 0; i < 2; i++ {
			f.hpf[i] = *filter.NewHighpass(0.1)
			f.lpf[i] = *filter.NewLowpass(0.4)
		}
	}
	for c := range e.sendSlewers {
		e.sendSlewers[c].SetRiseFall(param.AntipopSlewFast, param.AntipopSlewFast)
	}
	e.globalSlewer.SetRiseFall(param.AntipopSlewFast, param.AntipopSlewFast)
	e.OnReset()
	e.log.Info("%s: created for %d channels", e.id, cfg.Channels())
	return e, nil
}

func (e *AuxExpander) buildParams() {
	n := e.cfg.Channels()
	tbl := param.NewTable(n*MaxAuxes + 7*MaxAuxes)
	id := uint32(0)
	add := func(b *param.Builder) int {
		return tbl.Add(b.Build())
	}
	next := func() uint32 {
		id++
		return id - 1
	}

	sendMax := gain.MaxPosition(IndividualAuxSendMaxLinearGain, IndividualAuxSendScalingExponent)
	sformat, sparse := faderFormatter(IndividualAuxSendScalingExponent)
	for c := 0; c < n; c++ {
		for a := 0; a < MaxAuxes; a++ {
			i := add(param.New(next(), channelKey(e.cfg, c)+"_send"+auxLetter(a)).
				Range(0, sendMax).Formatter(sformat, sparse))
			if c == 0 && a == 0 {
				e.layout.Send = i
			}
		}
	}

	globalMax := gain.MaxPosition(GlobalAuxSendMaxLinearGain, GlobalAuxSendScalingExponent)
	gformat, gparse := faderFormatter(GlobalAuxSendScalingExponent)
	retMax := gain.MaxPosition(GlobalAuxReturnMaxLinearGain, GlobalAuxReturnScalingExponent)
	rformat, rparse := faderFormatter(GlobalAuxReturnScalingExponent)
	groups := make([]string, e.cfg.Groups+1)
	groups[0] = "-"
	for gr := 1; gr <= e.cfg.Groups; gr++ {
		groups[gr] = strconv.Itoa(gr)
	}

	families := []struct {
		base  *int
		build func(a int) *param.Builder
	}{
		{&e.layout.GlobalSend, func(a int) *param.Builder {
			return param.New(next(), "send"+auxLetter(a)).Range(0, globalMax).Default(1).Formatter(gformat, gparse)
		}},
		{&e.layout.SendMute, func(a int) *param.Builder {
			return param.New(next(), "send"+auxLetter(a)+"_mute").Toggle()
		}},
		{&e.layout.RetFader, func(a int) *param.Builder {
			return param.New(next(), "ret"+auxLetter(a)+"_fader").Range(0, retMax).Default(1).Formatter(rformat, rparse)
		}},
		{&e.layout.RetPan, func(a int) *param.Builder {
			return param.New(next(), "ret"+auxLetter(a)+"_pan").Default(0.5)
		}},
		{&e.layout.RetMute, func(a int) *param.Builder {
			return param.New(next(), "ret"+auxLetter(a)+"_mute").Toggle()
		}},
		{&e.layout.RetSolo, func(a int) *param.Builder {
			return param.New(next(), "ret"+auxLetter(a)+"_solo").Toggle()
		}},
		{&e.layout.RetGroup, func(a int) *param.Builder {
			return param.Choice(next(), "ret"+auxLetter(a)+"_group", groups)
		}},
	}
	for _, f := range families {
		for a := 0; a < MaxAuxes; a++ {
			i := add(f.build(a))
			if a == 0 {
				*f.base = i
			}
		}
	}
	e.params = tbl
}

// ID returns the instance id.
func (e *AuxExpander) ID() uuid.UUID {
	return e.id
}

// Params returns the expander parameter table.
func (e *AuxExpander) Params() *param.Table {
	return e.params
}

// Layout returns the parameter indices.
func (e *AuxExpander) Layout() ExpanderLayout {
	return e.layout
}

// Names returns the track and group names last received from the mixer.
func (e *AuxExpander) Names() []string {
	return e.names
}

// SendIndex returns the parameter index of the send from channel c
// (tracks then groups) to aux a.
func (e *AuxExpander) SendIndex(c, a int) int {
	return e.layout.Send + c*MaxAuxes + a
}

// OnReset restores every default.
func (e *AuxExpander) OnReset() {
	e.params.ResetAll()
	for a := range e.Aux {
		e.Aux[a] = AuxSettings{
			DirectOutsMode: bus.DefaultMode,
			PanLawStereo:   pan.StereoBalanceEqualPower,
			Name:           defaultName(KindAux, a),
		}
		e.filters[a].setHPF(DefHPFCutoffFreq)
		e.filters[a].setLPF(DefLPFCutoffFreq)
	}
	e.ResetNonJSON()
}

// ResetNonJSON clears filter and slewer state.
func (e *AuxExpander) ResetNonJSON() {
	for a := range e.filters {
		e.filters[a].reset()
	}
	for c := range e.sendSlewers {
		e.sendSlewers[c].Reset()
	}
	e.globalSlewer.Reset()
	e.counter = 0
}

// OnSampleRateChange moves the return filters to the new rate.
func (e *AuxExpander) OnSampleRateChange(sr float32) {
	if sr <= 0 {
		return
	}
	for a := range e.filters {
		f := &e.filters[a]
		f.sampleTime = 1 / sr
		f.setHPF(f.HPFCutoff)
		f.setLPF(f.LPFCutoff)
	}
	e.log.Info("%s: sample rate %.0f Hz", e.id, sr)
}

// SetReturnHPF sets the high-pass cutoff of return a in Hz.
func (e *AuxExpander) SetReturnHPF(a int, hz float32) {
	e.filters[a].setHPF(hz)
}

// SetReturnLPF sets the low-pass cutoff of return a in Hz.
func (e *AuxExpander) SetReturnLPF(a int, hz float32) {
	e.filters[a].setLPF(hz)
}

// moveSends rotates the send rows of tracks the way Mixer.MoveTrack
// rotates the tracks.
func (e *AuxExpander) moveSends(from, to int) {
	if from < 0 || to < 0 || from >= e.cfg.Tracks || to >= e.cfg.Tracks || from == to {
		return
	}
	row := func(t int) [MaxAuxes]float32 {
		var r [MaxAuxes]float32
		for a := range r {
			r[a] = e.params.Value(e.SendIndex(t, a))
		}
		return r
	}
	setRow := func(t int, r [MaxAuxes]float32) {
		for a := range r {
			e.params.Set(e.SendIndex(t, a), float64(r[a]))
		}
	}
	saved, savedSlew := row(from), e.sendSlewers[from]
	step := 1
	if to < from {
		step = -1
	}
	for t := from; t != to; t += step {
		setRow(t, row(t+step))
		e.sendSlewers[t] = e.sendSlewers[t+step]
	}
	setRow(to, saved)
	e.sendSlewers[to] = savedSlew
	e.log.Info("%s: moved sends of track %d to %d", e.id, from+1, to+1)
}

func (e *AuxExpander) readSlow(s *AuxSendMessage) {
	copy(e.names, s.Names)
	copy(e.trackGroups, s.TrackGroups)
	e.muteGrouped = s.MuteGroupedReturn
	e.groupsControl = s.GroupsControlTrackSendLevels
	if s.Move.Seq != e.lastMove {
		e.lastMove = s.Move.Seq
		e.moveSends(s.Move.From, s.Move.To)
	}
}

// Process runs one sample: it sums the mixer sends into the aux buses and
// publishes the effect returns for the mixer's next sample. Without a
// connected link the sends are silent.
func (e *AuxExpander) Process(l *Link, in *ExpanderInputs, out *ExpanderOutputs) {
	out.Sends = [MaxAuxes]Frame{}
	if l == nil || !l.Connected {
		return
	}
	snd := &l.Send
	if snd.UpdateSlow {
		e.readSlow(snd)
	}
	dt := e.filters[0].sampleTime

	var sums [MaxAuxes]Frame
	tracks := e.cfg.Tracks
	for c := range e.sendSlewers {
		var target [MaxAuxes]float32
		for a := range target {
			target[a] = gain.Scale(e.params.Value(e.SendIndex(c, a)), IndividualAuxSendScalingExponent)
		}
		if c < tracks {
			if gr := e.trackGroups[c]; e.groupsControl && gr >= 1 && gr <= len(snd.GroupGains) {
				for a := range target {
					target[a] *= snd.GroupGains[gr-1]
				}
			}
		} else {
			gr := c - tracks
			for a := range target {
				if e.muteGrouped&(1<<uint(gr*MaxAuxes+a)) != 0 {
					target[a] = 0
				}
			}
		}
		sl := &e.sendSlewers[c]
		if !sl.Settled(target) {
			sl.Process(dt, target)
		}
		sig := snd.Sends[c]
		for a := range sums {
			sums[a][0] += sig[0] * sl.Out[a]
			sums[a][1] += sig[1] * sl.Out[a]
		}
	}

	var global [MaxAuxes]float32
	for a := range global {
		if e.params.Value(e.layout.SendMute+a) < 0.5 {
			global[a] = gain.Scale(e.params.Value(e.layout.GlobalSend+a), GlobalAuxSendScalingExponent)
		}
	}
	if !e.globalSlewer.Settled(global) {
		e.globalSlewer.Process(dt, global)
	}
	for a := range out.Sends {
		out.Sends[a] = Frame{sums[a][0] * e.globalSlewer.Out[a], sums[a][1] * e.globalSlewer.Out[a]}
	}

	ret := &l.Return
	lay := e.layout
	for a := 0; a < MaxAuxes; a++ {
		ret.Returns[a] = e.filters[a].process(in.Returns[a])
		ret.Fader[a] = e.params.Value(lay.RetFader + a)
		ret.Pan[a] = e.params.Value(lay.RetPan + a)
		ret.FaderCV[a] = in.ReturnVolCV[a]
		ret.Mute[a] = e.params.Value(lay.RetMute+a) >= 0.5
		ret.Solo[a] = e.params.Value(lay.RetSolo+a) >= 0.5
		ret.Group[a] = int(e.params.Value(lay.RetGroup+a) + 0.5)
		ret.FadeRate[a] = e.Aux[a].FadeRate
		ret.FadeProfile[a] = e.Aux[a].FadeProfile
	}
	ret.UpdateSlow = e.counter%SlowDecimation == 0
	if ret.UpdateSlow {
		for a := 0; a < MaxAuxes; a++ {
			ret.DirectOutsModes[a] = e.Aux[a].DirectOutsMode
			ret.StereoPanLaws[a] = e.Aux[a].PanLawStereo
			ret.Names[a] = e.Aux[a].Name
			ret.VUColors[a] = e.Aux[a].VUColor
			ret.DispColors[a] = e.Aux[a].DispColor
		}
	}
	e.counter++
}

var _ state.Persister = (*AuxExpander)(nil)

// DataToValues writes the aux settings and return filters.
func (e *AuxExpander) DataToValues(v state.Values) {
	for a := range e.Aux {
		ids := "id_a" + strconv.Itoa(a) + "_"
		s := &e.Aux[a]
		v.SetFloat(ids+"fadeRate", s.FadeRate)
		v.SetFloat(ids+"fadeProfile", s.FadeProfile)
		v.SetInt(ids+"directOutsMode", int64(s.DirectOutsMode))
		v.SetInt(ids+"panLawStereo", int64(s.PanLawStereo))
		v.SetString(ids+"name", s.Name)
		v.SetInt(ids+"vuColorThemeLocal", int64(s.VUColor))
		v.SetInt(ids+"dispColorLocal", int64(s.DispColor))

		f := &e.filters[a]
		v.SetFloat(f.ids+"hpfCutoffFreq", f.HPFCutoff)
		v.SetFloat(f.ids+"lpfCutoffFreq", f.LPFCutoff)
	}
}

// DataFromValues restores the aux settings and return filters.
func (e *AuxExpander) DataFromValues(v state.Values) {
	for a := range e.Aux {
		ids := "id_a" + strconv.Itoa(a) + "_"
		s := &e.Aux[a]
		v.Float(ids+"fadeRate", &s.FadeRate)
		v.Float(ids+"fadeProfile", &s.FadeProfile)
		clampFade(&s.FadeRate, &s.FadeProfile)
		var i8 int8
		if v.Int8(ids+"directOutsMode", &i8) {
			s.DirectOutsMode = bus.Mode(i8)
		}
		if v.Int8(ids+"panLawStereo", &i8) {
			s.PanLawStereo = pan.StereoLaw(i8)
		}
		v.String(ids+"name", &s.Name)
		v.Int8(ids+"vuColorThemeLocal", &s.VUColor)
		v.Int8(ids+"dispColorLocal", &s.DispColor)

		f := &e.filters[a]
		hz := f.HPFCutoff
		if v.Float(f.ids+"hpfCutoffFreq", &hz) {
			f.setHPF(hz)
		}
		hz = f.LPFCutoff
		if v.Float(f.ids+"lpfCutoffFreq", &hz) {
			f.setLPF(hz)
		}
	}
	e.log.Info("%s: state loaded", e.id)
}

// StateManager returns a manager that saves and loads this expander.
func (e *AuxExpander) StateManager() *state.Manager {
	return state.NewManager(e.params, e)
}
