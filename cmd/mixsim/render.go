package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/justyntemme/mixengine/pkg/dsp/oscillator"
	"github.com/justyntemme/mixengine/pkg/framework/debug"
	"github.com/justyntemme/mixengine/pkg/framework/param"
	"github.com/justyntemme/mixengine/pkg/midi"
	"github.com/justyntemme/mixengine/pkg/mixer"
)

type paramEvent struct {
	offset int64
	table  *param.Table
	index  int
	value  float64
}

type source struct {
	track  int
	stereo bool
	left   *oscillator.Oscillator
	right  *oscillator.Oscillator
}

// probe reads one strip for the CSV.
type probe struct {
	name string
	fade func() float64
	gain func() float32
}

type renderer struct {
	sc  *Scenario
	cfg mixer.Config
	sr  float32
	log *debug.Logger

	m    *mixer.Mixer
	e    *mixer.AuxExpander
	link *mixer.Link
	in   *mixer.Inputs
	out  *mixer.Outputs
	ein  mixer.ExpanderInputs
	eout mixer.ExpanderOutputs

	sources []source
	params  []paramEvent
	queue   *midi.EventQueue
	surface *midi.Map
	probes  []probe

	samples int64
}

// Numbers of the default surface.
const (
	masterFaderCC  uint8 = 70
	masterMuteNote uint8 = 127
	panCCOffset    uint8 = 32
	soloNoteOffset uint8 = 32
)

// surfaceBindings is the default control surface on MIDI channel 1: CC n
// moves fader n+1, CC 32+n its pan, note n toggles its mute and note 32+n
// its solo.
func surfaceBindings(cfg mixer.Config, lay mixer.Layout) []midi.Binding {
	n := cfg.Channels()
	var bs []midi.Binding
	bs = append(bs, midi.Run(midi.KindCC, 0, 0, lay.Fader, n, midi.ModeAbsolute)...)
	bs = append(bs, midi.Run(midi.KindCC, 0, panCCOffset, lay.Pan, n, midi.ModeAbsolute)...)
	bs = append(bs, midi.Run(midi.KindNote, 0, 0, lay.Mute, n, midi.ModeToggle)...)
	bs = append(bs, midi.Run(midi.KindNote, 0, soloNoteOffset, lay.Solo, n, midi.ModeToggle)...)
	bs = append(bs,
		midi.Binding{Kind: midi.KindCC, Number: masterFaderCC, Param: lay.MasterFader},
		midi.Binding{Kind: midi.KindNote, Number: masterMuteNote, Param: lay.MasterMute, Mode: midi.ModeToggle},
	)
	return bs
}

func newRenderer(sc *Scenario, cfg mixer.Config, sr float32, log *debug.Logger) (*renderer, error) {
	opts := []mixer.Option{mixer.WithLogger(log), mixer.WithSampleRate(sr)}
	m, err := mixer.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	r := &renderer{
		sc:    sc,
		cfg:   cfg,
		sr:    sr,
		log:   log.With("render"),
		m:     m,
		in:    mixer.NewInputs(cfg),
		out:   mixer.NewOutputs(cfg),
		queue: midi.NewEventQueue(),
	}
	if sc.Eco != nil && !*sc.Eco {
		m.Global().Eco.SetMask(0)
	}
	if sc.Expander {
		if r.e, err = mixer.NewAuxExpander(cfg, opts...); err != nil {
			return nil, err
		}
		r.link = mixer.NewLink(cfg)
		if err := m.SetLink(r.link); err != nil {
			return nil, err
		}
	}
	r.surface = midi.NewMap(m.Params(), r.log, surfaceBindings(cfg, m.Layout())...)

	for i, t := range sc.Tones {
		if t.Track > cfg.Tracks {
			return nil, invalid("tone %d: track %d of %d", i, t.Track, cfg.Tracks)
		}
		s := source{
			track:  t.Track - 1,
			stereo: t.Stereo,
			left:   oscillator.New(t.shape, float64(sr), t.Freq, t.Amp, t.Seed),
		}
		if t.Stereo {
			s.right = oscillator.New(t.shape, float64(sr), t.Freq, t.Amp, t.Seed+1)
			s.right.SetPhase(0.25)
		}
		r.sources = append(r.sources, s)
	}

	for i, e := range sc.Events {
		off := int64(math.Round(e.At * float64(sr)))
		if len(e.MIDI) > 0 {
			msg := make(gomidi.Message, len(e.MIDI))
			for j, b := range e.MIDI {
				msg[j] = byte(b)
			}
			r.queue.Add(midi.Event{Offset: off, Msg: msg})
			continue
		}
		tbl, idx, err := r.lookup(e.Param)
		if err != nil {
			return nil, fault.Wrap(err, fmsg.With(fmt.Sprintf("event %d", i)))
		}
		r.params = append(r.params, paramEvent{offset: off, table: tbl, index: idx, value: *e.Value})
	}
	sort.SliceStable(r.params, func(i, j int) bool {
		return r.params[i].offset < r.params[j].offset
	})

	for _, name := range sc.Record {
		p, err := r.probe(name)
		if err != nil {
			return nil, err
		}
		r.probes = append(r.probes, p)
	}
	return r, nil
}

// lookup finds a parameter in the mixer, then in the expander.
func (r *renderer) lookup(name string) (*param.Table, int, error) {
	idx, err := r.m.Params().Index(name)
	if err == nil {
		return r.m.Params(), idx, nil
	}
	if r.e != nil {
		if idx, eerr := r.e.Params().Index(name); eerr == nil {
			return r.e.Params(), idx, nil
		}
	}
	return nil, 0, err
}

// probe resolves a strip name: t1.., g1.., a1.. or m for the master.
func (r *renderer) probe(name string) (probe, error) {
	if name == "m" {
		ms := r.m.Master()
		return probe{
			name: name,
			fade: func() float64 { return ms.Fade.Gain },
			gain: ms.FaderGain,
		}, nil
	}
	if len(name) < 2 {
		return probe{}, invalid("record %q", name)
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 1 {
		return probe{}, invalid("record %q", name)
	}
	var s *mixer.Strip
	switch name[0] {
	case 't':
		if n <= r.cfg.Tracks {
			s = r.m.Track(n - 1)
		}
	case 'g':
		if n <= r.cfg.Groups {
			s = r.m.Group(n - 1)
		}
	case 'a':
		if n <= r.cfg.Auxes {
			s = r.m.Aux(n - 1)
		}
	}
	if s == nil {
		return probe{}, invalid("record %q: no such strip", name)
	}
	return probe{
		name: name,
		fade: func() float64 { return s.Fade.Gain },
		gain: s.EffectiveGain,
	}, nil
}

func (r *renderer) header() []string {
	h := []string{"sample", "time", "main_l", "main_r"}
	for _, p := range r.probes {
		h = append(h, p.name+"_fade", p.name+"_gain")
	}
	return h
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// step applies the events due at sample n and runs one sample.
func (r *renderer) step(n int64) {
	for len(r.params) > 0 && r.params[0].offset <= n {
		pe := r.params[0]
		pe.table.Set(pe.index, pe.value)
		r.params = r.params[1:]
	}
	if !r.queue.IsEmpty() {
		for _, ev := range r.queue.Due(n + 1) {
			if !r.surface.Handle(ev.Msg) {
				r.log.Debug("unhandled %s", ev)
			}
		}
	}

	for _, s := range r.sources {
		ti := &r.in.Tracks[s.track]
		ti.Connected = true
		ti.Stereo = s.stereo
		ti.Signal[0] = s.left.Next()
		if s.stereo {
			ti.Signal[1] = s.right.Next()
		}
	}

	r.m.Process(r.in, r.out)
	if r.e != nil {
		// sends come straight back as returns
		r.ein.Returns = r.eout.Sends
		r.e.Process(r.link, &r.ein, &r.eout)
	}
}

func (r *renderer) run(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.header()); err != nil {
		return fault.Wrap(err, fmsg.With("write csv"))
	}
	total := int64(math.Ceil(r.sc.Duration * float64(r.sr)))
	every := int64(r.sc.Every)
	row := make([]string, 0, 4+2*len(r.probes))
	for n := int64(0); n < total; n++ {
		r.step(n)
		r.samples++
		if n%every != 0 {
			continue
		}
		row = append(row[:0],
			strconv.FormatInt(n, 10),
			ff(float64(n)/float64(r.sr)),
			ff(float64(r.out.Main[0])),
			ff(float64(r.out.Main[1])),
		)
		for _, p := range r.probes {
			row = append(row, ff(p.fade()), ff(float64(p.gain())))
		}
		if err := cw.Write(row); err != nil {
			return fault.Wrap(err, fmsg.With("write csv"))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fault.Wrap(err, fmsg.With("write csv"))
	}
	return nil
}
