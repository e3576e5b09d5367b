package mixer

import (
	"bytes"
	"reflect"
	"testing"
)

type rig struct {
	m    *Mixer
	e    *AuxExpander
	l    *Link
	in   *Inputs
	out  *Outputs
	ein  ExpanderInputs
	eout ExpanderOutputs
}

func newRig(t *testing.T) *rig {
	t.Helper()
	m, in, out := newTestMixer(t, small)
	e, err := NewAuxExpander(small)
	if err != nil {
		t.Fatalf("NewAuxExpander: %v", err)
	}
	l := NewLink(small)
	if err := m.SetLink(l); err != nil {
		t.Fatalf("SetLink: %v", err)
	}
	return &rig{m: m, e: e, l: l, in: in, out: out}
}

func (r *rig) run(n int) {
	for i := 0; i < n; i++ {
		r.m.Process(r.in, r.out)
		r.e.Process(r.l, &r.ein, &r.eout)
	}
}

func TestSetLinkSize(t *testing.T) {
	m, _, _ := newTestMixer(t, small)
	if err := m.SetLink(NewLink(Config{Tracks: 8, Groups: 2, Auxes: 4})); err == nil {
		t.Fatal("a link for another size should be rejected")
	}
	if err := m.SetLink(nil); err != nil {
		t.Fatal(err)
	}
}

func TestAuxSends(t *testing.T) {
	r := newRig(t)
	tbl, lay := r.e.Params(), r.e.Layout()
	tbl.Set(r.e.SendIndex(0, 0), 1)
	tbl.Set(r.e.SendIndex(0, 1), 0.5)
	tbl.Set(r.e.SendIndex(0, 2), 1)
	tbl.Set(lay.GlobalSend+2, 0.5)
	tbl.Set(r.e.SendIndex(0, 3), 1)
	tbl.Set(lay.SendMute+3, 1)
	connect(r.in, 0, 1)
	r.run(settle)

	src := r.l.Send.Sends[0][0]
	if src == 0 {
		t.Fatal("track 0 should send a signal")
	}
	tests := []struct {
		name string
		aux  int
		want float32
	}{
		{"Unity", 0, src},
		{"SendLevel", 1, src * 0.25},
		{"GlobalLevel", 2, src * 0.25},
		{"Muted", 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.eout.Sends[tt.aux][0]; !near(got, tt.want, 1e-4) {
				t.Errorf("send %d = %f, want %f", tt.aux, got, tt.want)
			}
		})
	}
}

func TestGroupedReturnFeedbackProtection(t *testing.T) {
	for _, protect := range []bool{false, true} {
		r := newRig(t)
		r.m.Global().GroupedAuxReturnFeedbackProtection = protect
		r.m.Params().Set(r.m.Layout().Group, 1)
		connect(r.in, 0, 1)

		tbl, lay := r.e.Params(), r.e.Layout()
		grp := small.Tracks
		tbl.Set(r.e.SendIndex(grp, 0), 1)
		tbl.Set(r.e.SendIndex(grp, 1), 1)
		tbl.Set(lay.RetGroup, 1)
		r.run(settle)

		if r.eout.Sends[1][0] == 0 {
			t.Fatal("group 1 should reach aux B")
		}
		muted := r.eout.Sends[0][0] == 0
		if muted != protect {
			t.Errorf("protect=%v: send to aux A = %f", protect, r.eout.Sends[0][0])
		}
		if r.m.GroupUsage(0)&(1<<uint(r.m.Aux(0).Channel)) == 0 {
			t.Error("aux A return should count as a user of group 1")
		}
	}
}

func TestGroupsControlTrackSends(t *testing.T) {
	r := newRig(t)
	r.m.Global().GroupsControlTrackSendLevels = true
	r.m.Params().Set(r.m.Layout().Group, 1)
	r.m.Params().Set(r.m.Layout().Mute+small.Tracks, 1)
	r.e.Params().Set(r.e.SendIndex(0, 0), 1)
	connect(r.in, 0, 1)
	r.run(settle)

	if got := r.eout.Sends[0][0]; !near(got, 0, 1e-4) {
		t.Errorf("muting the group should close its tracks' sends, got %f", got)
	}
}

func TestMoveTrackMovesSends(t *testing.T) {
	r := newRig(t)
	tbl := r.e.Params()
	tbl.Set(r.e.SendIndex(0, 0), 0.3)
	tbl.Set(r.e.SendIndex(1, 0), 0.6)
	r.m.Track(0).Name = "ONE"
	r.m.Track(1).Name = "TWO"
	r.run(10)

	if err := r.m.MoveTrack(0, 1); err != nil {
		t.Fatal(err)
	}
	r.run(SlowDecimation)

	if got := tbl.Value(r.e.SendIndex(0, 0)); got != float32(0.6) {
		t.Errorf("send 0 = %f, want 0.6", got)
	}
	if got := tbl.Value(r.e.SendIndex(1, 0)); got != float32(0.3) {
		t.Errorf("send 1 = %f, want 0.3", got)
	}
	if n := r.e.Names()[0]; n != "TWO" {
		t.Errorf("expander name 0 = %q", n)
	}

	// a repeated slow update must not move again
	r.run(SlowDecimation)
	if got := tbl.Value(r.e.SendIndex(0, 0)); got != float32(0.6) {
		t.Errorf("send moved twice: %f", got)
	}
}

func TestReturnsOneSampleLate(t *testing.T) {
	r := newRig(t)
	r.run(settle)
	if r.out.Main != (Frame{}) {
		t.Fatalf("silent mixer produced %v", r.out.Main)
	}

	r.ein.Returns[0] = Frame{1, 1}
	r.run(1)
	if r.out.Main != (Frame{}) {
		t.Errorf("return heard in the same sample: %v", r.out.Main)
	}
	r.ein.Returns[0] = Frame{}
	r.run(1)
	if r.out.Main[0] < 0.9 || r.out.Main[1] < 0.9 {
		t.Errorf("return should arrive one sample later, got %v", r.out.Main)
	}
}

func TestReturnControls(t *testing.T) {
	r := newRig(t)
	r.m.Global().AuxReturnsSolosMuteDry = true
	r.m.Master().Clipping = ClipHard
	tbl, lay := r.e.Params(), r.e.Layout()
	tbl.Set(lay.RetMute+1, 1)
	tbl.Set(lay.RetSolo+2, 1)
	r.ein.Returns[1] = Frame{1, 1}
	r.ein.Returns[2] = Frame{2, 2}
	r.in.Tracks[0] = TrackInput{Connected: true, Signal: Frame{3, 3}}
	r.run(settle)

	// aux C solos and mutes the dry mix; aux B is muted anyway
	if got := r.out.Main[0]; !near(got, 2, 1e-4) {
		t.Errorf("main = %f, want the soloed return only", got)
	}
	if !r.l.Return.Mute[1] || !r.l.Return.Solo[2] {
		t.Error("return flags not published")
	}
}

func TestReturnFilters(t *testing.T) {
	r := newRig(t)
	r.e.SetReturnHPF(0, 1000)
	r.ein.Returns[0] = Frame{1, 1}
	r.ein.Returns[1] = Frame{1, 1}
	r.run(settle)

	if got := r.l.Return.Returns[0][0]; !near(got, 0, 1e-3) {
		t.Errorf("high-passed DC = %f, want 0", got)
	}
	if got := r.l.Return.Returns[1][0]; got != 1 {
		t.Errorf("unfiltered return = %f, want 1", got)
	}
}

func TestNoExpander(t *testing.T) {
	m, in, out := newTestMixer(t, small)
	run(m, in, out, settle)
	a := m.Aux(0)
	if !near(a.FaderGain(), 1, 1e-6) {
		t.Errorf("aux fader gain = %f, want unity", a.FaderGain())
	}
	if a.Name != "A" {
		t.Errorf("aux name = %q", a.Name)
	}
	if out.Main != (Frame{}) {
		t.Errorf("main = %v, want silence", out.Main)
	}

	r := newRig(t)
	r.l.Connected = false
	r.ein.Returns[0] = Frame{1, 1}
	connect(r.in, 0, 1)
	r.e.Params().Set(r.e.SendIndex(0, 0), 1)
	r.run(settle)
	if r.eout.Sends[0] != (Frame{}) {
		t.Errorf("disconnected link should silence sends, got %v", r.eout.Sends[0])
	}
}

func TestAuxSettingsReachMixer(t *testing.T) {
	r := newRig(t)
	r.e.Aux[1].Name = "VERB"
	r.e.Aux[1].FadeRate = 2
	r.run(2)

	if n := r.m.Aux(1).Name; n != "VERB" {
		t.Errorf("aux name = %q", n)
	}
	if fr := r.m.Aux(1).FadeRate; fr != 2 {
		t.Errorf("aux fade rate = %f", fr)
	}
}

func TestExpanderSaveLoad(t *testing.T) {
	src, err := NewAuxExpander(small)
	if err != nil {
		t.Fatal(err)
	}
	src.Aux[1].Name = "VERB"
	src.Aux[1].FadeProfile = -1
	src.SetReturnLPF(2, 3000)
	src.Params().Set(src.SendIndex(3, 1), 0.4)

	var buf bytes.Buffer
	if err := src.StateManager().Save(&buf); err != nil {
		t.Fatal(err)
	}
	dst, _ := NewAuxExpander(small)
	if err := dst.StateManager().Load(&buf); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(dst.StateManager().Snapshot(), src.StateManager().Snapshot()) {
		t.Error("expander state differs after load")
	}
}
