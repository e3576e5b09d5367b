package mixer

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/justyntemme/mixengine/pkg/framework/state"
)

func configure(m *Mixer) {
	g := m.Global()
	g.FilterPos = FilterPostInsert
	g.ChainMode = ChainPost
	g.Display = Display{Cloaked: true, DispColor: -3, Details: 2}
	g.SymmetricalFade = true
	g.SetLinked(2, true)

	t0 := m.Track(0)
	t0.Name = "BASS"
	t0.FadeRate = 4
	t0.Settings.GainAdjust = 0.5
	t0.SetLPFCutoff(5000)
	m.Group(1).Name = "VOX"

	m.Master().Clipping = ClipHard
	m.Master().SetDimGain(0.5)
	m.Master().Name = "MAIN"

	m.Params().Set(m.Layout().Fader+1, 0.6)
	m.Params().Set(m.Layout().Pan, 0.2)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	src, in, out := newTestMixer(t, small)
	configure(src)
	src.ResetNonJSON()

	var buf bytes.Buffer
	if err := src.StateManager().Save(&buf); err != nil {
		t.Fatal(err)
	}

	dst, _, out2 := newTestMixer(t, small)
	if err := dst.StateManager().Load(&buf); err != nil {
		t.Fatal(err)
	}

	want := src.StateManager().Snapshot()
	got := dst.StateManager().Snapshot()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot differs after load:\n got  %v\n want %v", got.Data, want.Data)
	}

	connect(in, 0, 1)
	connect(in, 1, 1)
	for i := 0; i < settle; i++ {
		src.Process(in, out)
		dst.Process(in, out2)
	}
	if out.Main != out2.Main {
		t.Errorf("main out differs: %v vs %v", out.Main, out2.Main)
	}
	if !dst.Track(0).LPFOn() {
		t.Error("loaded LPF cutoff should be active")
	}
}

func TestLoadTolerates(t *testing.T) {
	tests := []struct {
		name string
		data state.Values
	}{
		{"UnknownKeys", state.Values{"noSuchKey": 1.0, "id_t9_name": "X"}},
		{"WrongTypes", state.Values{"panLawMono": "loud", "id_t1_name": 7.0, "faders": "none", "linkBitMask": -1.0}},
		{"Empty", state.Values{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestMixer(t, small)
			configure(m)
			sm := m.StateManager()
			before := sm.Snapshot()

			doc := before
			doc.Data = tt.data
			doc.Params = nil
			if err := sm.Apply(doc); err != nil {
				t.Fatal(err)
			}
			if after := sm.Snapshot(); !reflect.DeepEqual(after, before) {
				t.Errorf("state changed:\n got  %v\n want %v", after.Data, before.Data)
			}
		})
	}
}

func TestLoadClampsFadeSettings(t *testing.T) {
	m, in, out := newTestMixer(t, small)
	m.Global().SymmetricalFade = true
	doc := m.StateManager().Snapshot()
	doc.Params = nil
	doc.Data = state.Values{
		"id_t0_fadeRate":    1.0,
		"id_t0_fadeProfile": 5.0,
		"id_t1_fadeRate":    -3.0,
		"fadeProfile":       -7.0,
	}
	if err := m.StateManager().Apply(doc); err != nil {
		t.Fatal(err)
	}

	if p := m.Track(0).FadeProfile; p != 1 {
		t.Errorf("track profile = %f, want 1", p)
	}
	if r := m.Track(1).FadeRate; r != 0 {
		t.Errorf("track rate = %f, want 0", r)
	}
	if p := m.Master().FadeProfile; p != -1 {
		t.Errorf("master profile = %f, want -1", p)
	}

	connect(in, 0, 1)
	m.Params().Set(m.Layout().Mute, 1)
	lowest := 1.0
	for i := 0; i < 44200; i++ {
		m.Process(in, out)
		lowest = min(lowest, m.Track(0).Fade.Gain)
	}
	if lowest < 0 {
		t.Errorf("fade gain went to %f", lowest)
	}
	if g := m.Track(0).Fade.Gain; g != 0 {
		t.Errorf("fade gain = %f after a full fade, want 0", g)
	}
}
