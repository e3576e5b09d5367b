package mixer

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Southclaws/fault/ftag"
)

func TestWrite2Read2RoundTrip(t *testing.T) {
	m, in, out := newTestMixer(t, small)
	tbl, lay := m.Params(), m.Layout()
	src := m.Track(1)
	src.FadeRate = 2.5
	src.FadeProfile = -0.4
	src.Settings.GainAdjust = 1.5
	src.SetHPFCutoff(80)
	src.PanCvLevel = 0.25
	src.Name = "KICK"
	m.Global().SetLinked(1, true)
	tbl.Set(lay.Fader+1, 0.7)
	tbl.Set(lay.Pan+1, 0.3)
	tbl.Set(lay.Mute+1, 1)
	tbl.Set(lay.Group+1, 2)
	connect(in, 1, 1)
	run(m, in, out, 100)

	buf, err := m.CopyTrack(1, true)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Source != m.ID() {
		t.Error("buffer should carry the mixer id")
	}
	if err := m.PasteTrack(3, buf); err != nil {
		t.Fatal(err)
	}
	got, _ := m.CopyTrack(3, true)
	if !reflect.DeepEqual(got, buf) {
		t.Errorf("round trip differs:\n got  %+v\n want %+v", got, buf)
	}
	if !m.Track(3).HPFOn() {
		t.Error("pasted HPF cutoff should be applied to the filters")
	}
}

func TestPasteLevelOneKeepsParams(t *testing.T) {
	m, _, _ := newTestMixer(t, small)
	tbl, lay := m.Params(), m.Layout()
	m.Track(0).FadeRate = 3
	tbl.Set(lay.Fader, 0.2)

	buf, _ := m.CopyTrack(0, false)
	if err := m.PasteTrack(2, buf); err != nil {
		t.Fatal(err)
	}
	if m.Track(2).FadeRate != 3 {
		t.Errorf("fade rate = %f", m.Track(2).FadeRate)
	}
	if tbl.Value(lay.Fader+2) != 1 {
		t.Error("level 1 paste must not change the fader")
	}
}

func TestPasteErrors(t *testing.T) {
	m, _, _ := newTestMixer(t, small)
	trackBuf, _ := m.CopyTrack(0, true)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"KindMismatch", m.PasteGroup(0, trackBuf), ErrKindMismatch},
		{"TrackRange", m.PasteTrack(small.Tracks, trackBuf), ErrChannelRange},
		{"GroupRange", m.PasteGroup(-1, trackBuf), ErrChannelRange},
		{"MoveRange", m.MoveTrack(0, 99), ErrChannelRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Fatalf("err = %v, want %v", tt.err, tt.want)
			}
			if ftag.Get(tt.err) != ftag.InvalidArgument {
				t.Errorf("tag = %v", ftag.Get(tt.err))
			}
		})
	}
}

func TestGroupCopyPaste(t *testing.T) {
	m, _, _ := newTestMixer(t, small)
	m.Group(0).FadeRate = 1.5
	m.Group(0).Name = "DRUM"
	m.Params().Set(m.Layout().Fader+small.Tracks, 0.4)

	buf, err := m.CopyGroup(0, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.PasteGroup(1, buf); err != nil {
		t.Fatal(err)
	}
	if m.Group(1).Name != "DRUM" || m.Group(1).FadeRate != 1.5 {
		t.Errorf("group 1 = %q %f", m.Group(1).Name, m.Group(1).FadeRate)
	}
	if v := m.Params().Value(m.Layout().Fader + small.Tracks + 1); v != float32(0.4) {
		t.Errorf("fader = %f", v)
	}
}

func TestMoveTrack(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		names    []string
	}{
		{"Down", 0, 2, []string{"B", "C", "A", "D"}},
		{"Up", 3, 1, []string{"A", "D", "B", "C"}},
		{"Same", 2, 2, []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, in, out := newTestMixer(t, small)
			tbl, lay := m.Params(), m.Layout()
			faders := map[string]float32{"A": 0.1, "B": 0.2, "C": 0.3, "D": 0.4}
			for i, n := range []string{"A", "B", "C", "D"} {
				m.Track(i).Name = n
				tbl.Set(lay.Fader+i, float64(faders[n]))
			}
			m.Global().SetLinked(0, true)
			m.Process(in, out)

			if err := m.MoveTrack(tt.from, tt.to); err != nil {
				t.Fatal(err)
			}
			m.Process(in, out)
			for i, n := range tt.names {
				if m.Track(i).Name != n {
					t.Errorf("track %d = %q, want %q", i, m.Track(i).Name, n)
				}
				if got := tbl.Value(lay.Fader + i); got != faders[n] {
					t.Errorf("track %d fader = %f, want %f", i, got, faders[n])
				}
			}
		})
	}
}
