package mixer

import (
	"math"
	"testing"

	"github.com/justyntemme/mixengine/pkg/framework/state"
)

func TestLinkedFaders(t *testing.T) {
	tests := []struct {
		name   string
		mode   LinkMode
		before map[int]float64 // fader values before linking
		move   float64         // new value of channel 0
		want   map[int]float32
	}{
		{
			name: "AbsoluteFollows",
			mode: LinkAbsolute,
			move: 0.5,
			want: map[int]float32{0: 0.5, 1: 1, 2: 0.5, 4: 0.5},
		},
		{
			name:   "RelativeKeepsOffset",
			mode:   LinkRelative,
			before: map[int]float64{2: 0.8, 4: 1.1},
			move:   0.9,
			want:   map[int]float32{0: 0.9, 1: 1, 2: 0.7, 4: 1.0},
		},
		{
			name:   "RelativeClampsLow",
			mode:   LinkRelative,
			before: map[int]float64{2: 0.2},
			move:   0.5,
			want:   map[int]float32{0: 0.5, 2: 0},
		},
		{
			name:   "RelativeClampsHigh",
			mode:   LinkRelative,
			before: map[int]float64{0: 0.5, 2: 1.2},
			move:   1,
			want:   map[int]float32{0: 1, 2: 1.2599},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, in, out := newTestMixer(t, small, WithLinkMode(tt.mode))
			tbl, lay := m.Params(), m.Layout()
			for c, v := range tt.before {
				tbl.Set(lay.Fader+c, v)
			}
			m.Process(in, out)

			g := m.Global()
			g.SetLinked(0, true)
			g.SetLinked(2, true)
			// the first group is channel 4
			g.SetLinked(4, true)
			tbl.Set(lay.Fader, tt.move)
			m.Process(in, out)

			for c, want := range tt.want {
				if got := tbl.Value(lay.Fader + c); math.Abs(float64(got-want)) > 1e-4 {
					t.Errorf("fader %d = %f, want %f", c, got, want)
				}
			}
		})
	}
}

func TestUnlinkedFaderDoesNotPropagate(t *testing.T) {
	m, in, out := newTestMixer(t, small)
	tbl, lay := m.Params(), m.Layout()
	m.Global().SetLinked(0, true)
	m.Global().SetLinked(2, true)
	tbl.Set(lay.Fader+1, 0.3)
	m.Process(in, out)
	if tbl.Value(lay.Fader) != 1 || tbl.Value(lay.Fader+2) != 1 {
		t.Error("moving an unlinked fader changed linked ones")
	}
}

func TestLinkedFaderReload(t *testing.T) {
	m, in, out := newTestMixer(t, small)
	tbl, lay := m.Params(), m.Layout()
	m.Global().SetLinked(0, true)
	m.Global().SetLinked(1, true)

	v := state.Values{}
	v.SetFloats("faders", []float32{1, 0.3, 0.6})
	m.DataFromValues(v)
	m.ResetNonJSON()
	m.Process(in, out)

	want := []float32{1, 0.3, 0.6, 1}
	for c, w := range want {
		if got := tbl.Value(lay.Fader + c); math.Abs(float64(got-w)) > 1e-6 {
			t.Errorf("fader %d = %f, want %f", c, got, w)
		}
	}
	m.Process(in, out)
	if tbl.Value(lay.Fader) != 1 {
		t.Error("reload must not propagate through links")
	}
}

func TestDisplayPacking(t *testing.T) {
	d := Display{Cloaked: true, VUColor: 3, DispColor: -2, Details: 0x5}
	var got Display
	got.unpack(d.pack())
	if got != d {
		t.Errorf("got %+v, want %+v", got, d)
	}
	if (Display{Details: 0x7}).pack() != 0x07000000 {
		t.Errorf("default pack = %#x", (Display{Details: 0x7}).pack())
	}
}

func TestFilterPosResolve(t *testing.T) {
	tests := []struct {
		global, local, want FilterPos
	}{
		{FilterPreInsert, FilterPostInsert, FilterPreInsert},
		{FilterPostInsert, FilterPreInsert, FilterPostInsert},
		{FilterPerTrack, FilterPreInsert, FilterPreInsert},
		{FilterPerTrack, FilterPerTrack, FilterPostInsert},
	}
	for _, tt := range tests {
		if got := tt.global.resolve(tt.local); got != tt.want {
			t.Errorf("resolve(%d, %d) = %d, want %d", tt.global, tt.local, got, tt.want)
		}
	}
}
