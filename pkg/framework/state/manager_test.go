package state

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Southclaws/fault/ftag"

	"github.com/justyntemme/mixengine/pkg/framework/param"
)

type fakePersister struct {
	rate   float32
	name   string
	mask   uint64
	faders []float32
	resets int
	loaded bool
}

func (f *fakePersister) DataToValues(v Values) {
	v.SetFloat("id_t0_fadeRate", f.rate)
	v.SetString("id_t0_name", f.name)
	v.SetUint64("linkBitMask", f.mask)
	v.SetFloats("faders", f.faders)
}

func (f *fakePersister) DataFromValues(v Values) {
	v.Float("id_t0_fadeRate", &f.rate)
	v.String("id_t0_name", &f.name)
	v.Uint64("linkBitMask", &f.mask)
	v.Floats("faders", f.faders)
	f.loaded = true
}

func (f *fakePersister) ResetNonJSON() {
	f.resets++
}

func newTable() *param.Table {
	t := param.NewTable(2)
	t.Add(
		param.New(0, "fader1").Range(0, 1.26).Default(1).Build(),
		param.New(1, "mute1").Toggle().Build(),
	)
	return t
}

func TestRoundTrip(t *testing.T) {
	tbl := newTable()
	src := &fakePersister{rate: 2.5, name: "KICK", mask: 1<<63 | 5, faders: []float32{0.5, 1}}
	tbl.Set(0, 0.8)
	tbl.Set(1, 1)

	var buf bytes.Buffer
	if err := NewManager(tbl, src).Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}

	dstTbl := newTable()
	dst := &fakePersister{faders: make([]float32, 2)}
	if err := NewManager(dstTbl, dst).Load(&buf); err != nil {
		t.Fatalf("load: %v", err)
	}

	if dstTbl.Value(0) != 0.8 || dstTbl.Value(1) != 1 {
		t.Errorf("params = %f %f", dstTbl.Value(0), dstTbl.Value(1))
	}
	if dst.rate != 2.5 || dst.name != "KICK" || dst.mask != src.mask {
		t.Errorf("data = %+v", dst)
	}
	if dst.faders[0] != 0.5 || dst.faders[1] != 1 {
		t.Errorf("faders = %v", dst.faders)
	}
	if dst.resets != 1 {
		t.Errorf("ResetNonJSON called %d times, want 1", dst.resets)
	}
}

func TestLoadToleratesUnknownAndMissing(t *testing.T) {
	doc := `{"format":"mixengine","version":1,
		"params":{"fader1":0.4,"fader99":1},
		"data":{"id_t0_fadeRate":"fast","someFutureKey":12}}`

	tbl := newTable()
	p := &fakePersister{rate: 7, name: "keep"}
	if err := NewManager(tbl, p).Load(strings.NewReader(doc)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Value(0) != 0.4 {
		t.Errorf("fader1 = %f", tbl.Value(0))
	}
	if p.rate != 7 {
		t.Errorf("wrong-typed value should leave rate unchanged, got %f", p.rate)
	}
	if p.name != "keep" {
		t.Errorf("missing key should leave name unchanged, got %q", p.name)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"NotJSON", "{{{", nil},
		{"WrongFormat", `{"format":"other","version":1}`, ErrInvalidFormat},
		{"NewerVersion", `{"format":"mixengine","version":99}`, ErrNewerVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePersister{}
			err := NewManager(newTable(), p).Load(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			if ftag.Get(err) != ftag.InvalidArgument {
				t.Errorf("tag = %v", ftag.Get(err))
			}
			if p.loaded || p.resets != 0 {
				t.Error("persister must not be touched on error")
			}
		})
	}
}

func TestValuesTypes(t *testing.T) {
	v := Values{"b": 1.0, "i": 3.9, "s": 4}
	var b bool
	var i int8
	var s string
	if !v.Bool("b", &b) || !b {
		t.Error("numeric bool")
	}
	if !v.Int8("i", &i) || i != 3 {
		t.Errorf("int8 = %d", i)
	}
	if v.String("s", &s) {
		t.Error("number is not a string")
	}
}
