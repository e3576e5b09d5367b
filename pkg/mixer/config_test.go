package mixer

import (
	"errors"
	"testing"

	"github.com/Southclaws/fault/ftag"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"Mixer16", Config16, true},
		{"Mixer8", Config8, true},
		{"NoGroupsNoAuxes", Config{Tracks: 1}, true},
		{"NoTracks", Config{Groups: 2, Auxes: 4}, false},
		{"NegativeGroups", Config{Tracks: 4, Groups: -1}, false},
		{"TooManyGroups", Config{Tracks: 4, Groups: 17}, false},
		{"TooManyAuxes", Config{Tracks: 4, Auxes: 5}, false},
		{"TooManyChannels", Config{Tracks: 60, Groups: 2, Auxes: 4}, false},
		{"Full", Config{Tracks: 56, Groups: 4, Auxes: 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
			if ftag.Get(err) != ftag.InvalidArgument {
				t.Errorf("tag = %v", ftag.Get(err))
			}
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New: err = %v", err)
	}
	if _, err := NewAuxExpander(Config{Tracks: 4, Auxes: 9}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewAuxExpander: err = %v", err)
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		in   string
		want Config
		ok   bool
	}{
		{"16", Config16, true},
		{"mixer8", Config8, true},
		{"32", Config{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConfig(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChannelSet(t *testing.T) {
	s := NewChannelSet(70, false)
	s.Set(3, true)
	s.Set(65, true)
	s.Set(-1, true)
	s.Set(70, true)
	s.Toggle(5)

	if !s.Has(3) || !s.Has(5) || s.Has(4) || s.Has(70) {
		t.Errorf("unexpected membership %v", s)
	}
	if s.Count() != 3 {
		t.Errorf("count = %d, want 3", s.Count())
	}
	if m := s.Mask(); m != 1<<3|1<<5 {
		t.Errorf("mask = %b, channels past 63 must not pack", m)
	}

	r := NewChannelSet(8, true)
	r.SetMask(0b1010)
	if r.Count() != 2 || !r.Has(1) || !r.Has(3) {
		t.Errorf("SetMask gave %v", r)
	}
}

func TestPack20(t *testing.T) {
	var src AuxReturnMessage
	src.Mute = [MaxAuxes]bool{true, false, false, true}
	src.Solo = [MaxAuxes]bool{false, true, false, false}
	src.Group = [MaxAuxes]int{0, 2, 1, 0}
	src.FadeRate = [MaxAuxes]float32{0, 1.5, 0, 10}
	src.FadeProfile = [MaxAuxes]float32{-1, 0, 0.5, 1}

	v := src.Pack20()
	if v[0] != 1 || v[5] != 1 || v[9] != 2 || v[13] != 1.5 || v[16] != -1 {
		t.Errorf("unexpected layout %v", v)
	}

	var dst AuxReturnMessage
	dst.Unpack20(v)
	if dst.Mute != src.Mute || dst.Solo != src.Solo || dst.Group != src.Group ||
		dst.FadeRate != src.FadeRate || dst.FadeProfile != src.FadeProfile {
		t.Errorf("unpacked %+v", dst)
	}
}
