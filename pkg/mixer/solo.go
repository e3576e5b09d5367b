package mixer

// SoloState is the audibility of every strip for the current sample. It is
// rebuilt once at the start of each sample pass, before any strip runs, so
// all strips of that pass see the same solo picture.
type SoloState struct {
	Track []float32
	Group []float32
	Aux   []float32
	// Dry is 0 when soloed aux returns mute the tracks and groups in the
	// main mix
	Dry float32

	AnyMain bool
	AnyAux  bool
}

func newSoloState(cfg Config) SoloState {
	s := SoloState{
		Track: make([]float32, cfg.Tracks),
		Group: make([]float32, cfg.Groups),
		Aux:   make([]float32, cfg.Auxes),
	}
	s.clear()
	return s
}

func (s *SoloState) clear() {
	for i := range s.Track {
		s.Track[i] = 1
	}
	for i := range s.Group {
		s.Group[i] = 1
	}
	for i := range s.Aux {
		s.Aux[i] = 1
	}
	s.Dry = 1
	s.AnyMain = false
	s.AnyAux = false
}

// SoloInputs is what the resolver reads. trackGroup holds each track's group
// selector, 0 for none and 1..N for a group; out-of-range means none.
type SoloInputs struct {
	TrackSolo  []bool
	TrackGroup []int
	GroupSolo  []bool
	AuxSolo    []bool
}

// Resolve computes the solo gains.
//
// A track plays when nothing is soloed, when it is soloed, or when its group
// is soloed. A group plays when nothing is soloed, when it is soloed, or when
// one of its tracks is soloed. Aux returns only look at aux solos unless
// AuxReturnsMutedWhenMainSolo is set.
func (s *SoloState) Resolve(g *GlobalState, in SoloInputs) {
	groups := len(s.Group)

	anyMain := false
	for _, on := range in.TrackSolo {
		anyMain = anyMain || on
	}
	for _, on := range in.GroupSolo {
		anyMain = anyMain || on
	}
	anyAux := false
	for _, on := range in.AuxSolo {
		anyAux = anyAux || on
	}
	s.AnyMain = anyMain
	s.AnyAux = anyAux

	for t := range s.Track {
		if !anyMain {
			s.Track[t] = 1
			continue
		}
		audible := in.TrackSolo[t]
		if gr := in.TrackGroup[t]; gr >= 1 && gr <= groups && in.GroupSolo[gr-1] {
			audible = true
		}
		s.Track[t] = b2f(audible)
	}

	for gr := range s.Group {
		if !anyMain {
			s.Group[gr] = 1
			continue
		}
		audible := in.GroupSolo[gr]
		for t, on := range in.TrackSolo {
			if on && in.TrackGroup[t] == gr+1 {
				audible = true
				break
			}
		}
		s.Group[gr] = b2f(audible)
	}

	for a := range s.Aux {
		switch {
		case anyAux:
			s.Aux[a] = b2f(in.AuxSolo[a])
		case g.AuxReturnsMutedWhenMainSolo && anyMain:
			s.Aux[a] = 0
		default:
			s.Aux[a] = 1
		}
	}

	s.Dry = 1
	if g.AuxReturnsSolosMuteDry && anyAux {
		s.Dry = 0
	}
}

func b2f(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
