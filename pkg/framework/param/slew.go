package param

// Anti-pop slew rates in units per second.
const (
	AntipopSlewFast = 125.0
	AntipopSlewSlow = 25.0
)

// Slewer limits how fast a value can move, with separate rise and fall rates
// in units per second.
type Slewer struct {
	rise, fall float32
	Out        float32
}

// SetRiseFall sets the rates.
func (s *Slewer) SetRiseFall(rise, fall float32) {
	s.rise = rise
	s.fall = fall
}

// Process moves Out toward in by at most rate*deltaTime and returns it.
func (s *Slewer) Process(deltaTime, in float32) float32 {
	s.Out = slew(s.Out, in, s.rise*deltaTime, s.fall*deltaTime)
	return s.Out
}

// Reset sets the output to 0.
func (s *Slewer) Reset() {
	s.Out = 0
}

// Settled reports whether the output equals v.
func (s *Slewer) Settled(v float32) bool {
	return s.Out == v
}

// Slewer4 is four independent lanes sharing one pair of rates.
type Slewer4 struct {
	rise, fall float32
	Out        [4]float32
}

// SetRiseFall sets the rates.
func (s *Slewer4) SetRiseFall(rise, fall float32) {
	s.rise = rise
	s.fall = fall
}

// Process slews every lane toward in and returns the lanes.
func (s *Slewer4) Process(deltaTime float32, in [4]float32) [4]float32 {
	up := s.rise * deltaTime
	down := s.fall * deltaTime
	for i := range s.Out {
		s.Out[i] = slew(s.Out[i], in[i], up, down)
	}
	return s.Out
}

// Reset zeroes every lane.
func (s *Slewer4) Reset() {
	s.Out = [4]float32{}
}

// Settled reports whether every lane equals v.
func (s *Slewer4) Settled(v [4]float32) bool {
	return s.Out == v
}

func slew(out, in, up, down float32) float32 {
	if in > out {
		if in-out > up {
			return out + up
		}
		return in
	}
	if out-in > down {
		return out - down
	}
	return in
}
