package mixer

// ChannelSet is a set of channel flags, one per channel index. It is packed
// into a bit mask only when persisted or sent over the expander link.
type ChannelSet []bool

// NewChannelSet returns a set of n channels, all set to on.
func NewChannelSet(n int, on bool) ChannelSet {
	s := make(ChannelSet, n)
	for i := range s {
		s[i] = on
	}
	return s
}

// Has reports whether channel i is in the set. Out-of-range is false.
func (s ChannelSet) Has(i int) bool {
	return i >= 0 && i < len(s) && s[i]
}

// Set adds or removes channel i.
func (s ChannelSet) Set(i int, on bool) {
	if i >= 0 && i < len(s) {
		s[i] = on
	}
}

// Toggle flips channel i.
func (s ChannelSet) Toggle(i int) {
	if i >= 0 && i < len(s) {
		s[i] = !s[i]
	}
}

// Count returns the number of channels in the set.
func (s ChannelSet) Count() int {
	n := 0
	for _, on := range s {
		if on {
			n++
		}
	}
	return n
}

// Mask packs the set, channel i at bit i.
func (s ChannelSet) Mask() uint64 {
	var m uint64
	for i, on := range s {
		if on && i < 64 {
			m |= 1 << uint(i)
		}
	}
	return m
}

// SetMask unpacks a mask; bits past the set length are ignored.
func (s ChannelSet) SetMask(m uint64) {
	for i := range s {
		s[i] = i < 64 && m&(1<<uint(i)) != 0
	}
}
