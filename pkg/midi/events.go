// Package midi maps MIDI control surfaces onto the mixer parameter table.
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Event is a MIDI message scheduled at a sample offset.
type Event struct {
	Offset int64
	Msg    gomidi.Message
}

func (e Event) String() string {
	return fmt.Sprintf("%s{offset:%d}", e.Msg, e.Offset)
}

// Controller numbers used by the default surface layout.
const (
	CCVolume uint8 = 7
	CCPan    uint8 = 10
)

// Kind is the message class a Binding listens to.
type Kind uint8

const (
	// KindCC binds a Control Change controller number
	KindCC Kind = iota
	// KindNote binds a note number
	KindNote
)

func (k Kind) String() string {
	if k == KindNote {
		return "note"
	}
	return "cc"
}

// Mode selects what the bound message does to the parameter.
type Mode uint8

const (
	// ModeAbsolute follows the controller value, or the note gate
	ModeAbsolute Mode = iota
	// ModeToggle flips a button parameter on every press
	ModeToggle
)

// Binding ties one MIDI channel and number to one parameter index.
type Binding struct {
	Kind    Kind
	Channel uint8
	Number  uint8
	Param   int
	Mode    Mode
}

func (b Binding) String() string {
	return fmt.Sprintf("%s ch%d #%d -> param %d", b.Kind, b.Channel+1, b.Number, b.Param)
}

// Run returns n bindings on consecutive numbers and parameters, starting at
// number first and parameter param.
func Run(kind Kind, channel, first uint8, param, n int, mode Mode) []Binding {
	out := make([]Binding, 0, n)
	for i := 0; i < n && int(first)+i < 128; i++ {
		out = append(out, Binding{
			Kind:    kind,
			Channel: channel,
			Number:  first + uint8(i),
			Param:   param + i,
			Mode:    mode,
		})
	}
	return out
}
