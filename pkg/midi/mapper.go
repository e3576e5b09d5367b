package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/justyntemme/mixengine/pkg/framework/debug"
	"github.com/justyntemme/mixengine/pkg/framework/param"
)

type key struct {
	kind    Kind
	channel uint8
	number  uint8
}

// Map applies incoming MIDI messages to a parameter table through a set of
// bindings. A message matches at most one binding; later bindings replace
// earlier ones on the same key.
type Map struct {
	table    *param.Table
	bindings map[key]Binding
	order    []key
	log      *debug.Logger
}

// NewMap creates a map over table. Bindings to indices outside the table
// are dropped.
func NewMap(table *param.Table, log *debug.Logger, bindings ...Binding) *Map {
	if log == nil {
		log = debug.Discard()
	}
	m := &Map{
		table:    table,
		bindings: make(map[key]Binding, len(bindings)),
		log:      log,
	}
	for _, b := range bindings {
		m.Bind(b)
	}
	return m
}

// Bind adds or replaces a binding.
func (m *Map) Bind(b Binding) {
	if m.table.Get(b.Param) == nil {
		m.log.Warn("dropping binding %s: no such parameter", b)
		return
	}
	k := key{b.Kind, b.Channel & 0x0F, b.Number & 0x7F}
	if _, ok := m.bindings[k]; !ok {
		m.order = append(m.order, k)
	}
	m.bindings[k] = b
}

// Len returns the number of bindings.
func (m *Map) Len() int {
	return len(m.bindings)
}

// Handle applies msg and reports whether a binding took it. Messages of
// other types and unbound numbers are ignored.
func (m *Map) Handle(msg gomidi.Message) bool {
	var ch, num, val uint8
	switch {
	case msg.GetControlChange(&ch, &num, &val):
		b, ok := m.bindings[key{KindCC, ch, num}]
		if !ok {
			return false
		}
		p := m.table.Get(b.Param)
		if b.Mode == ModeToggle {
			if val >= 64 {
				toggle(p)
			}
			return true
		}
		p.SetNormalized(float64(val) / 127)
		return true

	case msg.GetNoteStart(&ch, &num, &val):
		return m.gate(ch, num, true)

	case msg.GetNoteEnd(&ch, &num):
		return m.gate(ch, num, false)
	}
	return false
}

func (m *Map) gate(ch, num uint8, on bool) bool {
	b, ok := m.bindings[key{KindNote, ch, num}]
	if !ok {
		return false
	}
	p := m.table.Get(b.Param)
	switch {
	case b.Mode == ModeToggle:
		if on {
			toggle(p)
		}
	case on:
		p.SetNormalized(1)
	default:
		p.SetNormalized(0)
	}
	return true
}

func toggle(p *param.Parameter) {
	if p.Bool() {
		p.SetValue(p.Min)
	} else {
		p.SetValue(p.Max)
	}
}

// Feedback returns one message per binding that reflects the current
// parameter value, for motor faders and button lights. Notes are sent as
// Note On with velocity 127 for on and 0 for off.
func (m *Map) Feedback() []gomidi.Message {
	out := make([]gomidi.Message, 0, len(m.order))
	for _, k := range m.order {
		b := m.bindings[k]
		p := m.table.Get(b.Param)
		switch b.Kind {
		case KindNote:
			var vel uint8
			if p.Bool() {
				vel = 127
			}
			out = append(out, gomidi.NoteOn(k.channel, k.number, vel))
		default:
			v := uint8(p.Normalized()*127 + 0.5)
			out = append(out, gomidi.ControlChange(k.channel, k.number, v))
		}
	}
	return out
}
