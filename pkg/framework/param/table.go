package param

import (
	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// ErrUnknownParameter is returned when a name lookup fails.
var ErrUnknownParameter = fault.New("unknown parameter", ftag.With(ftag.NotFound))

// ErrUnknownOption is returned when a choice parameter cannot parse a value.
var ErrUnknownOption = fault.New("unknown option", ftag.With(ftag.InvalidArgument))

// Table owns every parameter of a mixer. Strips refer to entries by index.
// Parameters are added while building; after that the table only changes
// values, so reads from the audio path need no lock.
type Table struct {
	params []*Parameter
	byName map[string]int
}

// NewTable creates an empty table with room for n parameters.
func NewTable(n int) *Table {
	return &Table{
		params: make([]*Parameter, 0, n),
		byName: make(map[string]int, n),
	}
}

// Add appends parameters and returns the index of the first one.
// A duplicate name keeps the first registration.
func (t *Table) Add(params ...*Parameter) int {
	first := len(t.params)
	for _, p := range params {
		if _, exists := t.byName[p.Name]; exists {
			continue
		}
		t.byName[p.Name] = len(t.params)
		t.params = append(t.params, p)
	}
	return first
}

// Get returns the parameter at index, or nil.
func (t *Table) Get(index int) *Parameter {
	if index < 0 || index >= len(t.params) {
		return nil
	}
	return t.params[index]
}

// Value returns the plain value at index as float32.
func (t *Table) Value(index int) float32 {
	return float32(t.params[index].Value())
}

// Set stores a plain value at index.
func (t *Table) Set(index int, v float64) {
	t.params[index].SetValue(v)
}

// Index returns the index of a named parameter.
func (t *Table) Index(name string) (int, error) {
	i, ok := t.byName[name]
	if !ok {
		return -1, fault.Wrap(ErrUnknownParameter, fmsg.With(name))
	}
	return i, nil
}

// ByName returns a named parameter, or nil.
func (t *Table) ByName(name string) *Parameter {
	if i, ok := t.byName[name]; ok {
		return t.params[i]
	}
	return nil
}

// Count returns the number of parameters
func (t *Table) Count() int {
	return len(t.params)
}

// All returns all parameters in order
func (t *Table) All() []*Parameter {
	result := make([]*Parameter, len(t.params))
	copy(result, t.params)
	return result
}

// ResetAll restores every default.
func (t *Table) ResetAll() {
	for _, p := range t.params {
		p.Reset()
	}
}
