// Package state saves and restores mixer state as a JSON document.
package state

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/justyntemme/mixengine/pkg/framework/param"
)

// Format identifies a mixengine state document.
const Format = "mixengine"

// Version is the current document version.
const Version = 1

var (
	// ErrInvalidFormat is returned for documents that are not mixer state.
	ErrInvalidFormat = fault.New("invalid state format", ftag.With(ftag.InvalidArgument))
	// ErrNewerVersion is returned for documents written by a newer version.
	ErrNewerVersion = fault.New("state version is newer than supported", ftag.With(ftag.InvalidArgument))
)

// Persister is implemented by everything that keeps settings outside the
// parameter table.
type Persister interface {
	DataToValues(v Values)
	DataFromValues(v Values)
	ResetNonJSON()
}

// Document is the serialized form.
type Document struct {
	Format  string             `json:"format"`
	Version int                `json:"version"`
	Params  map[string]float64 `json:"params"`
	Data    Values             `json:"data"`
}

// Manager handles state saving and loading
type Manager struct {
	version int
	table   *param.Table
	custom  Persister
}

// NewManager creates a new state manager
func NewManager(table *param.Table, custom Persister) *Manager {
	return &Manager{
		version: Version,
		table:   table,
		custom:  custom,
	}
}

// Snapshot builds the document for the current state.
func (m *Manager) Snapshot() Document {
	doc := Document{
		Format:  Format,
		Version: m.version,
		Params:  make(map[string]float64, m.table.Count()),
		Data:    Values{},
	}
	for _, p := range m.table.All() {
		doc.Params[p.Name] = p.Value()
	}
	if m.custom != nil {
		m.custom.DataToValues(doc.Data)
	}
	return doc
}

// Save writes the state to a writer
func (m *Manager) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m.Snapshot()); err != nil {
		return fault.Wrap(err, fmsg.With("encode state"))
	}
	return nil
}

// Load reads the state from a reader. Unknown parameters and keys are
// ignored; missing ones keep their current value. Derived state is rebuilt
// before Load returns.
func (m *Manager) Load(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fault.Wrap(err, fmsg.With("read state"))
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fault.Wrap(err,
			fmsg.WithDesc("decode state", "The state file is not valid JSON"),
			ftag.With(ftag.InvalidArgument))
	}
	return m.Apply(doc)
}

// Apply restores a decoded document.
func (m *Manager) Apply(doc Document) error {
	if doc.Format != Format {
		return fault.Wrap(ErrInvalidFormat, fmsg.With(doc.Format))
	}
	if doc.Version > m.version {
		return ErrNewerVersion
	}

	for name, v := range doc.Params {
		// Ignore unknown parameters for forward compatibility
		if p := m.table.ByName(name); p != nil {
			p.SetValue(v)
		}
	}

	if m.custom != nil {
		if doc.Data != nil {
			m.custom.DataFromValues(doc.Data)
		}
		m.custom.ResetNonJSON()
	}
	return nil
}
