package mixer

import (
	"github.com/justyntemme/mixengine/pkg/framework/state"
)

var _ state.Persister = (*Mixer)(nil)

// DataToValues writes every setting that lives outside the parameter
// table.
func (m *Mixer) DataToValues(v state.Values) {
	m.global.dataToValues(v, m.params, m.layout.Fader)
	for _, s := range m.tracks {
		s.settingsToValues(v)
	}
	for _, s := range m.groups {
		s.settingsToValues(v)
	}
	m.master.dataToValues(v)
}

// DataFromValues restores settings. Missing or mistyped keys keep their
// current value. ResetNonJSON must follow.
func (m *Mixer) DataFromValues(v state.Values) {
	m.global.dataFromValues(v, m.params, m.layout.Fader)
	for _, s := range m.tracks {
		s.settingsFromValues(v)
	}
	for _, s := range m.groups {
		s.settingsFromValues(v)
	}
	m.master.dataFromValues(v)
	m.master.updateDimGain()
	m.log.Info("%s: state loaded", m.id)
}

// StateManager returns a manager that saves and loads this mixer.
func (m *Mixer) StateManager() *state.Manager {
	return state.NewManager(m.params, m)
}
