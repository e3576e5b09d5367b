package mixer

// Fader laws. A fader shows a position and applies position^exponent, so
// the largest position is maxLinearGain^(1/exponent).
const (
	MasterFaderScalingExponent       = 3
	MasterFaderMaxLinearGain         = 2.0 // +6 dB
	TrkAndGrpFaderScalingExponent    = 3
	TrkAndGrpFaderMaxLinearGain      = 2.0
	GlobalAuxReturnScalingExponent   = 3
	GlobalAuxReturnMaxLinearGain     = 2.0
	IndividualAuxSendScalingExponent = 2
	IndividualAuxSendMaxLinearGain   = 1.0
	GlobalAuxSendScalingExponent     = 2
	GlobalAuxSendMaxLinearGain       = 4.0
)

// Filter cutoffs in Hz. The high-pass is off below MinHPFCutoffFreq and the
// low-pass is off above MaxLPFCutoffFreq; the defaults sit in the off zone.
const (
	MinHPFCutoffFreq = 20.0
	DefHPFCutoffFreq = 13.0
	MaxLPFCutoffFreq = 20000.0
	DefLPFCutoffFreq = 20010.0
)

const (
	// SlowDecimation is how many samples pass between slow updates.
	SlowDecimation = 256
	// EcoDecimation is how many samples pass between control refreshes of
	// a strip in eco mode.
	EcoDecimation = 4

	// MaxAuxes is the number of aux buses of the expander link.
	MaxAuxes = 4
	// MaxChannels bounds tracks plus groups plus auxes so that every
	// channel set packs into one 64-bit mask.
	MaxChannels = 64

	// ClipVoltage is the master output ceiling.
	ClipVoltage = 10.0
	// DefaultDimGain is -12 dB.
	DefaultDimGain = 0.25119

	// DefaultSampleRate is used until the host reports one.
	DefaultSampleRate = 44100.0

	// TrackNameLen is the display width of track and group names.
	TrackNameLen = 4
)

// Schmitt trigger thresholds of the mute and solo CV inputs, in volts.
const (
	cvTriggerLow  = 0.1
	cvTriggerHigh = 1.0
)
