package mixer

import (
	"fmt"
	"strconv"

	"github.com/justyntemme/mixengine/pkg/dsp/gain"
	"github.com/justyntemme/mixengine/pkg/framework/param"
)

// Layout holds the base index of each parameter family in the table.
// Fader, Pan, Mute and Solo cover tracks then groups; Group covers tracks.
type Layout struct {
	Fader int
	Pan   int
	Mute  int
	Solo  int
	Group int

	MasterFader int
	MasterMute  int
	MasterDim   int
	MasterMono  int
}

// channelKey names channel c, tracks then groups: t1..tN, g1..gM.
func channelKey(cfg Config, c int) string {
	if c < cfg.Tracks {
		return "t" + strconv.Itoa(c+1)
	}
	return "g" + strconv.Itoa(c-cfg.Tracks+1)
}

func faderFormatter(exponent int) (func(float64) string, func(string) (float64, error)) {
	format := func(v float64) string {
		db := gain.LinearToDb(float64(gain.Scale(float32(v), exponent)))
		if db <= gain.MinDB {
			return "-inf dB"
		}
		return fmt.Sprintf("%.1f dB", db)
	}
	parse := func(s string) (float64, error) {
		var db float64
		if _, err := fmt.Sscanf(s, "%f", &db); err != nil {
			return 0, err
		}
		return gain.Unscale(gain.DbToLinear(db), exponent), nil
	}
	return format, parse
}

// buildParams registers every mixer parameter and returns the layout.
func buildParams(cfg Config) (*param.Table, Layout) {
	n := cfg.Channels()
	tbl := param.NewTable(4*n + cfg.Tracks + 4)
	var lay Layout
	id := uint32(0)
	next := func() uint32 {
		id++
		return id - 1
	}

	maxFader := gain.MaxPosition(TrkAndGrpFaderMaxLinearGain, TrkAndGrpFaderScalingExponent)
	format, parse := faderFormatter(TrkAndGrpFaderScalingExponent)
	for c := 0; c < n; c++ {
		i := tbl.Add(param.New(next(), channelKey(cfg, c)+"_fader").
			Range(0, maxFader).Default(1).Formatter(format, parse).Build())
		if c == 0 {
			lay.Fader = i
		}
	}
	for c := 0; c < n; c++ {
		i := tbl.Add(param.New(next(), channelKey(cfg, c)+"_pan").Default(0.5).Build())
		if c == 0 {
			lay.Pan = i
		}
	}
	for c := 0; c < n; c++ {
		i := tbl.Add(param.New(next(), channelKey(cfg, c)+"_mute").Toggle().Build())
		if c == 0 {
			lay.Mute = i
		}
	}
	for c := 0; c < n; c++ {
		i := tbl.Add(param.New(next(), channelKey(cfg, c)+"_solo").Toggle().Build())
		if c == 0 {
			lay.Solo = i
		}
	}

	groups := make([]string, cfg.Groups+1)
	groups[0] = "-"
	for gr := 1; gr <= cfg.Groups; gr++ {
		groups[gr] = strconv.Itoa(gr)
	}
	for t := 0; t < cfg.Tracks; t++ {
		i := tbl.Add(param.Choice(next(), channelKey(cfg, t)+"_group", groups).Build())
		if t == 0 {
			lay.Group = i
		}
	}

	mformat, mparse := faderFormatter(MasterFaderScalingExponent)
	lay.MasterFader = tbl.Add(param.New(next(), "m_fader").
		Range(0, gain.MaxPosition(MasterFaderMaxLinearGain, MasterFaderScalingExponent)).
		Default(1).Formatter(mformat, mparse).Build())
	lay.MasterMute = tbl.Add(param.New(next(), "m_mute").Toggle().Build())
	lay.MasterDim = tbl.Add(param.New(next(), "m_dim").Toggle().Build())
	lay.MasterMono = tbl.Add(param.New(next(), "m_mono").Toggle().Build())
	return tbl, lay
}
