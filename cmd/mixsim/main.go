package main

import (
	"io"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/spf13/cobra"

	"github.com/justyntemme/mixengine/pkg/framework/debug"
	"github.com/justyntemme/mixengine/pkg/mixer"
)

var (
	version = "0.1.0"

	logLevel   string
	logFile    string
	configName string
	sampleRate float32

	scenarioPath string
	outputPath   string
	every        int

	withExpander bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mixsim",
	Short: "Run the mixer offline",
	Long: `mixsim drives the mixer engine without a host: it renders scenarios
of timed parameter and MIDI events to CSV and prints default state.`,
	Version:      version,
	SilenceUsage: true,
}

var renderCmd = &cobra.Command{
	Use:   "render [scenario.json]",
	Short: "Render a scenario to CSV",
	Long: `Render a JSON scenario of test tones and timed events and write the
master output, fade gains and effective gains as CSV.

Examples:
  mixsim render fade.json
  mixsim render -s fade.json -o fade.csv --every 16
  mixsim render --config 16 --sample-rate 96000 fade.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default persisted state",
	Long: `Print the state document of a freshly reset mixer, or of the aux
expander with --expander.`,
	RunE: runDefaults,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(defaultsCmd)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append log output to this file instead of stderr")
	rootCmd.PersistentFlags().StringVarP(&configName, "config", "c", "8", "Mixer size preset (16 or 8)")
	rootCmd.PersistentFlags().Float32Var(&sampleRate, "sample-rate", mixer.DefaultSampleRate, "Sample rate in Hz")

	renderCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Scenario file (or first argument)")
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output CSV file (default: stdout)")
	renderCmd.Flags().IntVar(&every, "every", 0, "Write one row every N samples (default: from scenario, else 64)")

	defaultsCmd.Flags().BoolVar(&withExpander, "expander", false, "Print the aux expander state")
}

func newLogger() (*debug.Logger, error) {
	level, err := debug.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	log := debug.New(os.Stderr, "mixsim", debug.DefaultFlags)
	if logFile != "" {
		if log, err = debug.NewFileLogger(logFile, "mixsim", debug.DefaultFlags); err != nil {
			return nil, err
		}
	}
	log.SetLevel(level)
	return log, nil
}

// closeWith closes c and keeps the first error in *err.
func closeWith(err *error, c io.Closer, what string) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fault.Wrap(cerr, fmsg.With(what))
	}
}

func runRender(cmd *cobra.Command, args []string) (err error) {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer closeWith(&err, log, "close log")
	path := scenarioPath
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fault.New("no scenario given", fmsg.WithDesc("missing scenario", "Pass a scenario file as argument or with --scenario"))
	}

	f, err := os.Open(path)
	if err != nil {
		return fault.Wrap(err, fmsg.With("open scenario"))
	}
	defer f.Close()
	sc, err := ParseScenario(f)
	if err != nil {
		return fault.Wrap(err, fmsg.With(path))
	}

	name := configName
	if sc.Config != "" && !cmd.Flags().Changed("config") {
		name = sc.Config
	}
	cfg, err := mixer.ParseConfig(name)
	if err != nil {
		return err
	}
	sr := sampleRate
	if sc.SampleRate > 0 && !cmd.Flags().Changed("sample-rate") {
		sr = sc.SampleRate
	}
	if every > 0 {
		sc.Every = every
	}

	r, err := newRenderer(sc, cfg, sr, log)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outputPath != "" {
		out, cerr := os.Create(outputPath)
		if cerr != nil {
			return fault.Wrap(cerr, fmsg.With("create output"))
		}
		defer closeWith(&err, out, "close output")
		w = out
	}
	if err := r.run(w); err != nil {
		return err
	}
	log.Info("rendered %d samples at %.0f Hz to %s", r.samples, sr, describe(outputPath))
	return nil
}

func describe(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}

func runDefaults(cmd *cobra.Command, args []string) (err error) {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer closeWith(&err, log, "close log")
	cfg, err := mixer.ParseConfig(configName)
	if err != nil {
		return err
	}
	opts := []mixer.Option{mixer.WithLogger(log), mixer.WithSampleRate(sampleRate)}
	if withExpander {
		e, err := mixer.NewAuxExpander(cfg, opts...)
		if err != nil {
			return err
		}
		return e.StateManager().Save(cmd.OutOrStdout())
	}
	m, err := mixer.New(cfg, opts...)
	if err != nil {
		return err
	}
	return m.StateManager().Save(cmd.OutOrStdout())
}
