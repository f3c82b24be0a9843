package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/lb-sim/sim"
	"github.com/inference-sim/lb-sim/sim/output"
	"github.com/inference-sim/lb-sim/sim/trace"
	"github.com/inference-sim/lb-sim/sim/workload"
)

// runFlags holds the values bound to the run and show-config flags.
type runFlags struct {
	configPath string  // Optional YAML/JSON config file
	algorithm  string  // Selection strategy name
	servers    string  // name:latency_ms[:weight],...
	requests   int     // Fixed request count
	seed       uint64  // Tie-break seed; setting it selects seeded tie-breaks
	rate       float64 // Poisson arrivals per millisecond
	durationMs int64   // Poisson observation window
	format     string  // human, summary or json
	traceLevel string  // none or decisions
}

// simInputs is the resolved input of one simulation.
type simInputs struct {
	Algorithm  string
	Servers    []sim.Server
	Profile    workload.Profile
	TieBreak   sim.TieBreak
	Format     output.Format
	TraceLevel trace.TraceLevel
}

// NewRootCmd builds the CLI command tree with fresh flag state.
func NewRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "lb-sim",
		Short:         "Discrete-event simulator for load-balancing policies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %s", logLevel)
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(newRunCmd(), newShowConfigCmd(), newListAlgorithmsCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the load-balancing simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := resolveInputs(cmd, f)
			if err != nil {
				return err
			}
			result, err := simulate(in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), output.NewFormatter(in.Format).Write(result))
			return err
		},
	}
	bindRunFlags(cmd, f)
	return cmd
}

func newShowConfigCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "show-config",
		Short: "Print the resolved configuration without running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := resolveInputs(cmd, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), output.FormatConfig(in.Algorithm, in.Profile, in.TieBreak, in.Servers))
			return err
		},
	}
	bindRunFlags(cmd, f)
	return cmd
}

func newListAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-algorithms",
		Short: "List the available selection strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range sim.ValidAlgorithms() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func bindRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a YAML or JSON run configuration")
	cmd.Flags().StringVar(&f.algorithm, "algo", sim.AlgorithmRoundRobin, "Selection strategy (see list-algorithms)")
	cmd.Flags().StringVar(&f.servers, "servers", "", "Comma-separated servers as name:latency_ms[:weight]")
	cmd.Flags().IntVar(&f.requests, "requests", 10, "Number of requests")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Seed for tie-breaks; omit for stable (first candidate) tie-breaks")
	cmd.Flags().Float64Var(&f.rate, "rate", 0, "Poisson arrival rate per millisecond (with --duration-ms)")
	cmd.Flags().Int64Var(&f.durationMs, "duration-ms", 0, "Poisson observation window in milliseconds (with --rate)")
	cmd.Flags().StringVar(&f.format, "format", string(output.FormatHuman), "Output format (human, summary, json)")
	cmd.Flags().StringVar(&f.traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")
}

// resolveInputs layers explicitly set flags over the optional config file.
func resolveInputs(cmd *cobra.Command, f *runFlags) (*simInputs, error) {
	changed := cmd.Flags().Changed

	in := &simInputs{
		Algorithm: f.algorithm,
		Profile:   workload.FixedCount(f.requests),
		TieBreak:  sim.StableTieBreak(),
	}

	if f.configPath != "" {
		fc, err := LoadFileConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		if fc.Algorithm != "" && !changed("algo") {
			in.Algorithm = fc.Algorithm
		}
		if len(fc.Servers) > 0 {
			if in.Servers, err = fc.ServerList(); err != nil {
				return nil, err
			}
		}
		switch {
		case fc.Requests != nil:
			in.Profile = workload.FixedCount(*fc.Requests)
		case fc.Poisson != nil:
			in.Profile = workload.Poisson(fc.Poisson.Rate, fc.Poisson.DurationMs)
		}
		in.TieBreak = fc.TieBreakMode()
		logrus.Debugf("loaded config %s", f.configPath)
	}

	if changed("servers") || in.Servers == nil {
		servers, err := ParseServers(f.servers)
		if err != nil {
			return nil, err
		}
		in.Servers = servers
	}

	poisson := changed("rate") || changed("duration-ms")
	if poisson && changed("requests") {
		return nil, fmt.Errorf("--requests and --rate/--duration-ms are mutually exclusive")
	}
	switch {
	case poisson:
		rate, duration := f.rate, f.durationMs
		if in.Profile.Kind == workload.ProfilePoisson {
			if !changed("rate") {
				rate = in.Profile.RatePerMs
			}
			if !changed("duration-ms") {
				duration = in.Profile.DurationMs
			}
		}
		in.Profile = workload.Poisson(rate, duration)
	case changed("requests"):
		in.Profile = workload.FixedCount(f.requests)
	}
	if err := in.Profile.Validate(); err != nil {
		return nil, err
	}

	if changed("seed") {
		in.TieBreak = sim.SeededTieBreak(f.seed)
	}

	if !sim.IsValidAlgorithm(in.Algorithm) {
		return nil, fmt.Errorf("unknown algorithm %q; valid algorithms: %v", in.Algorithm, sim.ValidAlgorithms())
	}
	format, err := output.ParseFormat(f.format)
	if err != nil {
		return nil, err
	}
	in.Format = format
	if !trace.IsValidTraceLevel(f.traceLevel) {
		return nil, fmt.Errorf("unknown trace level %q", f.traceLevel)
	}
	in.TraceLevel = trace.TraceLevel(f.traceLevel)
	return in, nil
}

// simulate resolves the request profile and runs the engine.
func simulate(in *simInputs) (*sim.RunResult, error) {
	// Stable runs carry Seed 0, so their Poisson counts always sample from seed 0.
	rng := sim.NewPartitionedRNG(in.TieBreak.Seed)
	count, err := workload.ResolveCount(in.Profile, rng.ForSubsystem(sim.SubsystemWorkload))
	if err != nil {
		return nil, err
	}

	cfg := sim.RunConfig{
		Algorithm:    in.Algorithm,
		Servers:      in.Servers,
		RequestCount: count,
		TieBreak:     in.TieBreak,
		TraceLevel:   in.TraceLevel,
	}
	result, err := sim.Run(cfg)
	if err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}

	if result.Trace != nil {
		ts := trace.Summarize(result.Trace)
		logrus.Infof("Trace: %d decisions, %d tie-broken, %d unique targets",
			ts.TotalDecisions, ts.TieBrokenCount, ts.UniqueTargets)
	}
	logrus.Info("Simulation complete.")
	return result, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
