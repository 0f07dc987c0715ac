// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pairdp/internal/config"
)

// Options holds all CLI flags and arguments.
type Options struct {
	ConfigFile string
	ModelFile  string

	// Pair input
	PairsFile string
	Seq1      string
	Seq2      string
	PairID    string

	// Engine
	ScoreType string
	Algorithm string
	Threads   int
	Posterior bool

	// Filtering
	MinScore      float64
	ReachableOnly bool

	// Output
	Output              string
	Pretty              bool
	NoHeader            bool
	Sort                bool
	Rank                bool
	Width               int
	NoAlignmentExitCode int

	// Store
	StorePath string

	// Logging
	LogLevel string
	LogJSON  bool
	Quiet    bool

	// Server
	Addr  string
	Watch bool

	// Tracing
	Trace string
}

func bindModel(cmd *cobra.Command, o *Options) {
	f := cmd.Flags()
	f.StringVarP(&o.ModelFile, "model", "m", "", "pair-HMM model file (YAML) [*]")
	f.StringVarP(&o.ConfigFile, "config", "c", "", "run configuration file (YAML)")
	f.StringVar(&o.StorePath, "store", "", "result store directory (enables caching)")
	f.StringVar(&o.LogLevel, "log-level", "", "log level: debug | info | warn | error [warn]")
	f.BoolVar(&o.LogJSON, "log-json", false, "log JSON lines instead of text")
	f.BoolVarP(&o.Quiet, "quiet", "q", false, "only log errors and drop warnings")
	f.StringVar(&o.ScoreType, "score-type", "", "score type: probability | odds | null [probability]")
	f.StringVar(&o.Trace, "trace", "", "span exporter: none | stdout (spans go to stderr) [none]")
	_ = cmd.MarkFlagRequired("model")
}

func bindBatch(cmd *cobra.Command, o *Options, algoDefault string) {
	bindModel(cmd, o)
	f := cmd.Flags()
	f.StringVarP(&o.PairsFile, "pairs", "p", "", "pair list: id seq1 seq2 [seq1id seq2id] per line [*]")
	f.StringVar(&o.Seq1, "seq1", "", "first sequence (with --seq2) [*]")
	f.StringVar(&o.Seq2, "seq2", "", "second sequence (with --seq1) [*]")
	f.StringVar(&o.PairID, "id", "pair", "pair ID for --seq1/--seq2")
	f.StringVarP(&o.Algorithm, "algorithm", "a", algoDefault, "algorithm: viterbi | forward | backward | all")
	f.IntVarP(&o.Threads, "threads", "t", 0, "number of worker threads (0 = all CPUs)")
	f.BoolVar(&o.Posterior, "posterior", false, "compute posterior match probabilities (JSON outputs)")
	f.Float64Var(&o.MinScore, "min-score", 0, "drop results whose log score is below this")
	f.BoolVar(&o.ReachableOnly, "reachable-only", false, "drop pairs with no alignment")
	f.StringVarP(&o.Output, "output", "o", "", "output format: text | json | jsonl [text]")
	f.BoolVar(&o.NoHeader, "no-header", false, "suppress header line in text/TSV")
	f.BoolVar(&o.Sort, "sort", false, "sort outputs by pair ID")
	f.BoolVar(&o.Rank, "rank", false, "sort outputs by score, best first")
	f.IntVar(&o.NoAlignmentExitCode, "no-alignment-exit-code", 1, "exit code when no pair has an alignment")
}

// Resolve merges the config file (or defaults) with the flags the user set
// and checks cross-flag rules. changed reports whether a flag was given.
func (o Options) Resolve(changed func(string) bool) (config.Config, error) {
	cfg := config.Default()
	if o.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(o.ConfigFile); err != nil {
			return cfg, err
		}
	}
	set := func(name string, apply func()) {
		if changed(name) {
			apply()
		}
	}
	set("score-type", func() { cfg.Engine.ScoreType = o.ScoreType })
	set("algorithm", func() { cfg.Engine.Algorithm = o.Algorithm })
	set("threads", func() { cfg.Engine.Threads = o.Threads })
	set("posterior", func() { cfg.Engine.Posterior = o.Posterior })
	set("output", func() { cfg.Output.Format = o.Output })
	set("pretty", func() { cfg.Output.Pretty = o.Pretty })
	set("no-header", func() { cfg.Output.Header = !o.NoHeader })
	set("sort", func() { cfg.Output.Sort = o.Sort })
	set("rank", func() { cfg.Output.Rank = o.Rank })
	set("width", func() { cfg.Output.Width = o.Width })
	set("no-alignment-exit-code", func() { cfg.Output.NoAlignmentExitCode = o.NoAlignmentExitCode })
	set("store", func() { cfg.Store.Enabled, cfg.Store.Path = true, o.StorePath })
	set("log-level", func() { cfg.Log.Level = o.LogLevel })
	set("log-json", func() { cfg.Log.JSON = o.LogJSON })
	set("quiet", func() { cfg.Log.Quiet = o.Quiet })
	set("addr", func() { cfg.Server.Addr = o.Addr })
	set("watch", func() { cfg.Server.WatchModel = o.Watch })
	set("trace", func() { cfg.Trace.Exporter = o.Trace })
	if cfg.Store.Enabled && cfg.Store.Path == "" && !cfg.Store.InMemory {
		return cfg, errors.New("--store needs a directory")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// checkPairs enforces exactly one pair source.
func (o Options) checkPairs(changed func(string) bool) error {
	usingFile := o.PairsFile != ""
	usingInline := changed("seq1") || changed("seq2")
	switch {
	case usingFile && usingInline:
		return errors.New("--pairs conflicts with --seq1/--seq2")
	case usingInline && !(changed("seq1") && changed("seq2")):
		return errors.New("--seq1 and --seq2 must be supplied together")
	case !usingFile && !usingInline:
		return errors.New("provide --pairs or --seq1/--seq2")
	}
	if o.Threads < 0 {
		return errors.New("--threads must be >= 0")
	}
	return nil
}

func checkAlignAlgorithm(cfg config.Config) error {
	if a := cfg.Engine.Algorithm; a != config.AlgoViterbi && a != config.AlgoAll {
		return fmt.Errorf("align needs a Viterbi run; --algorithm %q does not produce one", a)
	}
	return nil
}
