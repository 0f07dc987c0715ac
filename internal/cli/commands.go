// internal/cli/commands.go
package cli

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"pairdp/internal/config"
	"pairdp/internal/version"
)

// Invocation is a parsed, validated command ready to run. Options.MinScore
// is -Inf unless --min-score was given.
type Invocation struct {
	Options Options
	Config  config.Config
	Stdout  io.Writer
	Stderr  io.Writer
}

// Handlers run commands and return process exit codes.
type Handlers struct {
	Align func(context.Context, Invocation) int
	Score func(context.Context, Invocation) int
	Serve func(context.Context, Invocation) int
}

// NewRootCmd builds the command tree. The chosen handler's exit code is
// stored in *code; parse and validation failures surface as errors.
func NewRootCmd(h Handlers, stdout, stderr io.Writer, code *int) *cobra.Command {
	root := &cobra.Command{
		Use:           "pairdp",
		Short:         "Pair-HMM alignment and scoring",
		Long:          "pairdp aligns and scores sequence pairs under a pair hidden Markov model\n(Viterbi, Forward and Backward in log space).",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(
		batchCmd("align", "Viterbi alignment of each pair", alignExample, config.AlgoViterbi, h.Align, stdout, stderr, code),
		batchCmd("score", "Forward/Backward/Viterbi log scores of each pair", scoreExample, config.AlgoAll, h.Score, stdout, stderr, code),
		serveCmd(h.Serve, stdout, stderr, code),
		&cobra.Command{
			Use:   "version",
			Short: "Print version and exit",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "pairdp version %s\n", version.Version)
			},
		},
	)
	return root
}

func batchCmd(use, short, example, algo string, run func(context.Context, Invocation) int, stdout, stderr io.Writer, code *int) *cobra.Command {
	var o Options
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		Args:    cobra.NoArgs,
	}
	bindBatch(cmd, &o, algo)
	if use == "align" {
		cmd.Flags().BoolVar(&o.Pretty, "pretty", false, "pretty alignment block after each row (text)")
		cmd.Flags().IntVar(&o.Width, "width", 60, "alignment columns per pretty block")
	}
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		changed := cmd.Flags().Changed
		if err := o.checkPairs(changed); err != nil {
			return err
		}
		cfg, err := o.Resolve(changed)
		if err != nil {
			return err
		}
		if !changed("algorithm") && o.ConfigFile == "" {
			cfg.Engine.Algorithm = algo
		}
		if use == "align" {
			if err := checkAlignAlgorithm(cfg); err != nil {
				return err
			}
		} else {
			cfg.Output.Pretty = false
		}
		if !changed("min-score") {
			o.MinScore = math.Inf(-1)
		}
		*code = run(cmd.Context(), Invocation{Options: o, Config: cfg, Stdout: stdout, Stderr: stderr})
		return nil
	}
	return cmd
}

func serveCmd(run func(context.Context, Invocation) int, stdout, stderr io.Writer, code *int) *cobra.Command {
	var o Options
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve alignments over HTTP",
		Example: serveExample,
		Args:    cobra.NoArgs,
	}
	bindModel(cmd, &o)
	cmd.Flags().StringVar(&o.Addr, "addr", "", "listen address [127.0.0.1:8080]")
	cmd.Flags().BoolVar(&o.Watch, "watch", false, "reload the model file when it changes")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := o.Resolve(cmd.Flags().Changed)
		if err != nil {
			return err
		}
		*code = run(cmd.Context(), Invocation{Options: o, Config: cfg, Stdout: stdout, Stderr: stderr})
		return nil
	}
	return cmd
}
