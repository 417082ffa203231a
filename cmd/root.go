// Package cmd wires the analysis pipeline into a command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/drewgille/lemurs/internal/config"
	"github.com/drewgille/lemurs/pkg/errors"
	"github.com/drewgille/lemurs/pkg/log"
)

// appState carries the loaded configuration and per-run identity shared by
// every subcommand.
type appState struct {
	cfg    *config.Analysis
	runID  string
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	state := &appState{}
	var (
		cfgFile  string
		flagData string
		flagTaxa []string
		flagSims int
		flagLvl  float64
		flagSeed uint64
	)

	root := &cobra.Command{
		Use:   "lemurs",
		Short: "Longitudinal body-weight analysis for lemur colony records",
		Long: `lemurs loads longitudinal body-weight records, summarizes them per
taxon, and fits linear mixed-effects models with a random intercept per
individual. Confidence intervals come from a parametric bootstrap; AIC and
BIC are reported for each candidate model but the final choice between them
is left to the analyst.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("data") {
				cfg.DataPath = flagData
			}
			if f.Changed("taxa") {
				cfg.Taxa = flagTaxa
			}
			if f.Changed("sims") {
				cfg.Sims = flagSims
			}
			if f.Changed("level") {
				cfg.Level = flagLvl
			}
			if f.Changed("seed") {
				cfg.Seed = flagSeed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log.Setup(cfg.LogLevel)
			state.cfg = cfg
			state.runID = uuid.NewString()
			state.logger = slog.Default().With(slog.String(log.RunIDKey, state.runID))

			// Route model warnings through the structured logger.
			errors.SetWarningHandler(func(w error) {
				state.logger.Warn("analysis warning", log.ErrAttr(w))
			})
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.lemurs/config.yaml)")
	pf.StringVar(&flagData, "data", "", "path to the weight observation CSV")
	pf.StringSliceVar(&flagTaxa, "taxa", nil, "taxon codes to keep (overrides config)")
	pf.IntVar(&flagSims, "sims", 0, "bootstrap simulation count (overrides config)")
	pf.Float64Var(&flagLvl, "level", 0, "bootstrap confidence level (overrides config)")
	pf.Uint64Var(&flagSeed, "seed", 0, "bootstrap random seed (overrides config)")

	root.AddCommand(newSummaryCmd(state))
	root.AddCommand(newAnalyzeCmd(state))
	root.AddCommand(newConfigCmd())
	return root
}

// Execute runs the root command. It is the entry point called by main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
