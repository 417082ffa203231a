package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/drewgille/lemurs/dataset"
	"github.com/drewgille/lemurs/pkg/log"
	"github.com/drewgille/lemurs/report"
)

func newSummaryCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Exploratory tables: observation counts and peak adult weights",
		Long: `Summarize the filtered observations before any model is fitted:
observation counts per taxon and per taxon/sex, then the mean of each
individual's maximum recorded weight, grouped by the candidate predictors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := loadObservations(state)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			counts, err := dataset.CountByGroup(tbl, dataset.ColTaxon)
			if err != nil {
				return err
			}
			if err := report.Counts(out, "Observations per taxon", counts); err != nil {
				return err
			}

			counts, err = dataset.CountByGroup(tbl, dataset.ColTaxon, dataset.ColSex)
			if err != nil {
				return err
			}
			if err := report.Counts(out, "Observations per taxon and sex", counts); err != nil {
				return err
			}

			// One row per individual: their heaviest recorded weight.
			peaks, err := dataset.PerIndividualMax(tbl, dataset.ColWeight)
			if err != nil {
				return err
			}
			state.logger.Info("per-individual maxima",
				slog.String(log.StageKey, "summary"),
				slog.Int(log.IndividualsKey, peaks.Rows()))

			groupSets := [][]string{
				{dataset.ColTaxon},
				{dataset.ColTaxon, dataset.ColSex},
				{dataset.ColTaxon, dataset.ColAgeCategory},
			}
			titles := []string{
				"Mean peak weight (g) by taxon",
				"Mean peak weight (g) by taxon and sex",
				"Mean peak weight (g) by taxon and age category",
			}
			for i, cols := range groupSets {
				means, err := dataset.MeanOfMaxByGroup(peaks, dataset.ColWeight, cols...)
				if err != nil {
					return err
				}
				if err := report.Means(out, titles[i], means); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
