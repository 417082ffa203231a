package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/drewgille/lemurs/dataset"
	"github.com/drewgille/lemurs/lme"
	"github.com/drewgille/lemurs/pkg/errors"
	"github.com/drewgille/lemurs/pkg/log"
	"github.com/drewgille/lemurs/report"
)

// candidateSpecs returns the two models the analysis compares: an additive
// baseline and a variant adding taxon-by-sex and taxon-by-age interactions.
// Both carry a random intercept per individual for the repeated measures and
// a second one per raw age value, absorbing age-specific variance the fixed
// age term does not capture.
func candidateSpecs() []lme.Spec {
	groupings := []string{dataset.ColIndividual, dataset.ColAgeMonths}
	fixed := []string{
		dataset.ColTaxon, dataset.ColSex,
		dataset.ColPregnancy, dataset.ColAgeMonths,
	}
	return []lme.Spec{
		{
			Name:      "additive",
			Response:  dataset.ColWeight,
			Fixed:     fixed,
			Groupings: groupings,
		},
		{
			Name:     "interaction",
			Response: dataset.ColWeight,
			Fixed:    fixed,
			Interactions: [][2]string{
				{dataset.ColTaxon, dataset.ColSex},
				{dataset.ColTaxon, dataset.ColAgeMonths},
			},
			Groupings: groupings,
		},
	}
}

func newAnalyzeCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Fit candidate mixed models and compare them",
		Long: `Fit each candidate linear mixed-effects model by REML, bootstrap
confidence intervals for its coefficients, and print information criteria
side by side. The command reports; it does not pick a winner.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := loadObservations(state)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			// Pregnant males would mean a coding error upstream, not a
			// modeling question. Refuse to continue on one.
			if err := dataset.AssertZeroSupport(tbl,
				[]string{dataset.ColSex, dataset.ColPregnancy},
				[]string{dataset.SexMale, dataset.Pregnant}); err != nil {
				return err
			}

			counts, err := dataset.CountByGroup(tbl, dataset.ColTaxon)
			if err != nil {
				return err
			}
			if err := report.Counts(out, "Observations per taxon", counts); err != nil {
				return err
			}
			peaks, err := dataset.PerIndividualMax(tbl, dataset.ColWeight)
			if err != nil {
				return err
			}
			means, err := dataset.MeanOfMaxByGroup(peaks, dataset.ColWeight, dataset.ColTaxon, dataset.ColSex)
			if err != nil {
				return err
			}
			if err := report.Means(out, "Mean peak weight (g) by taxon and sex", means); err != nil {
				return err
			}
			fmt.Fprintln(out)

			fitted := 0
			criteria := make([]report.ModelCriteria, 0, 2)
			for _, spec := range candidateSpecs() {
				start := time.Now()
				m, err := lme.Fit(tbl, spec)
				if err != nil {
					// A candidate the data cannot identify is reported and
					// skipped; the remaining candidates still run.
					var singular *errors.SingularFitError
					var rankDef *errors.RankDeficientError
					if errors.As(err, &singular) || errors.As(err, &rankDef) {
						state.logger.Error("candidate skipped",
							slog.String(log.StageKey, "fit"),
							slog.String(log.ModelKey, spec.Name),
							log.ErrAttr(err))
						fmt.Fprintf(out, "candidate %q skipped: %v\n\n", spec.Name, err)
						continue
					}
					return err
				}
				crit, err := m.Criterion()
				if err != nil {
					return err
				}
				state.logger.Info("model fitted",
					slog.String(log.StageKey, "fit"),
					slog.String(log.ModelKey, spec.Name),
					slog.Int(log.TermsKey, m.NumTerms()),
					slog.Int(log.GroupingsKey, len(spec.Groupings)),
					slog.Float64(log.CriterionKey, crit),
					slog.Int64(log.DurationMsKey, time.Since(start).Milliseconds()))

				if err := report.Coefficients(out, m); err != nil {
					return err
				}
				if err := report.VarianceComponents(out, m); err != nil {
					return err
				}

				start = time.Now()
				ci, err := lme.ParametricBootstrapCI(m, state.cfg.Sims, state.cfg.Level, state.cfg.Seed)
				if err != nil {
					return err
				}
				state.logger.Info("bootstrap complete",
					slog.String(log.StageKey, "bootstrap"),
					slog.String(log.ModelKey, spec.Name),
					slog.Int(log.SimsKey, ci.Requested),
					slog.Int(log.FailedSimsKey, ci.Failed),
					slog.Float64(log.ConfidenceKey, ci.Level),
					slog.Int64(log.DurationMsKey, time.Since(start).Milliseconds()))

				if err := report.Intervals(out, ci); err != nil {
					return err
				}
				if err := report.Widths(out, lme.IntervalWidth(ci)); err != nil {
					return err
				}

				c, err := lme.InformationCriteria(m)
				if err != nil {
					return err
				}
				criteria = append(criteria, report.ModelCriteria{Name: spec.Name, Criteria: c})
				fitted++
				fmt.Fprintln(out)
			}
			if fitted == 0 {
				return errors.New("no candidate model could be fitted")
			}

			if err := report.CriteriaTable(out, criteria); err != nil {
				return err
			}
			fmt.Fprintln(out, "\nCriterion differences are advisory; choose between candidates on scientific grounds.")
			return nil
		},
	}
}
