// Package report renders analysis results as fixed-width text tables.
//
// Every renderer writes to an io.Writer so command code can target stdout
// while tests capture a buffer. Columns are aligned with text/tabwriter and
// section headings are colored; color output degrades to plain text on
// non-terminal writers.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/drewgille/lemurs/dataset"
	"github.com/drewgille/lemurs/lme"
)

var heading = color.New(color.FgCyan, color.Bold)

// ModelCriteria pairs a fitted specification's name with its information
// criteria for side-by-side comparison.
type ModelCriteria struct {
	Name     string
	Criteria lme.Criteria
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// Counts renders a frequency table under the given title.
func Counts(w io.Writer, title string, rows []dataset.GroupCount) error {
	heading.Fprintln(w, title)
	tw := newTable(w)
	fmt.Fprintln(tw, "group\tn")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%d\n", row.Key, row.Count)
	}
	return tw.Flush()
}

// Means renders a grouped-mean table under the given title.
func Means(w io.Writer, title string, rows []dataset.GroupMean) error {
	heading.Fprintln(w, title)
	tw := newTable(w)
	fmt.Fprintln(tw, "group\tmean\tn")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%.1f\t%d\n", row.Key, row.Mean, row.N)
	}
	return tw.Flush()
}

// Coefficients renders the fixed-effect table of a fitted model.
func Coefficients(w io.Writer, m *lme.MixedModel) error {
	coefs, err := m.Coefficients()
	if err != nil {
		return err
	}
	heading.Fprintf(w, "Fixed effects: %s\n", m.Spec().Name)
	tw := newTable(w)
	fmt.Fprintln(tw, "term\testimate\tstd.err\tt")
	for _, c := range coefs {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.2f\n", c.Term, c.Estimate, c.StdErr, c.TValue)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if omitted := m.OmittedTerms(); len(omitted) > 0 {
		fmt.Fprintf(w, "omitted for zero support: %v\n", omitted)
	}
	return nil
}

// VarianceComponents renders the random-effect standard deviations and the
// residual standard deviation of a fitted model.
func VarianceComponents(w io.Writer, m *lme.MixedModel) error {
	comps, err := m.VarianceComponents()
	if err != nil {
		return err
	}
	sigma, err := m.ResidualStdDev()
	if err != nil {
		return err
	}
	heading.Fprintln(w, "Variance components")
	tw := newTable(w)
	fmt.Fprintln(tw, "grouping\tstd.dev\tvariance")
	for _, c := range comps {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\n", c.Grouping, c.StdDev, c.Variance)
	}
	fmt.Fprintf(tw, "residual\t%.3f\t%.3f\n", sigma, sigma*sigma)
	return tw.Flush()
}

// Intervals renders a bootstrap confidence interval table.
func Intervals(w io.Writer, ci *lme.CITable) error {
	heading.Fprintf(w, "Bootstrap %.0f%% confidence intervals (%d simulations", ci.Level*100, ci.Requested)
	if ci.Failed > 0 {
		heading.Fprintf(w, ", %d failed", ci.Failed)
	}
	heading.Fprintln(w, ")")
	tw := newTable(w)
	fmt.Fprintln(tw, "term\tlower\tupper")
	for _, iv := range ci.Intervals {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\n", iv.Term, iv.Lower, iv.Upper)
	}
	return tw.Flush()
}

// Widths renders interval widths, the precision measure used when comparing
// candidate specifications.
func Widths(w io.Writer, widths []lme.Width) error {
	heading.Fprintln(w, "Interval widths")
	tw := newTable(w)
	fmt.Fprintln(tw, "term\twidth")
	for _, wd := range widths {
		fmt.Fprintf(tw, "%s\t%.3f\n", wd.Term, wd.Width)
	}
	return tw.Flush()
}

// CriteriaTable renders AIC and BIC for each candidate model side by side.
// It ranks nothing: criterion differences are advisory and the final choice
// stays with the analyst.
func CriteriaTable(w io.Writer, rows []ModelCriteria) error {
	heading.Fprintln(w, "Information criteria")
	tw := newTable(w)
	fmt.Fprintln(tw, "model\tparams\tn\tAIC\tBIC")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.2f\n",
			row.Name, row.Criteria.Params, row.Criteria.Obs, row.Criteria.AIC, row.Criteria.BIC)
	}
	return tw.Flush()
}

// RandomEffects renders the predicted intercept deviations for one grouping
// factor.
func RandomEffects(w io.Writer, m *lme.MixedModel, grouping string) error {
	effects, err := m.RandomEffects(grouping)
	if err != nil {
		return err
	}
	heading.Fprintf(w, "Random intercepts: %s\n", grouping)
	tw := newTable(w)
	fmt.Fprintln(tw, "level\testimate")
	for _, e := range effects {
		fmt.Fprintf(tw, "%s\t%.3f\n", e.Level, e.Estimate)
	}
	return tw.Flush()
}
