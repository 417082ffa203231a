// Package lme fits linear mixed-effects models by restricted maximum
// likelihood and compares candidate specifications by parametric-bootstrap
// confidence intervals and information criteria.
//
// A model is described by a Spec: fixed-effect terms, pairwise interactions,
// and random-intercept grouping factors. Specs are plain data so candidate
// models can be constructed, validated and compared programmatically rather
// than parsed from formula strings.
package lme

import (
	"sort"
	"strconv"

	"github.com/drewgille/lemurs/dataset"
	"github.com/drewgille/lemurs/pkg/errors"
)

// Spec declares a mixed-model specification.
type Spec struct {
	// Name labels the candidate in reports and logs.
	Name string

	// Response is the numeric column being modeled.
	Response string

	// Fixed lists main-effect columns. Categorical columns are dummy-coded
	// against their first level (sorted order); numeric columns enter as-is.
	Fixed []string

	// Interactions lists pairwise interaction terms by column name. A
	// categorical-by-categorical cell with zero observed support is omitted
	// from the design explicitly rather than left for the fitting routine
	// to drop.
	Interactions [][2]string

	// Groupings lists random-intercept grouping factors by column name.
	// A numeric column may serve as a grouping factor; its distinct values
	// become levels.
	Groupings []string
}

// Validate checks the specification against a concrete table: the response
// must be numeric, every referenced column must exist, and every grouping
// factor must have at least two levels (a single-level factor cannot be
// separated from the residual and would produce a singular fit).
func (s Spec) Validate(tbl *dataset.Table) error {
	if s.Response == "" {
		return errors.NewValidationError("spec.Response", "response column required", s.Response)
	}
	if _, err := tbl.Numeric(s.Response); err != nil {
		return errors.Wrapf(err, "spec %q response", s.Name)
	}

	seen := make(map[string]bool, len(s.Fixed))
	for _, f := range s.Fixed {
		if seen[f] {
			return errors.NewValidationError("spec.Fixed", "duplicate fixed term", f)
		}
		seen[f] = true
		if !tbl.HasColumn(f) {
			return errors.Wrapf(errors.ErrUnknownColumn, "spec %q fixed term %q", s.Name, f)
		}
		if f == s.Response {
			return errors.NewValidationError("spec.Fixed", "response cannot be a fixed term", f)
		}
	}

	for _, pair := range s.Interactions {
		for _, f := range []string{pair[0], pair[1]} {
			if !tbl.HasColumn(f) {
				return errors.Wrapf(errors.ErrUnknownColumn, "spec %q interaction term %q", s.Name, f)
			}
		}
		if pair[0] == pair[1] {
			return errors.NewValidationError("spec.Interactions", "interaction requires two distinct columns", pair[0])
		}
	}

	for _, g := range s.Groupings {
		levels, err := groupingLevels(tbl, g)
		if err != nil {
			return errors.Wrapf(err, "spec %q grouping", s.Name)
		}
		if len(levels) < 2 {
			return errors.NewSingularFitError(g, len(levels), "grouping factor needs at least two levels")
		}
	}
	return nil
}

// groupingLevels returns the sorted distinct levels of a grouping column.
// Numeric columns are allowed; their values are formatted as labels.
func groupingLevels(tbl *dataset.Table, name string) ([]string, error) {
	labels, err := columnLabels(tbl, name)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, l := range labels {
		set[l] = struct{}{}
	}
	levels := make([]string, 0, len(set))
	for l := range set {
		levels = append(levels, l)
	}
	sort.Strings(levels)
	return levels, nil
}

// columnLabels reads any column as labels: categorical columns directly,
// numeric columns via shortest-roundtrip formatting.
func columnLabels(tbl *dataset.Table, name string) ([]string, error) {
	col, err := tbl.Column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind == dataset.Categorical {
		return col.Labels, nil
	}
	labels := make([]string, len(col.Floats))
	for i, v := range col.Floats {
		labels[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return labels, nil
}
