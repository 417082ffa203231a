package dataset

import (
	"github.com/drewgille/lemurs/pkg/errors"
)

// FilterByTaxon returns the rows whose taxon is in allowed, preserving row
// order and all columns. Excluded taxa are removed outright, not flagged.
func FilterByTaxon(t *Table, allowed []string) (*Table, error) {
	taxa, err := t.Categorical(ColTaxon)
	if err != nil {
		return nil, err
	}
	if len(allowed) == 0 {
		return nil, errors.NewValidationError("allowed", "taxon set must not be empty", allowed)
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}

	keep := make([]int, 0, t.Rows())
	for i, taxon := range taxa {
		if _, ok := allowedSet[taxon]; ok {
			keep = append(keep, i)
		}
	}
	return t.subset(keep), nil
}

// FilterValidSex removes rows whose sex is the undetermined sentinel. The
// fitting stage requires this as a hard precondition.
func FilterValidSex(t *Table) (*Table, error) {
	sexes, err := t.Categorical(ColSex)
	if err != nil {
		return nil, err
	}
	keep := make([]int, 0, t.Rows())
	for i, sex := range sexes {
		if sex != SexUndetermined {
			keep = append(keep, i)
		}
	}
	return t.subset(keep), nil
}

// PerIndividualMax groups rows by individual identifier and reduces each
// group to one row carrying the maximum of valueCol plus every categorical
// column, taken from the group's first row. Categorical columns are assumed
// constant within an individual; that is a data-quality precondition, not
// something this function validates. Individuals appear in first-observation
// order. An individual with a single record keeps that record's value, and
// running the reduction on its own output is a no-op.
func PerIndividualMax(t *Table, valueCol string) (*Table, error) {
	ids, err := t.Categorical(ColIndividual)
	if err != nil {
		return nil, err
	}
	values, err := t.Numeric(valueCol)
	if err != nil {
		return nil, err
	}
	if t.Rows() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyTable, "PerIndividualMax")
	}

	firstRow := make(map[string]int)
	order := make([]string, 0)
	maxima := make(map[string]float64)
	for i, id := range ids {
		if _, seen := firstRow[id]; !seen {
			firstRow[id] = i
			order = append(order, id)
			maxima[id] = values[i]
			continue
		}
		if values[i] > maxima[id] {
			maxima[id] = values[i]
		}
	}

	cols := make([]Column, 0, len(t.cols))
	for _, c := range t.cols {
		switch {
		case c.Name == valueCol:
			out := make([]float64, len(order))
			for j, id := range order {
				out[j] = maxima[id]
			}
			cols = append(cols, Column{Name: c.Name, Kind: Numeric, Floats: out})
		case c.Kind == Categorical:
			out := make([]string, len(order))
			for j, id := range order {
				out[j] = c.Labels[firstRow[id]]
			}
			cols = append(cols, Column{Name: c.Name, Kind: Categorical, Labels: out})
		default:
			// Other numeric columns (e.g. age) vary within an individual and
			// have no well-defined per-individual value; they are dropped.
		}
	}
	return NewTable(cols...)
}
