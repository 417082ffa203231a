package lme

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/drewgille/lemurs/dataset"
	"github.com/drewgille/lemurs/pkg/errors"
)

// GroupingDesign maps each observation row to a level of one grouping
// factor.
type GroupingDesign struct {
	Name   string
	Levels []string
	Index  []int // Index[row] is the position in Levels
}

// Design is the numeric realization of a Spec against a concrete table:
// fixed-effect matrix, response vector and grouping maps. It is read-only
// after construction; the bootstrap refits against it concurrently.
type Design struct {
	X         *mat.Dense
	Terms     []string
	Y         []float64
	Groupings []GroupingDesign

	// Omitted lists interaction columns excluded for zero observed support.
	Omitted []string
}

type termColumn struct {
	name   string
	values []float64
}

// BuildDesign validates the spec and constructs the design. Categorical
// terms are dummy-coded against their first sorted level. Interaction cells
// with zero support are omitted and recorded in Omitted, with a
// DroppedTermsWarning raised through the warning handler. A design whose
// fixed-effect matrix is not of full column rank fails with
// RankDeficientError.
func BuildDesign(tbl *dataset.Table, spec Spec) (*Design, error) {
	if err := spec.Validate(tbl); err != nil {
		return nil, err
	}
	n := tbl.Rows()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyTable, "BuildDesign")
	}

	y, err := tbl.Numeric(spec.Response)
	if err != nil {
		return nil, err
	}

	cols := []termColumn{interceptColumn(n)}

	for _, f := range spec.Fixed {
		expanded, err := mainEffectColumns(tbl, f)
		if err != nil {
			return nil, err
		}
		cols = append(cols, expanded...)
	}

	var omitted []string
	for _, pair := range spec.Interactions {
		expanded, dropped, err := interactionColumns(tbl, pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		cols = append(cols, expanded...)
		omitted = append(omitted, dropped...)
	}
	if len(omitted) > 0 {
		errors.Warn(errors.NewDroppedTermsWarning(omitted))
	}

	p := len(cols)
	X := mat.NewDense(n, p, nil)
	terms := make([]string, p)
	for j, c := range cols {
		terms[j] = c.name
		for i := 0; i < n; i++ {
			X.Set(i, j, c.values[i])
		}
	}

	if rank := matrixRank(X); rank < p {
		return nil, errors.NewRankDeficientError("BuildDesign", p, rank)
	}

	groupings := make([]GroupingDesign, len(spec.Groupings))
	for k, g := range spec.Groupings {
		gd, err := buildGrouping(tbl, g)
		if err != nil {
			return nil, err
		}
		groupings[k] = gd
	}

	yCopy := make([]float64, n)
	copy(yCopy, y)

	return &Design{X: X, Terms: terms, Y: yCopy, Groupings: groupings, Omitted: omitted}, nil
}

func interceptColumn(n int) termColumn {
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	return termColumn{name: "(Intercept)", values: ones}
}

// mainEffectColumns expands one fixed term: numeric columns pass through,
// categorical columns become one dummy per non-reference level.
func mainEffectColumns(tbl *dataset.Table, name string) ([]termColumn, error) {
	col, err := tbl.Column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind == dataset.Numeric {
		vals := make([]float64, len(col.Floats))
		copy(vals, col.Floats)
		return []termColumn{{name: name, values: vals}}, nil
	}
	return dummyColumns(name, col.Labels), nil
}

func dummyColumns(name string, labels []string) []termColumn {
	levels := distinctSorted(labels)
	cols := make([]termColumn, 0, len(levels)-1)
	for _, level := range levels[1:] {
		vals := make([]float64, len(labels))
		for i, l := range labels {
			if l == level {
				vals[i] = 1
			}
		}
		cols = append(cols, termColumn{name: name + "[" + level + "]", values: vals})
	}
	return cols
}

// interactionColumns expands one interaction pair. Categorical-by-
// categorical cells with no observed rows are omitted and reported in the
// second return value.
func interactionColumns(tbl *dataset.Table, a, b string) ([]termColumn, []string, error) {
	colA, err := tbl.Column(a)
	if err != nil {
		return nil, nil, err
	}
	colB, err := tbl.Column(b)
	if err != nil {
		return nil, nil, err
	}

	// Normalize so a categorical column, if any, comes first.
	if colA.Kind == dataset.Numeric && colB.Kind == dataset.Categorical {
		colA, colB = colB, colA
		a, b = b, a
	}

	switch {
	case colA.Kind == dataset.Numeric: // both numeric
		vals := make([]float64, len(colA.Floats))
		for i := range vals {
			vals[i] = colA.Floats[i] * colB.Floats[i]
		}
		return []termColumn{{name: a + ":" + b, values: vals}}, nil, nil

	case colB.Kind == dataset.Numeric: // categorical x numeric
		var cols []termColumn
		for _, dummy := range dummyColumns(a, colA.Labels) {
			vals := make([]float64, len(colB.Floats))
			for i := range vals {
				vals[i] = dummy.values[i] * colB.Floats[i]
			}
			cols = append(cols, termColumn{name: dummy.name + ":" + b, values: vals})
		}
		return cols, nil, nil

	default: // categorical x categorical
		var cols []termColumn
		var omitted []string
		dummiesA := dummyColumns(a, colA.Labels)
		dummiesB := dummyColumns(b, colB.Labels)
		for _, da := range dummiesA {
			for _, db := range dummiesB {
				name := da.name + ":" + db.name
				vals := make([]float64, len(da.values))
				support := 0
				for i := range vals {
					vals[i] = da.values[i] * db.values[i]
					if vals[i] != 0 {
						support++
					}
				}
				if support == 0 {
					omitted = append(omitted, name)
					continue
				}
				cols = append(cols, termColumn{name: name, values: vals})
			}
		}
		return cols, omitted, nil
	}
}

func buildGrouping(tbl *dataset.Table, name string) (GroupingDesign, error) {
	labels, err := columnLabels(tbl, name)
	if err != nil {
		return GroupingDesign{}, err
	}
	levels := distinctSorted(labels)
	pos := make(map[string]int, len(levels))
	for i, l := range levels {
		pos[l] = i
	}
	index := make([]int, len(labels))
	for i, l := range labels {
		index[i] = pos[l]
	}
	return GroupingDesign{Name: name, Levels: levels, Index: index}, nil
}

func distinctSorted(labels []string) []string {
	set := make(map[string]struct{})
	for _, l := range labels {
		set[l] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// matrixRank computes the column rank of X from its singular values.
func matrixRank(X *mat.Dense) int {
	var svd mat.SVD
	if !svd.Factorize(X, mat.SVDNone) {
		return 0
	}
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0
	}
	n, p := X.Dims()
	dim := n
	if p > dim {
		dim = p
	}
	tol := float64(dim) * values[0] * 1e-14
	rank := 0
	for _, sv := range values {
		if sv > tol {
			rank++
		}
	}
	return rank
}
