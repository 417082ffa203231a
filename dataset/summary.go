package dataset

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/drewgille/lemurs/pkg/errors"
)

// GroupKeySeparator joins the labels of a composite group key.
const GroupKeySeparator = " / "

// GroupCount is one row of a frequency table.
type GroupCount struct {
	Key   string
	Count int
}

// GroupMean is one row of a grouped-mean table.
type GroupMean struct {
	Key  string
	Mean float64
	N    int
}

func groupKeys(t *Table, groupCols []string) ([]string, error) {
	if len(groupCols) == 0 {
		return nil, errors.NewValidationError("groupCols", "at least one grouping column required", groupCols)
	}
	labelCols := make([][]string, len(groupCols))
	for i, name := range groupCols {
		labels, err := t.Categorical(name)
		if err != nil {
			return nil, err
		}
		labelCols[i] = labels
	}
	keys := make([]string, t.Rows())
	parts := make([]string, len(groupCols))
	for r := 0; r < t.Rows(); r++ {
		for i := range groupCols {
			parts[i] = labelCols[i][r]
		}
		keys[r] = strings.Join(parts, GroupKeySeparator)
	}
	return keys, nil
}

// CountByGroup builds a frequency table over one or more categorical
// columns, sorted by descending count with ties broken by key. The counts
// always sum to the input row count.
func CountByGroup(t *Table, groupCols ...string) ([]GroupCount, error) {
	keys, err := groupKeys(t, groupCols)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, k := range keys {
		counts[k]++
	}

	out := make([]GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// MeanOfMaxByGroup computes the arithmetic mean of valueCol within each
// group of one or more categorical columns, sorted by descending mean. It is
// intended to run on the per-individual maxima table, ranking candidate
// predictors by observed effect size. An empty input is a NoDataError, never
// a silent zero.
func MeanOfMaxByGroup(t *Table, valueCol string, groupCols ...string) ([]GroupMean, error) {
	if t.Rows() == 0 {
		return nil, errors.NewNoDataError("MeanOfMaxByGroup", "")
	}
	values, err := t.Numeric(valueCol)
	if err != nil {
		return nil, err
	}
	keys, err := groupKeys(t, groupCols)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]float64)
	for r, k := range keys {
		grouped[k] = append(grouped[k], values[r])
	}

	out := make([]GroupMean, 0, len(grouped))
	for k, vs := range grouped {
		out = append(out, GroupMean{Key: k, Mean: stat.Mean(vs, nil), N: len(vs)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean > out[j].Mean
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// SupportCount returns the number of rows matching an exact combination of
// categorical values. cols and vals are parallel.
func SupportCount(t *Table, cols, vals []string) (int, error) {
	if len(cols) == 0 || len(cols) != len(vals) {
		return 0, errors.NewValidationError("cols", "cols and vals must be parallel and non-empty", len(cols))
	}
	labelCols := make([][]string, len(cols))
	for i, name := range cols {
		labels, err := t.Categorical(name)
		if err != nil {
			return 0, err
		}
		labelCols[i] = labels
	}
	count := 0
rows:
	for r := 0; r < t.Rows(); r++ {
		for i := range cols {
			if labelCols[i][r] != vals[i] {
				continue rows
			}
		}
		count++
	}
	return count, nil
}

// AssertZeroSupport fails loudly when a combination assumed impossible is in
// fact present. The canonical use is the male-and-pregnant check before
// model fitting.
func AssertZeroSupport(t *Table, cols, vals []string) error {
	n, err := SupportCount(t, cols, vals)
	if err != nil {
		return err
	}
	if n > 0 {
		return errors.NewValidationError(
			strings.Join(cols, "x"),
			"combination assumed impossible has observed rows",
			strings.Join(vals, GroupKeySeparator)+" ("+strconv.Itoa(n)+" rows)",
		)
	}
	return nil
}
