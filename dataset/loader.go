package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/drewgille/lemurs/pkg/errors"
)

// Canonical column names of the weight observation file. The loader enforces
// these as a schema contract.
const (
	ColIndividual  = "dlc_id"
	ColTaxon       = "taxon"
	ColSex         = "sex"
	ColPregnancy   = "preg_status"
	ColWeight      = "weight_g"
	ColAgeMonths   = "age_at_wt_mo"
	ColAgeCategory = "age_category" // optional; see WithAgeCategory
)

// Categorical sentinel values used by the source data.
const (
	SexMale         = "M"
	SexFemale       = "F"
	SexUndetermined = "ND"

	Pregnant    = "P"
	NotPregnant = "NP"

	AgeAdult    = "adult"
	AgeJuvenile = "juvenile"
)

type columnSpec struct {
	name string
	kind Kind
}

// requiredSchema is the loader's column contract: names and types that must
// be present in the source file.
var requiredSchema = []columnSpec{
	{ColIndividual, Categorical},
	{ColTaxon, Categorical},
	{ColSex, Categorical},
	{ColPregnancy, Categorical},
	{ColWeight, Numeric},
	{ColAgeMonths, Numeric},
}

// ReadCSV loads the observation table from a comma-delimited file.
// A missing or unreadable file yields a DataUnavailableError; a header or
// cell that violates the schema contract yields a SchemaMismatchError.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataUnavailableError(path, "open failed", err)
	}
	defer func() { _ = f.Close() }()

	tbl, err := ReadCSVFrom(f)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.NewDataUnavailableError(path, "file is empty", nil)
		}
		return nil, err
	}
	return tbl, nil
}

// ReadCSVFrom loads the observation table from a reader. Columns beyond the
// required schema are carried along as categorical columns; age_category is
// recognized and kept when present.
func ReadCSVFrom(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "read header")
	}

	colPos := make(map[string]int, len(header))
	for i, name := range header {
		colPos[name] = i
	}

	kinds := make(map[string]Kind, len(header))
	for _, name := range header {
		kinds[name] = Categorical
	}
	for _, spec := range requiredSchema {
		if _, ok := colPos[spec.name]; !ok {
			return nil, errors.NewSchemaMismatchError(spec.name, 0, "required column missing from header")
		}
		kinds[spec.name] = spec.kind
	}

	floats := make(map[string][]float64)
	labels := make(map[string][]string)

	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read row %d", row+1)
		}
		row++
		for _, name := range header {
			cell := record[colPos[name]]
			if kinds[name] == Numeric {
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, errors.NewSchemaMismatchError(name, row, "cell is not numeric: "+cell)
				}
				floats[name] = append(floats[name], v)
			} else {
				labels[name] = append(labels[name], cell)
			}
		}
	}

	if row == 0 {
		return nil, errors.Wrap(errors.ErrEmptyTable, "csv has a header but no rows")
	}

	cols := make([]Column, 0, len(header))
	for _, name := range header {
		if kinds[name] == Numeric {
			cols = append(cols, Column{Name: name, Kind: Numeric, Floats: floats[name]})
		} else {
			cols = append(cols, Column{Name: name, Kind: Categorical, Labels: labels[name]})
		}
	}
	return NewTable(cols...)
}

// WithAgeCategory returns a table that has an age_category column. When the
// source already carries one it is returned unchanged; otherwise the column
// is derived from age at weighing, with individuals at or above adultMonths
// classed as adult and the rest as juvenile.
func WithAgeCategory(t *Table, adultMonths float64) (*Table, error) {
	if t.HasColumn(ColAgeCategory) {
		return t, nil
	}
	if adultMonths <= 0 {
		return nil, errors.NewValidationError("adultMonths", "must be positive", adultMonths)
	}
	ages, err := t.Numeric(ColAgeMonths)
	if err != nil {
		return nil, err
	}
	categories := make([]string, len(ages))
	for i, age := range ages {
		if age >= adultMonths {
			categories[i] = AgeAdult
		} else {
			categories[i] = AgeJuvenile
		}
	}
	return t.WithColumn(Column{Name: ColAgeCategory, Kind: Categorical, Labels: categories})
}
