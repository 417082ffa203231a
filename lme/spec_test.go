package lme

import (
	"testing"

	"github.com/drewgille/lemurs/dataset"
	"github.com/drewgille/lemurs/pkg/errors"
)

// weightFixture builds a balanced synthetic table: 4 individuals, 3
// time-points each, taxon A/B, sex F/M, and no male-pregnant rows.
func weightFixture(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.NewTable(
		dataset.Column{Name: dataset.ColIndividual, Kind: dataset.Categorical, Labels: []string{
			"a1", "a1", "a1", "a2", "a2", "a2", "b1", "b1", "b1", "b2", "b2", "b2",
		}},
		dataset.Column{Name: dataset.ColTaxon, Kind: dataset.Categorical, Labels: []string{
			"A", "A", "A", "A", "A", "A", "B", "B", "B", "B", "B", "B",
		}},
		dataset.Column{Name: dataset.ColSex, Kind: dataset.Categorical, Labels: []string{
			"F", "F", "F", "M", "M", "M", "F", "F", "F", "M", "M", "M",
		}},
		dataset.Column{Name: dataset.ColPregnancy, Kind: dataset.Categorical, Labels: []string{
			"NP", "P", "NP", "NP", "NP", "NP", "NP", "P", "NP", "NP", "NP", "NP",
		}},
		dataset.Column{Name: dataset.ColWeight, Kind: dataset.Numeric, Floats: []float64{
			1053, 1088, 1124, 1011, 1042, 1081,
			3066, 3094, 3139, 2975, 3021, 3052,
		}},
		dataset.Column{Name: dataset.ColAgeMonths, Kind: dataset.Numeric, Floats: []float64{
			6, 12, 18, 6, 12, 18, 6, 12, 18, 6, 12, 18,
		}},
	)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return tbl
}

func TestSpecValidate(t *testing.T) {
	tbl := weightFixture(t)

	tests := []struct {
		name    string
		spec    Spec
		wantErr func(error) bool
	}{
		{
			name: "valid additive spec",
			spec: Spec{
				Name:      "additive",
				Response:  dataset.ColWeight,
				Fixed:     []string{dataset.ColTaxon, dataset.ColSex},
				Groupings: []string{dataset.ColIndividual},
			},
			wantErr: nil,
		},
		{
			name: "unknown fixed column",
			spec: Spec{
				Response: dataset.ColWeight,
				Fixed:    []string{"habitat"},
			},
			wantErr: func(err error) bool { return errors.Is(err, errors.ErrUnknownColumn) },
		},
		{
			name: "categorical response",
			spec: Spec{
				Response: dataset.ColTaxon,
			},
			wantErr: func(err error) bool { return errors.Is(err, errors.ErrColumnKind) },
		},
		{
			name: "duplicate fixed term",
			spec: Spec{
				Response: dataset.ColWeight,
				Fixed:    []string{dataset.ColTaxon, dataset.ColTaxon},
			},
			wantErr: func(err error) bool {
				var target *errors.ValidationError
				return errors.As(err, &target)
			},
		},
		{
			name: "self interaction",
			spec: Spec{
				Response:     dataset.ColWeight,
				Interactions: [][2]string{{dataset.ColTaxon, dataset.ColTaxon}},
			},
			wantErr: func(err error) bool {
				var target *errors.ValidationError
				return errors.As(err, &target)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate(tbl)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !tt.wantErr(err) {
				t.Errorf("Validate() = %v, want matching error", err)
			}
		})
	}
}

func TestSpecValidateSingularGrouping(t *testing.T) {
	// A single-individual table makes dlc_id a one-level grouping factor.
	tbl, err := dataset.NewTable(
		dataset.Column{Name: dataset.ColIndividual, Kind: dataset.Categorical, Labels: []string{"a1", "a1", "a1"}},
		dataset.Column{Name: dataset.ColWeight, Kind: dataset.Numeric, Floats: []float64{900, 950, 1000}},
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}

	spec := Spec{
		Response:  dataset.ColWeight,
		Groupings: []string{dataset.ColIndividual},
	}
	verr := spec.Validate(tbl)
	var target *errors.SingularFitError
	if !errors.As(verr, &target) {
		t.Fatalf("Validate() = %v, want SingularFitError", verr)
	}
	if target.Grouping != dataset.ColIndividual || target.Levels != 1 {
		t.Errorf("SingularFitError = %+v, want dlc_id with 1 level", target)
	}
}

func TestNumericColumnAsGroupingFactor(t *testing.T) {
	tbl := weightFixture(t)
	// Age at weighing used as a grouping factor, not a continuous predictor:
	// three distinct time-points become three levels.
	spec := Spec{
		Response:  dataset.ColWeight,
		Fixed:     []string{dataset.ColTaxon},
		Groupings: []string{dataset.ColAgeMonths},
	}
	if err := spec.Validate(tbl); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	gd, err := buildGrouping(tbl, dataset.ColAgeMonths)
	if err != nil {
		t.Fatalf("buildGrouping: %v", err)
	}
	if len(gd.Levels) != 3 {
		t.Errorf("age grouping has %d levels, want 3", len(gd.Levels))
	}
}
