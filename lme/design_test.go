package lme

import (
	"reflect"
	"testing"

	"github.com/drewgille/lemurs/dataset"
	"github.com/drewgille/lemurs/pkg/errors"
)

func TestBuildDesignTermExpansion(t *testing.T) {
	tbl := weightFixture(t)

	design, err := BuildDesign(tbl, Spec{
		Name:      "additive",
		Response:  dataset.ColWeight,
		Fixed:     []string{dataset.ColTaxon, dataset.ColSex, dataset.ColAgeMonths},
		Groupings: []string{dataset.ColIndividual},
	})
	if err != nil {
		t.Fatalf("BuildDesign: %v", err)
	}

	want := []string{"(Intercept)", "taxon[B]", "sex[M]", "age_at_wt_mo"}
	if !reflect.DeepEqual(design.Terms, want) {
		t.Errorf("Terms = %v, want %v", design.Terms, want)
	}

	n, p := design.X.Dims()
	if n != 12 || p != 4 {
		t.Errorf("X dims = %dx%d, want 12x4", n, p)
	}

	// Dummy column taxon[B] is 1 exactly on the 6 taxon-B rows.
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += design.X.At(i, 1)
	}
	if sum != 6 {
		t.Errorf("taxon[B] dummy sums to %v, want 6", sum)
	}

	if len(design.Groupings) != 1 || len(design.Groupings[0].Levels) != 4 {
		t.Fatalf("grouping = %+v, want dlc_id with 4 levels", design.Groupings)
	}
}

func TestBuildDesignOmitsZeroSupportInteraction(t *testing.T) {
	tbl := weightFixture(t)

	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(func(w error) {})

	// No male-pregnant rows exist, so the sex[M]:preg_status[P] cell must be
	// excluded at design time without a fitting error.
	design, err := BuildDesign(tbl, Spec{
		Name:         "interaction",
		Response:     dataset.ColWeight,
		Fixed:        []string{dataset.ColSex, dataset.ColPregnancy},
		Interactions: [][2]string{{dataset.ColSex, dataset.ColPregnancy}},
		Groupings:    []string{dataset.ColIndividual},
	})
	if err != nil {
		t.Fatalf("BuildDesign: %v", err)
	}

	if !reflect.DeepEqual(design.Omitted, []string{"sex[M]:preg_status[P]"}) {
		t.Errorf("Omitted = %v, want the zero-support cell", design.Omitted)
	}
	for _, term := range design.Terms {
		if term == "sex[M]:preg_status[P]" {
			t.Error("zero-support interaction column present in the design")
		}
	}

	var dropped *errors.DroppedTermsWarning
	found := false
	for _, w := range warned {
		if errors.As(w, &dropped) {
			found = true
		}
	}
	if !found {
		t.Error("no DroppedTermsWarning raised for the omitted cell")
	}
}

func TestBuildDesignSupportedInteraction(t *testing.T) {
	tbl := weightFixture(t)

	design, err := BuildDesign(tbl, Spec{
		Name:         "taxon-by-sex",
		Response:     dataset.ColWeight,
		Fixed:        []string{dataset.ColTaxon, dataset.ColSex},
		Interactions: [][2]string{{dataset.ColTaxon, dataset.ColSex}},
		Groupings:    []string{dataset.ColIndividual},
	})
	if err != nil {
		t.Fatalf("BuildDesign: %v", err)
	}
	want := []string{"(Intercept)", "taxon[B]", "sex[M]", "taxon[B]:sex[M]"}
	if !reflect.DeepEqual(design.Terms, want) {
		t.Errorf("Terms = %v, want %v", design.Terms, want)
	}
	if len(design.Omitted) != 0 {
		t.Errorf("Omitted = %v, want none", design.Omitted)
	}
}

func TestBuildDesignCategoricalByNumericInteraction(t *testing.T) {
	tbl := weightFixture(t)

	design, err := BuildDesign(tbl, Spec{
		Name:         "taxon-by-age",
		Response:     dataset.ColWeight,
		Fixed:        []string{dataset.ColTaxon, dataset.ColAgeMonths},
		Interactions: [][2]string{{dataset.ColTaxon, dataset.ColAgeMonths}},
	})
	if err != nil {
		t.Fatalf("BuildDesign: %v", err)
	}
	want := []string{"(Intercept)", "taxon[B]", "age_at_wt_mo", "taxon[B]:age_at_wt_mo"}
	if !reflect.DeepEqual(design.Terms, want) {
		t.Errorf("Terms = %v, want %v", design.Terms, want)
	}
}

func TestBuildDesignRankDeficient(t *testing.T) {
	// Two numeric columns that are exact copies of each other.
	tbl, err := dataset.NewTable(
		dataset.Column{Name: "y", Kind: dataset.Numeric, Floats: []float64{1, 2, 3, 4, 5, 6}},
		dataset.Column{Name: "x1", Kind: dataset.Numeric, Floats: []float64{1, 1, 2, 2, 3, 3}},
		dataset.Column{Name: "x2", Kind: dataset.Numeric, Floats: []float64{1, 1, 2, 2, 3, 3}},
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}

	_, derr := BuildDesign(tbl, Spec{
		Response: "y",
		Fixed:    []string{"x1", "x2"},
	})
	var target *errors.RankDeficientError
	if !errors.As(derr, &target) {
		t.Fatalf("BuildDesign = %v, want RankDeficientError", derr)
	}
	if target.Terms != 3 || target.Rank != 2 {
		t.Errorf("RankDeficientError = %+v, want 3 terms rank 2", target)
	}
}
