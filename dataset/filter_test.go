package dataset

import (
	"reflect"
	"testing"
)

func observationFixture(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(
		Column{Name: ColIndividual, Kind: Categorical, Labels: []string{"a1", "a1", "a2", "b1", "b1", "c1"}},
		Column{Name: ColTaxon, Kind: Categorical, Labels: []string{"OGG", "OGG", "OGG", "PCOQ", "PCOQ", "LCAT"}},
		Column{Name: ColSex, Kind: Categorical, Labels: []string{"F", "F", "M", "F", "F", "ND"}},
		Column{Name: ColPregnancy, Kind: Categorical, Labels: []string{"NP", "P", "NP", "NP", "P", "NP"}},
		Column{Name: ColWeight, Kind: Numeric, Floats: []float64{900, 1100, 1250, 3100, 3300, 2200}},
		Column{Name: ColAgeMonths, Kind: Numeric, Floats: []float64{12, 24, 48, 30, 42, 18}},
	)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return tbl
}

func TestFilterByTaxonSubsetAndOrder(t *testing.T) {
	tbl := observationFixture(t)

	got, err := FilterByTaxon(tbl, []string{"OGG", "PCOQ"})
	if err != nil {
		t.Fatalf("FilterByTaxon: %v", err)
	}
	if got.Rows() != 5 {
		t.Errorf("Rows() = %d, want 5", got.Rows())
	}

	taxa, _ := got.Categorical(ColTaxon)
	for _, taxon := range taxa {
		if taxon != "OGG" && taxon != "PCOQ" {
			t.Errorf("excluded taxon %q survived the filter", taxon)
		}
	}

	// Remaining rows keep source order and untouched values.
	weights, _ := got.Numeric(ColWeight)
	if !reflect.DeepEqual(weights, []float64{900, 1100, 1250, 3100, 3300}) {
		t.Errorf("weights reordered or mutated: %v", weights)
	}

	// Columns are all carried over.
	if !reflect.DeepEqual(got.ColumnNames(), tbl.ColumnNames()) {
		t.Errorf("columns changed: %v", got.ColumnNames())
	}
}

func TestFilterByTaxonNoOpOnFullSet(t *testing.T) {
	tbl := observationFixture(t)
	got, err := FilterByTaxon(tbl, []string{"OGG", "PCOQ", "LCAT"})
	if err != nil {
		t.Fatalf("FilterByTaxon: %v", err)
	}
	if got.Rows() != tbl.Rows() {
		t.Errorf("full-set filter dropped rows: %d -> %d", tbl.Rows(), got.Rows())
	}
}

func TestFilterValidSexDropsSentinel(t *testing.T) {
	tbl := observationFixture(t)
	got, err := FilterValidSex(tbl)
	if err != nil {
		t.Fatalf("FilterValidSex: %v", err)
	}
	if got.Rows() != 5 {
		t.Errorf("Rows() = %d, want 5", got.Rows())
	}
	sexes, _ := got.Categorical(ColSex)
	for _, s := range sexes {
		if s == SexUndetermined {
			t.Error("ND row survived FilterValidSex")
		}
	}
}

func TestPerIndividualMax(t *testing.T) {
	tbl := observationFixture(t)

	got, err := PerIndividualMax(tbl, ColWeight)
	if err != nil {
		t.Fatalf("PerIndividualMax: %v", err)
	}

	ids, _ := got.Categorical(ColIndividual)
	if !reflect.DeepEqual(ids, []string{"a1", "a2", "b1", "c1"}) {
		t.Fatalf("individuals = %v, want one row each in first-observation order", ids)
	}

	maxima, _ := got.Numeric(ColWeight)
	want := []float64{1100, 1250, 3300, 2200}
	if !reflect.DeepEqual(maxima, want) {
		t.Errorf("maxima = %v, want %v", maxima, want)
	}

	// Each maximum is an observed value and >= every observation of its
	// individual; single-observation individuals keep their only value.
	if maxima[1] != 1250 {
		t.Errorf("single-record individual a2 max = %v, want 1250", maxima[1])
	}

	// Group-invariant categorical columns are carried.
	taxa, _ := got.Categorical(ColTaxon)
	if !reflect.DeepEqual(taxa, []string{"OGG", "OGG", "PCOQ", "LCAT"}) {
		t.Errorf("taxa = %v", taxa)
	}

	// Varying numeric columns are dropped.
	if got.HasColumn(ColAgeMonths) {
		t.Error("age column should not survive the per-individual reduction")
	}
}

func TestPerIndividualMaxIdempotent(t *testing.T) {
	tbl := observationFixture(t)
	once, err := PerIndividualMax(tbl, ColWeight)
	if err != nil {
		t.Fatalf("first reduction: %v", err)
	}
	twice, err := PerIndividualMax(once, ColWeight)
	if err != nil {
		t.Fatalf("second reduction: %v", err)
	}

	idsOnce, _ := once.Categorical(ColIndividual)
	idsTwice, _ := twice.Categorical(ColIndividual)
	if !reflect.DeepEqual(idsOnce, idsTwice) {
		t.Errorf("ids changed on second run: %v vs %v", idsOnce, idsTwice)
	}
	maxOnce, _ := once.Numeric(ColWeight)
	maxTwice, _ := twice.Numeric(ColWeight)
	if !reflect.DeepEqual(maxOnce, maxTwice) {
		t.Errorf("maxima changed on second run: %v vs %v", maxOnce, maxTwice)
	}
}
