package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// writeFixtureCSV builds two taxa with four individuals each, three
// observations per individual, plus rows the filters must drop: one
// undetermined sex and one out-of-scope taxon.
func writeFixtureCSV(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("dlc_id,taxon,sex,preg_status,weight_g,age_at_wt_mo\n")

	type indiv struct {
		id, taxon, sex string
		base, slope    float64
	}
	individuals := []indiv{
		{"o1", "OGG", "F", 920, 14},
		{"o2", "OGG", "F", 960, 12},
		{"o3", "OGG", "M", 900, 13},
		{"o4", "OGG", "M", 940, 15},
		{"l1", "LCAT", "F", 2350, 22},
		{"l2", "LCAT", "F", 2410, 20},
		{"l3", "LCAT", "M", 2290, 24},
		{"l4", "LCAT", "M", 2330, 21},
	}
	for _, ind := range individuals {
		for _, age := range []float64{6, 12, 18} {
			preg := "NP"
			if ind.sex == "F" && age == 18 && (ind.id == "o1" || ind.id == "l1") {
				preg = "P"
			}
			weight := ind.base + ind.slope*age
			fmt.Fprintf(&b, "%s,%s,%s,%s,%.1f,%.1f\n", ind.id, ind.taxon, ind.sex, preg, weight, age)
		}
	}
	b.WriteString("x1,OGG,ND,NP,1000,12\n")
	b.WriteString("p1,PCOQ,F,NP,3100,24\n")

	path := filepath.Join(t.TempDir(), "weights.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestSummaryCommand(t *testing.T) {
	data := writeFixtureCSV(t)

	out, err := execute(t, "summary",
		"--data", data, "--taxa", "OGG,LCAT")
	require.NoError(t, err)

	assert.Contains(t, out, "Observations per taxon")
	assert.Contains(t, out, "Observations per taxon and sex")
	assert.Contains(t, out, "Mean peak weight (g) by taxon")
	assert.Contains(t, out, "OGG")
	assert.Contains(t, out, "LCAT")
	// The dropped rows never surface.
	assert.NotContains(t, out, "PCOQ")
	assert.NotContains(t, out, "ND")
	// Twelve observations per taxon after filtering.
	assert.Contains(t, out, "12")
}

func TestAnalyzeCommand(t *testing.T) {
	data := writeFixtureCSV(t)

	out, err := execute(t, "analyze",
		"--data", data, "--taxa", "OGG,LCAT",
		"--sims", "20", "--level", "0.9", "--seed", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "Fixed effects: additive")
	assert.Contains(t, out, "Fixed effects: interaction")
	assert.Contains(t, out, "(Intercept)")
	assert.Contains(t, out, "Variance components")
	assert.Contains(t, out, "90% confidence intervals")
	assert.Contains(t, out, "Interval widths")
	assert.Contains(t, out, "Information criteria")
	assert.Contains(t, out, "advisory")
}

func TestAnalyzeSkipsUnidentifiableCandidate(t *testing.T) {
	// Every LCAT individual is male, so the taxon-by-sex interaction column
	// duplicates the taxon contrast. The interaction candidate is skipped;
	// the additive one still reports.
	var b strings.Builder
	b.WriteString("dlc_id,taxon,sex,preg_status,weight_g,age_at_wt_mo\n")
	type indiv struct {
		id, taxon, sex string
		base, slope    float64
	}
	individuals := []indiv{
		{"o1", "OGG", "F", 950, 14}, {"o2", "OGG", "M", 920, 17},
		{"l1", "LCAT", "M", 2400, 22}, {"l2", "LCAT", "M", 2330, 19},
	}
	for _, ind := range individuals {
		for _, age := range []float64{6, 12, 18} {
			fmt.Fprintf(&b, "%s,%s,%s,NP,%.1f,%.1f\n", ind.id, ind.taxon, ind.sex, ind.base+ind.slope*age, age)
		}
	}
	path := filepath.Join(t.TempDir(), "weights.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	out, err := execute(t, "analyze",
		"--data", path, "--taxa", "OGG,LCAT", "--sims", "20", "--seed", "5")
	require.NoError(t, err)

	assert.Contains(t, out, `candidate "interaction" skipped`)
	assert.Contains(t, out, "Fixed effects: additive")
	assert.Contains(t, out, "Information criteria")
	assert.NotContains(t, out, "Fixed effects: interaction")
}

func TestAnalyzeRejectsBadFlags(t *testing.T) {
	data := writeFixtureCSV(t)

	_, err := execute(t, "analyze", "--data", data, "--sims", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sims")

	_, err = execute(t, "analyze", "--data", data, "--level", "2")
	require.Error(t, err)
}

func TestAnalyzeRejectsPregnantMale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.csv")
	body := "dlc_id,taxon,sex,preg_status,weight_g,age_at_wt_mo\n" +
		"a1,OGG,M,P,1000,12\n" +
		"a1,OGG,M,NP,1010,18\n" +
		"a2,OGG,F,NP,980,12\n" +
		"a2,OGG,F,NP,1005,18\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := execute(t, "analyze", "--data", path, "--taxa", "OGG", "--sims", "20")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "combination assumed impossible")
}

func TestMissingDataPath(t *testing.T) {
	_, err := execute(t, "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data_path")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "config", "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote default config")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "sims: 1000")
}
