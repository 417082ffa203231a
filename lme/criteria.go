package lme

import (
	"math"
)

// Criteria holds the information criteria of one fitted model. Lower is
// better for both; AIC favors predictive fit, BIC penalizes parameter count
// more heavily once n exceeds about eight observations.
type Criteria struct {
	AIC    float64
	BIC    float64
	Params int
	Obs    int
}

// InformationCriteria computes AIC and BIC from the REML criterion. The
// parameter count is fixed effects plus one variance component per grouping
// factor plus the residual variance. Criteria computed from REML fits are
// comparable only between models fitted to the same observations.
func InformationCriteria(m *MixedModel) (Criteria, error) {
	crit, err := m.Criterion()
	if err != nil {
		return Criteria{}, err
	}
	n := m.NumObservations()
	k := m.NumTerms() + len(m.design.Groupings) + 1
	return Criteria{
		AIC:    crit + 2*float64(k),
		BIC:    crit + float64(k)*math.Log(float64(n)),
		Params: k,
		Obs:    n,
	}, nil
}
