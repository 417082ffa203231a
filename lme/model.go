package lme

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/drewgille/lemurs/core/model"
	"github.com/drewgille/lemurs/dataset"
	"github.com/drewgille/lemurs/pkg/errors"
)

// Coefficient is one row of the fixed-effect table.
type Coefficient struct {
	Term     string
	Estimate float64
	StdErr   float64
	TValue   float64
}

// VarianceComponent is the estimated standard deviation of one random-effect
// grouping factor.
type VarianceComponent struct {
	Grouping string
	StdDev   float64
	Variance float64
}

// RandomEffect is the predicted intercept deviation of one level of a
// grouping factor (the best linear unbiased predictor).
type RandomEffect struct {
	Level    string
	Estimate float64
}

// MixedModel is the immutable artifact of one REML fit. It is created by
// Fit, queried by the comparison stage, and never mutated afterwards.
type MixedModel struct {
	model.Base

	spec   Spec
	design *Design
	fit    *remlFit
	ranef  map[string][]RandomEffect
}

const modelName = "MixedModel"

// Fit builds the design for spec against tbl and estimates the model by
// restricted maximum likelihood. Point estimates are deterministic for
// identical data and spec. A non-converged optimizer raises a
// ConvergenceWarning but still returns the fit; singular random-effect
// structures and rank-deficient designs fail outright.
func Fit(tbl *dataset.Table, spec Spec, opts ...Option) (*MixedModel, error) {
	cfg := newFitConfig(opts...)

	design, err := BuildDesign(tbl, spec)
	if err != nil {
		return nil, errors.Wrapf(err, "fit %q", spec.Name)
	}

	fit, err := solveREML(design, design.Y, cfg.startTheta, cfg.maxIterations)
	if err != nil {
		return nil, errors.Wrapf(err, "fit %q", spec.Name)
	}
	if !fit.converged {
		errors.Warn(errors.NewConvergenceWarning("REML/NelderMead", fit.iterations, "criterion tolerance not met"))
	}

	m := &MixedModel{
		spec:   spec,
		design: design,
		fit:    fit,
		ranef:  predictRandomEffects(design, fit),
	}
	m.SetFitted()
	return m, nil
}

// predictRandomEffects computes the BLUP intercept for every level of every
// grouping factor: theta_k^2 * sum over the level's rows of the whitened
// residual.
func predictRandomEffects(d *Design, fit *remlFit) map[string][]RandomEffect {
	out := make(map[string][]RandomEffect, len(d.Groupings))
	for k, g := range d.Groupings {
		t2 := fit.theta[k] * fit.theta[k]
		sums := make([]float64, len(g.Levels))
		for row, lvl := range g.Index {
			sums[lvl] += fit.vinvResid[row]
		}
		effects := make([]RandomEffect, len(g.Levels))
		for i, level := range g.Levels {
			effects[i] = RandomEffect{Level: level, Estimate: t2 * sums[i]}
		}
		out[g.Name] = effects
	}
	return out
}

// Spec returns the specification this model was fitted from.
func (m *MixedModel) Spec() Spec { return m.spec }

// NumObservations returns n.
func (m *MixedModel) NumObservations() int {
	n, _ := m.design.X.Dims()
	return n
}

// NumTerms returns the number of fixed-effect design columns, intercept
// included.
func (m *MixedModel) NumTerms() int {
	_, p := m.design.X.Dims()
	return p
}

// OmittedTerms returns interaction columns the design excluded for zero
// observed support.
func (m *MixedModel) OmittedTerms() []string { return m.design.Omitted }

// Coefficients returns the fixed-effect table: term, estimate, standard
// error and t statistic, in design order.
func (m *MixedModel) Coefficients() ([]Coefficient, error) {
	if err := m.Guard(modelName, "Coefficients"); err != nil {
		return nil, err
	}
	out := make([]Coefficient, len(m.design.Terms))
	for j, term := range m.design.Terms {
		est := m.fit.beta[j]
		se := m.fit.se[j]
		t := 0.0
		if se > 0 {
			t = est / se
		}
		out[j] = Coefficient{Term: term, Estimate: est, StdErr: se, TValue: t}
	}
	return out, nil
}

// VarianceComponents returns the estimated standard deviation of each
// grouping factor, in spec order.
func (m *MixedModel) VarianceComponents() ([]VarianceComponent, error) {
	if err := m.Guard(modelName, "VarianceComponents"); err != nil {
		return nil, err
	}
	sigma := m.residualStdDev()
	out := make([]VarianceComponent, len(m.design.Groupings))
	for k, g := range m.design.Groupings {
		sd := m.fit.theta[k] * sigma
		out[k] = VarianceComponent{Grouping: g.Name, StdDev: sd, Variance: sd * sd}
	}
	return out, nil
}

// ResidualStdDev returns the estimated residual standard deviation.
func (m *MixedModel) ResidualStdDev() (float64, error) {
	if err := m.Guard(modelName, "ResidualStdDev"); err != nil {
		return 0, err
	}
	return m.residualStdDev(), nil
}

func (m *MixedModel) residualStdDev() float64 {
	return math.Sqrt(m.fit.sigma2)
}

// RandomEffects returns the predicted intercepts for one grouping factor,
// one entry per level in sorted level order.
func (m *MixedModel) RandomEffects(grouping string) ([]RandomEffect, error) {
	if err := m.Guard(modelName, "RandomEffects"); err != nil {
		return nil, err
	}
	effects, ok := m.ranef[grouping]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownColumn, "grouping factor %q not in model", grouping)
	}
	return effects, nil
}

// Criterion returns -2 times the restricted log-likelihood at the optimum.
func (m *MixedModel) Criterion() (float64, error) {
	if err := m.Guard(modelName, "Criterion"); err != nil {
		return 0, err
	}
	return m.fit.criterion, nil
}

// FittedValues returns the conditional fitted values X*beta + Z*b, using the
// predicted random effects.
func (m *MixedModel) FittedValues() ([]float64, error) {
	if err := m.Guard(modelName, "FittedValues"); err != nil {
		return nil, err
	}
	n, _ := m.design.X.Dims()
	beta := mat.NewVecDense(len(m.fit.beta), m.fit.beta)
	var xb mat.VecDense
	xb.MulVec(m.design.X, beta)

	fitted := make([]float64, n)
	for i := 0; i < n; i++ {
		fitted[i] = xb.AtVec(i)
	}
	for _, g := range m.design.Groupings {
		effects := m.ranef[g.Name]
		for row, lvl := range g.Index {
			fitted[row] += effects[lvl].Estimate
		}
	}
	return fitted, nil
}

// Residuals returns observed minus conditional fitted values.
func (m *MixedModel) Residuals() ([]float64, error) {
	fitted, err := m.FittedValues()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(fitted))
	for i, f := range fitted {
		out[i] = m.design.Y[i] - f
	}
	return out, nil
}
