package lme

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/drewgille/lemurs/pkg/errors"
)

// remlFit holds the numeric result of one restricted-maximum-likelihood
// solve. theta are the variance ratios sd(grouping)/sd(residual), squared
// inside the covariance so their sign is irrelevant; reported values are
// absolute.
type remlFit struct {
	theta      []float64
	beta       []float64
	se         []float64
	sigma2     float64
	criterion  float64 // -2 * restricted log-likelihood
	vinvResid  []float64
	converged  bool
	iterations int
}

// solveREML maximizes the restricted likelihood of y given the design by
// profiling out the fixed effects and residual variance, leaving only the
// variance ratios for the numerical optimizer. Point estimates are
// deterministic: Nelder-Mead from a fixed start on a deterministic
// criterion.
func solveREML(d *Design, y []float64, start []float64, maxIter int) (*remlFit, error) {
	q := len(d.Groupings)
	if q == 0 {
		// No random effects: the profile is exact, nothing to optimize.
		fit, err := remlProfile(d, y, nil, true)
		if err != nil {
			return nil, err
		}
		fit.converged = true
		return fit, nil
	}

	if len(start) != q {
		start = make([]float64, q)
		for i := range start {
			start[i] = 1
		}
	}

	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			crit, _, err := remlCriterion(d, y, theta)
			if err != nil {
				return math.Inf(1)
			}
			return crit
		},
	}
	settings := &optimize.Settings{MajorIterations: maxIter}

	result, optErr := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
	if result == nil {
		return nil, errors.Wrap(optErr, "REML optimization produced no result")
	}
	if math.IsInf(result.F, 1) || math.IsNaN(result.F) {
		return nil, errors.Newf("REML criterion is not finite at the optimum (theta=%v)", result.X)
	}

	fit, err := remlProfile(d, y, result.X, true)
	if err != nil {
		return nil, err
	}
	fit.converged = optErr == nil && result.Status == optimize.Success
	fit.iterations = result.Stats.MajorIterations
	return fit, nil
}

// remlCriterion evaluates the profiled criterion only.
func remlCriterion(d *Design, y, theta []float64) (float64, *remlFit, error) {
	fit, err := remlProfile(d, y, theta, false)
	if err != nil {
		return math.Inf(1), nil, err
	}
	return fit.criterion, fit, nil
}

// remlProfile evaluates the profiled REML criterion at theta and, when full
// is set, recovers the GLS coefficients, their standard errors, the residual
// variance and the whitened residual needed for the random-effect
// predictions. All state is local; concurrent calls on the same design are
// safe.
func remlProfile(d *Design, y, theta []float64, full bool) (*remlFit, error) {
	n, p := d.X.Dims()
	if n-p <= 0 {
		return nil, errors.NewValidationError("design", "more fixed-effect terms than observations", p)
	}

	v0 := scaledCovariance(d, theta, n)

	var chol mat.Cholesky
	if !chol.Factorize(v0) {
		return nil, errors.Newf("scaled covariance is not positive definite (theta=%v)", theta)
	}

	// V0^{-1} X and V0^{-1} y.
	var vinvX mat.Dense
	if err := chol.SolveTo(&vinvX, d.X); err != nil {
		return nil, errors.Wrap(err, "whiten design")
	}
	yVec := mat.NewVecDense(n, y)
	var vinvY mat.VecDense
	if err := chol.SolveVecTo(&vinvY, yVec); err != nil {
		return nil, errors.Wrap(err, "whiten response")
	}

	// A = X' V0^{-1} X, b = X' V0^{-1} y.
	var a mat.Dense
	a.Mul(d.X.T(), &vinvX)
	aSym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			aSym.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	var cholA mat.Cholesky
	if !cholA.Factorize(aSym) {
		return nil, errors.NewRankDeficientError("remlProfile", p, p-1)
	}

	var b mat.VecDense
	b.MulVec(d.X.T(), &vinvY)

	var betaVec mat.VecDense
	if err := cholA.SolveVecTo(&betaVec, &b); err != nil {
		return nil, errors.Wrap(err, "solve generalized least squares")
	}

	// Residual r = y - X beta and the quadratic form r' V0^{-1} r.
	var xBeta mat.VecDense
	xBeta.MulVec(d.X, &betaVec)
	r := mat.NewVecDense(n, nil)
	r.SubVec(yVec, &xBeta)

	var vinvR mat.VecDense
	if err := chol.SolveVecTo(&vinvR, r); err != nil {
		return nil, errors.Wrap(err, "whiten residual")
	}
	quad := mat.Dot(r, &vinvR)
	if quad <= 0 || math.IsNaN(quad) {
		return nil, errors.Newf("degenerate residual quadratic form %g", quad)
	}

	df := float64(n - p)
	sigma2 := quad / df
	criterion := df*(math.Log(2*math.Pi*sigma2)+1) + chol.LogDet() + cholA.LogDet()

	fit := &remlFit{
		theta:     absAll(theta),
		sigma2:    sigma2,
		criterion: criterion,
	}
	if !full {
		return fit, nil
	}

	fit.beta = make([]float64, p)
	for j := 0; j < p; j++ {
		fit.beta[j] = betaVec.AtVec(j)
	}

	var aInv mat.SymDense
	if err := cholA.InverseTo(&aInv); err != nil {
		return nil, errors.Wrap(err, "invert information matrix")
	}
	fit.se = make([]float64, p)
	for j := 0; j < p; j++ {
		fit.se[j] = math.Sqrt(sigma2 * aInv.At(j, j))
	}

	fit.vinvResid = make([]float64, n)
	for i := 0; i < n; i++ {
		fit.vinvResid[i] = vinvR.AtVec(i)
	}
	return fit, nil
}

// scaledCovariance builds V0 = I + sum_k theta_k^2 Z_k Z_k', the marginal
// covariance divided by the residual variance. Z_k Z_k' for a random
// intercept is 1 wherever two rows share the level of grouping k.
func scaledCovariance(d *Design, theta []float64, n int) *mat.SymDense {
	v0 := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		v0.SetSym(i, i, 1)
	}
	for k, g := range d.Groupings {
		t2 := theta[k] * theta[k]
		if t2 == 0 {
			continue
		}
		members := make([][]int, len(g.Levels))
		for row, lvl := range g.Index {
			members[lvl] = append(members[lvl], row)
		}
		for _, rows := range members {
			for ai, i := range rows {
				for _, j := range rows[ai:] {
					v0.SetSym(i, j, v0.At(i, j)+t2)
				}
			}
		}
	}
	return v0
}

func absAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Abs(x)
	}
	return out
}
