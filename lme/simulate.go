package lme

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// simulateResponse draws one synthetic response vector from the fitted
// model's estimated parameters: X*beta plus fresh zero-mean normal draws for
// every grouping level and for the residual. This is the generator behind
// the parametric bootstrap.
func (m *MixedModel) simulateResponse(src rand.Source) []float64 {
	n, _ := m.design.X.Dims()

	beta := mat.NewVecDense(len(m.fit.beta), m.fit.beta)
	var xb mat.VecDense
	xb.MulVec(m.design.X, beta)

	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = xb.AtVec(i)
	}

	std := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	sigma := m.residualStdDev()

	for k, g := range m.design.Groupings {
		sd := m.fit.theta[k] * sigma
		draws := make([]float64, len(g.Levels))
		for i := range draws {
			draws[i] = sd * std.Rand()
		}
		for row, lvl := range g.Index {
			y[row] += draws[lvl]
		}
	}

	for i := 0; i < n; i++ {
		y[i] += sigma * std.Rand()
	}
	return y
}
