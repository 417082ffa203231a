package lme

// Option configures a Fit call.
type Option func(*fitConfig)

type fitConfig struct {
	maxIterations int
	startTheta    []float64
}

func newFitConfig(opts ...Option) fitConfig {
	cfg := fitConfig{
		maxIterations: 500,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithMaxIterations caps the REML optimizer's major iterations.
func WithMaxIterations(n int) Option {
	return func(cfg *fitConfig) {
		if n > 0 {
			cfg.maxIterations = n
		}
	}
}

// WithStartTheta sets the optimizer's starting variance ratios, one per
// grouping factor. The bootstrap uses the parent fit's estimates so refits
// start near the optimum.
func WithStartTheta(theta []float64) Option {
	return func(cfg *fitConfig) {
		cfg.startTheta = theta
	}
}
