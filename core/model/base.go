// Package model holds the shared fitted-state machinery for estimator-like
// artifacts. A fitted model is immutable after Fit; accessors guard against
// use of an unfitted artifact.
package model

import (
	"github.com/drewgille/lemurs/pkg/errors"
)

// FitState tracks whether an artifact has produced a usable fit.
type FitState int

const (
	// NotFitted means Fit has not completed successfully.
	NotFitted FitState = iota
	// Fitted means the artifact carries valid estimates.
	Fitted
)

// Base is embedded by fitted artifacts to track fit state.
type Base struct {
	state FitState
}

// IsFitted reports whether Fit completed successfully.
func (b *Base) IsFitted() bool {
	return b.state == Fitted
}

// SetFitted marks the artifact as fitted.
func (b *Base) SetFitted() {
	b.state = Fitted
}

// Reset returns the artifact to its unfitted state.
func (b *Base) Reset() {
	b.state = NotFitted
}

// Guard returns a NotFittedError naming the artifact and method when the
// artifact is not yet fitted, nil otherwise. Accessors call it first.
func (b *Base) Guard(name, method string) error {
	if !b.IsFitted() {
		return errors.NewNotFittedError(name, method)
	}
	return nil
}
