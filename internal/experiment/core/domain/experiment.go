package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a malformed experiment (zero-trial arm, negative
	// counts, successes above trials). The analysis aborts before sampling.
	ErrInvalidInput = errors.New("invalid experiment input")

	// ErrInvalidParameter marks an out-of-range analysis or sampling
	// parameter (nonpositive shape, probability outside [0,1]).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrSamplingFailure marks a random generator that produced an unusable
	// draw for valid parameters. Not retryable.
	ErrSamplingFailure = errors.New("sampling failure")
)

// ArmObservation holds the aggregated counts of one experiment arm.
type ArmObservation struct {
	Trials    int64
	Successes int64
}

// Rate returns the observed conversion rate. Only meaningful after
// validation; a zero-trial arm is rejected by ExperimentInput.Validate.
func (a ArmObservation) Rate() float64 {
	return float64(a.Successes) / float64(a.Trials)
}

func (a ArmObservation) validate(label string) error {
	if a.Trials <= 0 {
		return fmt.Errorf("%w: %s arm has zero trials", ErrInvalidInput, label)
	}
	if a.Successes < 0 {
		return fmt.Errorf("%w: %s arm has negative successes", ErrInvalidInput, label)
	}
	if a.Successes > a.Trials {
		return fmt.Errorf("%w: %s arm has more successes than trials", ErrInvalidInput, label)
	}
	return nil
}

// ExperimentInput is the two-arm snapshot both analyzers consume. It is
// constructed once from aggregated counts and read-only afterwards.
type ExperimentInput struct {
	Treatment ArmObservation
	Control   ArmObservation
}

func (in ExperimentInput) Validate() error {
	if err := in.Treatment.validate("treatment"); err != nil {
		return err
	}
	return in.Control.validate("control")
}
