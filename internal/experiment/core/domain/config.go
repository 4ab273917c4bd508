package domain

import "fmt"

// AnalysisConfig carries every knob both analyzers recognize. Zero values are
// never used directly; build one with DefaultAnalysisConfig and override.
type AnalysisConfig struct {
	PriorAlpha           float64
	PriorBeta            float64
	SampleCount          int
	CredibleLevel        float64
	MinRelativeLift      float64
	ValuePerConversion   float64
	FutureHorizon        int64
	PredictiveReplicates int
	BootstrapReplicates  int
	SignificanceAlpha    float64
	TargetPower          float64

	// RandomSeed, when set, makes every Monte Carlo sequence reproducible.
	RandomSeed *uint64
}

func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		PriorAlpha:           1,
		PriorBeta:            1,
		SampleCount:          100000,
		CredibleLevel:        0.95,
		MinRelativeLift:      0.01,
		ValuePerConversion:   100,
		FutureHorizon:        10000,
		PredictiveReplicates: 1000,
		BootstrapReplicates:  10000,
		SignificanceAlpha:    0.05,
		TargetPower:          0.80,
	}
}

func (c AnalysisConfig) Validate() error {
	if c.PriorAlpha <= 0 || c.PriorBeta <= 0 {
		return fmt.Errorf("%w: prior shape parameters must be positive", ErrInvalidParameter)
	}
	if c.SampleCount <= 0 {
		return fmt.Errorf("%w: sample count must be positive", ErrInvalidParameter)
	}
	if c.CredibleLevel <= 0 || c.CredibleLevel >= 1 {
		return fmt.Errorf("%w: credible level must be in (0,1)", ErrInvalidParameter)
	}
	if c.FutureHorizon <= 0 {
		return fmt.Errorf("%w: future horizon must be positive", ErrInvalidParameter)
	}
	if c.PredictiveReplicates <= 0 {
		return fmt.Errorf("%w: predictive replicates must be positive", ErrInvalidParameter)
	}
	if c.BootstrapReplicates <= 0 {
		return fmt.Errorf("%w: bootstrap replicates must be positive", ErrInvalidParameter)
	}
	if c.SignificanceAlpha <= 0 || c.SignificanceAlpha >= 1 {
		return fmt.Errorf("%w: significance alpha must be in (0,1)", ErrInvalidParameter)
	}
	if c.TargetPower <= 0 || c.TargetPower >= 1 {
		return fmt.Errorf("%w: target power must be in (0,1)", ErrInvalidParameter)
	}
	return nil
}
