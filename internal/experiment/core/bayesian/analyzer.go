// Package bayesian evaluates a two-arm conversion experiment under a
// conjugate Beta-Binomial model: posterior sampling, credible intervals,
// superiority probabilities, expected-value translation and posterior
// predictive simulation.
package bayesian

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/domain"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/sampling"
)

// Evidence thresholds on P(treatment > control). Overridable, but the
// defaults are the ones every consumer of the record expects.
var (
	ThresholdVeryStrong = 0.95
	ThresholdStrong     = 0.90
	ThresholdModerate   = 0.75
	ThresholdWeak       = 0.50
)

const (
	EvidenceVeryStrong = "very strong"
	EvidenceStrong     = "strong"
	EvidenceModerate   = "moderate"
	EvidenceWeak       = "weak"
	EvidenceNone       = "none"
)

// Sampling streams forked off the run engine. Each independent sequence gets
// its own stream so the two arms can be drawn concurrently and still
// reproduce bit-exactly under a fixed seed.
const (
	streamTreatment = 1
	streamControl   = 2
	streamPredict   = 3
)

// PredictiveSummary aggregates the posterior predictive simulation: the
// realized future rates and relative lift over a fixed horizon of users.
type PredictiveSummary struct {
	MeanTreatmentRate float64
	MeanControlRate   float64
	MeanLift          float64
	LiftInterval      domain.Interval
	// ExcludedReplicates counts replicates dropped because the simulated
	// control rate was zero, leaving the relative lift undefined.
	ExcludedReplicates int
}

// Result is the Bayesian fragment of a result record.
type Result struct {
	PosteriorTreatment domain.PosteriorDistribution
	PosteriorControl   domain.PosteriorDistribution

	TreatmentInterval  domain.Interval
	ControlInterval    domain.Interval
	DifferenceInterval domain.Interval

	ProbTreatmentBetter float64
	ProbControlBetter   float64
	ProbEqual           float64
	ProbMeaningfulLift  float64
	Evidence            string

	// ExpectedLift is the relative lift of the posterior means.
	ExpectedLift float64

	ExpectedIncrementalConversions float64
	ExpectedIncrementalRevenue     float64
	RevenueInterval                domain.Interval

	Predictive PredictiveSummary
}

type Analyzer struct {
	engine *sampling.Engine
}

func NewAnalyzer(engine *sampling.Engine) *Analyzer {
	return &Analyzer{engine: engine}
}

// Posterior applies the conjugate update for one arm.
func Posterior(priorAlpha, priorBeta float64, obs domain.ArmObservation) domain.PosteriorDistribution {
	return domain.PosteriorDistribution{
		Alpha: priorAlpha + float64(obs.Successes),
		Beta:  priorBeta + float64(obs.Trials-obs.Successes),
	}
}

// Analyze runs the full Bayesian analysis. The two arms' Monte Carlo sample
// sets are drawn independently; their pointwise difference is an i.i.d.
// sample of the difference distribution, nothing more.
func (a *Analyzer) Analyze(ctx context.Context, in domain.ExperimentInput, cfg domain.AnalysisConfig) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	postT := Posterior(cfg.PriorAlpha, cfg.PriorBeta, in.Treatment)
	postC := Posterior(cfg.PriorAlpha, cfg.PriorBeta, in.Control)

	var samplesT, samplesC []float64
	g, _ := errgroup.WithContext(ctx)
	engT := a.engine.Fork(streamTreatment)
	engC := a.engine.Fork(streamControl)
	g.Go(func() error {
		var err error
		samplesT, err = engT.DrawBeta(postT.Alpha, postT.Beta, cfg.SampleCount)
		return err
	})
	g.Go(func() error {
		var err error
		samplesC, err = engC.DrawBeta(postC.Alpha, postC.Beta, cfg.SampleCount)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	diff := make([]float64, cfg.SampleCount)
	var better, worse, meaningful int
	for i := range diff {
		d := samplesT[i] - samplesC[i]
		diff[i] = d
		switch {
		case d > 0:
			better++
		case d < 0:
			worse++
		}
		// Posterior draws are strictly positive, so the relative lift is
		// always defined here.
		if samplesC[i] > 0 && d/samplesC[i] > cfg.MinRelativeLift {
			meaningful++
		}
	}

	m := float64(cfg.SampleCount)
	probBetter := float64(better) / m
	probWorse := float64(worse) / m

	res := &Result{
		PosteriorTreatment:  postT,
		PosteriorControl:    postC,
		TreatmentInterval:   percentile(samplesT, cfg.CredibleLevel),
		ControlInterval:     percentile(samplesC, cfg.CredibleLevel),
		DifferenceInterval:  percentile(diff, cfg.CredibleLevel),
		ProbTreatmentBetter: probBetter,
		ProbControlBetter:   probWorse,
		ProbEqual:           1 - probBetter - probWorse,
		ProbMeaningfulLift:  float64(meaningful) / m,
		Evidence:            evidenceLabel(probBetter),
	}

	meanT, meanC := postT.Mean(), postC.Mean()
	res.ExpectedLift = (meanT - meanC) / meanC

	nT := float64(in.Treatment.Trials)
	res.ExpectedIncrementalConversions = (meanT - meanC) * nT
	res.ExpectedIncrementalRevenue = res.ExpectedIncrementalConversions * cfg.ValuePerConversion

	revenue := make([]float64, len(diff))
	for i, d := range diff {
		revenue[i] = d * nT * cfg.ValuePerConversion
	}
	res.RevenueInterval = percentile(revenue, cfg.CredibleLevel)

	pred, err := a.simulatePredictive(ctx, postT, postC, cfg)
	if err != nil {
		return nil, err
	}
	res.Predictive = pred

	return res, nil
}

// simulatePredictive draws one rate per arm from its posterior, simulates the
// conversions of FutureHorizon future users via a Binomial draw, and
// aggregates the realized rates and relative lift across replicates.
func (a *Analyzer) simulatePredictive(ctx context.Context, postT, postC domain.PosteriorDistribution, cfg domain.AnalysisConfig) (PredictiveSummary, error) {
	eng := a.engine.Fork(streamPredict)
	horizon := float64(cfg.FutureHorizon)

	ratesT := make([]float64, 0, cfg.PredictiveReplicates)
	ratesC := make([]float64, 0, cfg.PredictiveReplicates)
	lifts := make([]float64, 0, cfg.PredictiveReplicates)
	excluded := 0

	for i := 0; i < cfg.PredictiveReplicates; i++ {
		if err := ctx.Err(); err != nil {
			return PredictiveSummary{}, err
		}

		pT, err := eng.DrawBeta(postT.Alpha, postT.Beta, 1)
		if err != nil {
			return PredictiveSummary{}, err
		}
		pC, err := eng.DrawBeta(postC.Alpha, postC.Beta, 1)
		if err != nil {
			return PredictiveSummary{}, err
		}

		futureT, err := eng.DrawBinomial(cfg.FutureHorizon, pT[0])
		if err != nil {
			return PredictiveSummary{}, err
		}
		futureC, err := eng.DrawBinomial(cfg.FutureHorizon, pC[0])
		if err != nil {
			return PredictiveSummary{}, err
		}

		rateT := float64(futureT) / horizon
		rateC := float64(futureC) / horizon
		ratesT = append(ratesT, rateT)
		ratesC = append(ratesC, rateC)

		if rateC == 0 {
			// Relative lift over a zero control rate is undefined;
			// exclude the replicate rather than emit an infinity.
			excluded++
			continue
		}
		lifts = append(lifts, (rateT-rateC)/rateC)
	}

	sum := PredictiveSummary{
		MeanTreatmentRate:  stat.Mean(ratesT, nil),
		MeanControlRate:    stat.Mean(ratesC, nil),
		ExcludedReplicates: excluded,
	}
	if len(lifts) > 0 {
		sum.MeanLift = stat.Mean(lifts, nil)
		sum.LiftInterval = percentile(lifts, cfg.CredibleLevel)
	}
	return sum, nil
}

func percentile(samples []float64, level float64) domain.Interval {
	lo, hi := sampling.PercentileInterval(samples, level)
	return domain.Interval{Lower: lo, Upper: hi, Level: level, Method: domain.IntervalPercentile}
}

func evidenceLabel(probBetter float64) string {
	switch {
	case probBetter >= ThresholdVeryStrong:
		return EvidenceVeryStrong
	case probBetter >= ThresholdStrong:
		return EvidenceStrong
	case probBetter >= ThresholdModerate:
		return EvidenceModerate
	case probBetter >= ThresholdWeak:
		return EvidenceWeak
	default:
		return EvidenceNone
	}
}

// String renders the posterior for logs, e.g. "Beta(151.0, 851.0)".
func PosteriorString(p domain.PosteriorDistribution) string {
	return fmt.Sprintf("Beta(%.1f, %.1f)", p.Alpha, p.Beta)
}
