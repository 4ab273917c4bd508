package usecase

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/bayesian"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/domain"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/frequentist"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/ports"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/sampling"
)

type AnalyzeExperimentInput struct {
	Treatment domain.ArmObservation
	Control   domain.ArmObservation
	Config    domain.AnalysisConfig
}

type AnalyzeExperimentUseCase struct {
	repo   ports.ResultRepositoryPort
	logger *slog.Logger
}

func NewAnalyzeExperimentUseCase(repo ports.ResultRepositoryPort, logger *slog.Logger) *AnalyzeExperimentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeExperimentUseCase{repo: repo, logger: logger}
}

// Execute validates the input, runs the Bayesian and frequentist analyses
// concurrently (they share nothing but the stateless sampling engine), merges
// both fragments into one immutable result record, persists it and returns it.
func (uc *AnalyzeExperimentUseCase) Execute(ctx context.Context, in AnalyzeExperimentInput) (*domain.ResultRecord, error) {
	input := domain.ExperimentInput{Treatment: in.Treatment, Control: in.Control}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	cfg := in.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var engine *sampling.Engine
	if cfg.RandomSeed != nil {
		engine = sampling.NewSeededEngine(*cfg.RandomSeed)
	} else {
		engine = sampling.NewEngine()
	}

	uc.logger.Info("starting experiment analysis",
		"treatment_trials", in.Treatment.Trials,
		"treatment_successes", in.Treatment.Successes,
		"control_trials", in.Control.Trials,
		"control_successes", in.Control.Successes,
		"sample_count", cfg.SampleCount,
		"bootstrap_replicates", cfg.BootstrapReplicates,
		"seeded", engine.Seeded(),
	)
	started := time.Now()

	var bayes *bayesian.Result
	var freq *frequentist.Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bayes, err = bayesian.NewAnalyzer(engine).Analyze(gctx, input, cfg)
		return err
	})
	g.Go(func() error {
		var err error
		freq, err = frequentist.NewAnalyzer(engine).Analyze(gctx, input, cfg)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rec := buildRecord(input, cfg, bayes, freq)

	uc.logger.Info("experiment analysis complete",
		"id", rec.ID,
		"posterior_ad", bayesian.PosteriorString(bayes.PosteriorTreatment),
		"posterior_psa", bayesian.PosteriorString(bayes.PosteriorControl),
		"prob_ad_better", rec.ProbAdBetter,
		"p_value", rec.PValue,
		"is_significant", rec.IsSignificant,
		"duration", time.Since(started),
	)

	if err := uc.repo.SaveResult(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// buildRecord is the record's single construction point. Every float is
// forced finite: an undefined or infinite quantity becomes zero plus a flag,
// keeping the interchange format safe for all consumers.
func buildRecord(in domain.ExperimentInput, cfg domain.AnalysisConfig, bayes *bayesian.Result, freq *frequentist.Result) *domain.ResultRecord {
	flags := append([]string{}, freq.Flags...)
	clean := func(name string, v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			flags = append(flags, name+"_undefined")
			return 0
		}
		return v
	}

	rateT := in.Treatment.Rate()
	rateC := in.Control.Rate()

	relativeLift := 0.0
	if rateC > 0 {
		relativeLift = (rateT - rateC) / rateC
	} else {
		flags = append(flags, "relative_lift_undefined")
	}

	rec := &domain.ResultRecord{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),

		AdGroupSize:    in.Treatment.Trials,
		PsaGroupSize:   in.Control.Trials,
		AdConversions:  in.Treatment.Successes,
		PsaConversions: in.Control.Successes,

		AdConversionRate:  rateT,
		PsaConversionRate: rateC,
		AbsoluteLift:      rateT - rateC,
		RelativeLift:      relativeLift,

		PosteriorMeanAd:                bayes.PosteriorTreatment.Mean(),
		PosteriorMeanPsa:               bayes.PosteriorControl.Mean(),
		ExpectedLift:                   clean("expected_lift", bayes.ExpectedLift),
		ProbAdBetter:                   bayes.ProbTreatmentBetter,
		ProbPsaBetter:                  bayes.ProbControlBetter,
		ProbMeaningfulLift:             bayes.ProbMeaningfulLift,
		Evidence:                       bayes.Evidence,
		CredibleIntervalLower:          bayes.DifferenceInterval.Lower,
		CredibleIntervalUpper:          bayes.DifferenceInterval.Upper,
		ExpectedIncrementalConversions: bayes.ExpectedIncrementalConversions,
		ExpectedIncrementalRevenue:     bayes.ExpectedIncrementalRevenue,
		RevenueCILower:                 bayes.RevenueInterval.Lower,
		RevenueCIUpper:                 bayes.RevenueInterval.Upper,
		PredictedLiftMean:              clean("predicted_lift_mean", bayes.Predictive.MeanLift),
		PredictedLiftCILower:           clean("predicted_lift_ci_lower", bayes.Predictive.LiftInterval.Lower),
		PredictedLiftCIUpper:           clean("predicted_lift_ci_upper", bayes.Predictive.LiftInterval.Upper),

		TStatistic:         clean("t_statistic", freq.TStatistic),
		PValue:             clean("p_value", freq.PValue),
		DegreesOfFreedom:   clean("degrees_of_freedom", freq.DegreesOfFreedom),
		Chi2Statistic:      clean("chi2_statistic", freq.Chi2Statistic),
		Chi2PValue:         clean("chi2_p_value", freq.Chi2PValue),
		CohensD:            clean("cohens_d", freq.EffectSize.CohensD),
		CohensH:            clean("cohens_h", freq.EffectSize.CohensH),
		EffectSizeCategory: freq.EffectSize.Category,
		CI95Lower:          clean("ci_95_lower", freq.WelchInterval.Lower),
		CI95Upper:          clean("ci_95_upper", freq.WelchInterval.Upper),
		BootstrapCILower:   freq.BootstrapInterval.Lower,
		BootstrapCIUpper:   freq.BootstrapInterval.Upper,
		StatisticalPower:   clean("statistical_power", freq.Power.AchievedPower),
		RequiredSampleSize: freq.Power.RequiredSampleSize,
		IsSignificant:      freq.IsSignificant,

		SampleCount: cfg.SampleCount,
		RandomSeed:  cfg.RandomSeed,
	}
	rec.Flags = flags
	return rec
}
