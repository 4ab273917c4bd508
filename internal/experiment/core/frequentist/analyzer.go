// Package frequentist evaluates a two-arm conversion experiment with
// classical tests: Welch's t-test, chi-square independence, standardized
// effect sizes, a percentile bootstrap and power analysis.
package frequentist

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/domain"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/sampling"
)

const streamBootstrap = 4

// Degenerate condition flags. These are recoverable: the affected metric
// falls back to a documented value and the flag is surfaced on the result.
const (
	FlagZeroVariance         = "zero_variance"
	FlagPooledStdZero        = "pooled_std_zero"
	FlagWelchDfDegenerate    = "welch_df_degenerate"
	FlagChi2Degenerate       = "chi2_degenerate"
	FlagPowerSolveDegenerate = "power_solve_degenerate"
)

// Effect size categories for |Cohen's h|.
const (
	EffectNegligible = "negligible"
	EffectSmall      = "small"
	EffectMedium     = "medium"
	EffectLarge      = "large"
)

// Result is the frequentist fragment of a result record.
type Result struct {
	TreatmentRate float64
	ControlRate   float64

	TStatistic       float64
	PValue           float64
	DegreesOfFreedom float64
	WelchInterval    domain.Interval

	Chi2Statistic float64
	Chi2PValue    float64

	EffectSize domain.EffectSizeReport

	BootstrapInterval domain.Interval

	Power domain.PowerReport

	IsSignificant bool

	// Flags lists the degenerate conditions encountered, if any.
	Flags []string
}

type Analyzer struct {
	engine *sampling.Engine
}

func NewAnalyzer(engine *sampling.Engine) *Analyzer {
	return &Analyzer{engine: engine}
}

// AnalyzeIndicators accepts raw per-user 0/1 success indicators. The test
// statistics only depend on the counts, but the bootstrap resamples the
// indicators directly.
func (a *Analyzer) AnalyzeIndicators(ctx context.Context, treatment, control []float64, cfg domain.AnalysisConfig) (*Result, error) {
	in, err := indicatorsToInput(treatment, control)
	if err != nil {
		return nil, err
	}
	return a.analyze(ctx, in, treatment, control, cfg)
}

// Analyze accepts aggregated (successes, trials) pairs. The bootstrap uses
// the Binomial identity: the mean of n indicators resampled with replacement
// is Binomial(n, rate)/n.
func (a *Analyzer) Analyze(ctx context.Context, in domain.ExperimentInput, cfg domain.AnalysisConfig) (*Result, error) {
	return a.analyze(ctx, in, nil, nil, cfg)
}

func (a *Analyzer) analyze(ctx context.Context, in domain.ExperimentInput, rawT, rawC []float64, cfg domain.AnalysisConfig) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		TreatmentRate: in.Treatment.Rate(),
		ControlRate:   in.Control.Rate(),
	}

	nT := float64(in.Treatment.Trials)
	nC := float64(in.Control.Trials)
	pT := res.TreatmentRate
	pC := res.ControlRate

	// Bernoulli sample variances with Bessel's correction, identical to the
	// empirical variance of the underlying indicators.
	varT := sampleVariance(pT, nT)
	varC := sampleVariance(pC, nC)

	a.welch(res, pT, pC, varT, varC, nT, nC, cfg)
	a.chiSquare(res, in)
	a.effectSizes(res, pT, pC, varT, varC, nT, nC)
	if err := a.bootstrap(ctx, res, in, rawT, rawC, cfg); err != nil {
		return nil, err
	}
	a.power(res, in, cfg)

	res.IsSignificant = res.PValue < cfg.SignificanceAlpha
	return res, nil
}

func (a *Analyzer) welch(res *Result, pT, pC, varT, varC, nT, nC float64, cfg domain.AnalysisConfig) {
	seT2 := varT / nT
	seC2 := varC / nC
	seDiff := math.Sqrt(seT2 + seC2)
	diff := pT - pC

	if seDiff == 0 {
		// Both arms have zero variance (all conversions or none). The test
		// carries no information; report it as degenerate.
		res.Flags = append(res.Flags, FlagZeroVariance)
		res.TStatistic = 0
		res.PValue = 1
		res.DegreesOfFreedom = nT + nC - 2
		res.WelchInterval = domain.Interval{Lower: diff, Upper: diff, Level: 1 - cfg.SignificanceAlpha, Method: domain.IntervalAnalytic}
		return
	}

	df := welchSatterthwaite(seT2, seC2, nT, nC)
	if !isFinite(df) || df <= 0 {
		res.Flags = append(res.Flags, FlagWelchDfDegenerate)
		df = nT + nC - 2
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	t := diff / seDiff
	res.TStatistic = t
	res.PValue = 2 * (1 - tDist.CDF(math.Abs(t)))
	res.DegreesOfFreedom = df

	tCrit := tDist.Quantile(1 - cfg.SignificanceAlpha/2)
	res.WelchInterval = domain.Interval{
		Lower:  diff - tCrit*seDiff,
		Upper:  diff + tCrit*seDiff,
		Level:  1 - cfg.SignificanceAlpha,
		Method: domain.IntervalAnalytic,
	}
}

// chiSquare runs the Pearson independence test on the 2x2 group-by-converted
// table, dof = 1, no continuity correction.
func (a *Analyzer) chiSquare(res *Result, in domain.ExperimentInput) {
	observed := [2][2]float64{
		{float64(in.Treatment.Successes), float64(in.Treatment.Trials - in.Treatment.Successes)},
		{float64(in.Control.Successes), float64(in.Control.Trials - in.Control.Successes)},
	}

	rowTotals := [2]float64{observed[0][0] + observed[0][1], observed[1][0] + observed[1][1]}
	colTotals := [2]float64{observed[0][0] + observed[1][0], observed[0][1] + observed[1][1]}
	grand := rowTotals[0] + rowTotals[1]

	statistic := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			expected := rowTotals[i] * colTotals[j] / grand
			if expected == 0 {
				// A zero margin (e.g. no conversions anywhere) makes the
				// test undefined.
				res.Flags = append(res.Flags, FlagChi2Degenerate)
				res.Chi2Statistic = 0
				res.Chi2PValue = 1
				return
			}
			d := observed[i][j] - expected
			statistic += d * d / expected
		}
	}

	chi2 := distuv.ChiSquared{K: 1}
	res.Chi2Statistic = statistic
	res.Chi2PValue = 1 - chi2.CDF(statistic)
}

func (a *Analyzer) effectSizes(res *Result, pT, pC, varT, varC, nT, nC float64) {
	pooled := math.Sqrt(((nT-1)*varT + (nC-1)*varC) / (nT + nC - 2))

	d := 0.0
	if pooled > 0 {
		d = (pT - pC) / pooled
	} else {
		res.Flags = append(res.Flags, FlagPooledStdZero)
	}

	h := 2 * (math.Asin(math.Sqrt(pT)) - math.Asin(math.Sqrt(pC)))

	res.EffectSize = domain.EffectSizeReport{
		CohensD:  d,
		CohensH:  h,
		Category: classifyEffect(h),
	}
}

func classifyEffect(h float64) string {
	switch abs := math.Abs(h); {
	case abs < 0.2:
		return EffectNegligible
	case abs < 0.5:
		return EffectSmall
	case abs < 0.8:
		return EffectMedium
	default:
		return EffectLarge
	}
}

// bootstrap resamples both arms with replacement at their original sizes and
// records the difference of resampled means per replicate.
func (a *Analyzer) bootstrap(ctx context.Context, res *Result, in domain.ExperimentInput, rawT, rawC []float64, cfg domain.AnalysisConfig) error {
	eng := a.engine.Fork(streamBootstrap)

	diffs := make([]float64, cfg.BootstrapReplicates)
	nT := in.Treatment.Trials
	nC := in.Control.Trials
	pT := in.Treatment.Rate()
	pC := in.Control.Rate()

	for i := range diffs {
		if err := ctx.Err(); err != nil {
			return err
		}

		var meanT, meanC float64
		if rawT != nil {
			st, err := eng.Resample(rawT, len(rawT))
			if err != nil {
				return err
			}
			sc, err := eng.Resample(rawC, len(rawC))
			if err != nil {
				return err
			}
			meanT = mean(st)
			meanC = mean(sc)
		} else {
			kT, err := eng.DrawBinomial(nT, pT)
			if err != nil {
				return err
			}
			kC, err := eng.DrawBinomial(nC, pC)
			if err != nil {
				return err
			}
			meanT = float64(kT) / float64(nT)
			meanC = float64(kC) / float64(nC)
		}
		diffs[i] = meanT - meanC
	}

	lo, hi := sampling.PercentileInterval(diffs, 1-cfg.SignificanceAlpha)
	res.BootstrapInterval = domain.Interval{
		Lower:  lo,
		Upper:  hi,
		Level:  1 - cfg.SignificanceAlpha,
		Method: domain.IntervalBootstrap,
	}
	return nil
}

func (a *Analyzer) power(res *Result, in domain.ExperimentInput, cfg domain.AnalysisConfig) {
	d := res.EffectSize.CohensD
	nT := in.Treatment.Trials
	nC := in.Control.Trials

	res.Power.AchievedPower = AchievedPower(d, nT, nC, cfg.SignificanceAlpha)

	required, ok := RequiredSampleSize(d, cfg.TargetPower, cfg.SignificanceAlpha)
	if !ok {
		res.Flags = append(res.Flags, FlagPowerSolveDegenerate)
	}
	res.Power.RequiredSampleSize = required
}

// AchievedPower computes the power of a two-sided two-sample mean comparison
// at effect size d with group sizes n1 and n2, using the normal
// approximation to the noncentral t.
func AchievedPower(d float64, n1, n2 int64, alpha float64) float64 {
	if n1 < 2 || n2 < 2 {
		return 0
	}
	fn1, fn2 := float64(n1), float64(n2)
	nc := math.Abs(d) * math.Sqrt(fn1*fn2/(fn1+fn2))

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	zCrit := norm.Quantile(1 - alpha/2)
	return norm.CDF(nc-zCrit) + norm.CDF(-nc-zCrit)
}

// maxSolveN caps the required-n search; an effect too small to be detected
// below this bound is reported as degenerate rather than as a huge number.
const maxSolveN = int64(1_000_000_000)

// RequiredSampleSize solves for the smallest per-group n (equal allocation)
// whose power reaches target at effect size d. Power is monotone in n, so a
// bisection suffices. ok is false when the solve is degenerate (zero effect
// or target unreachable within the cap); the returned size is then 0.
func RequiredSampleSize(d, target, alpha float64) (int64, bool) {
	if d == 0 || !isFinite(d) {
		return 0, false
	}
	if AchievedPower(d, maxSolveN, maxSolveN, alpha) < target {
		return 0, false
	}

	lo, hi := int64(2), maxSolveN
	for lo < hi {
		mid := lo + (hi-lo)/2
		if AchievedPower(d, mid, mid, alpha) >= target {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo, true
}

func welchSatterthwaite(seT2, seC2, nT, nC float64) float64 {
	num := (seT2 + seC2) * (seT2 + seC2)
	den := seT2*seT2/(nT-1) + seC2*seC2/(nC-1)
	return num / den
}

// sampleVariance is the Bessel-corrected variance of n Bernoulli indicators
// with mean p: n*p*(1-p)/(n-1).
func sampleVariance(p, n float64) float64 {
	if n <= 1 {
		return 0
	}
	return n * p * (1 - p) / (n - 1)
}

func indicatorsToInput(treatment, control []float64) (domain.ExperimentInput, error) {
	armT, err := countIndicators(treatment, "treatment")
	if err != nil {
		return domain.ExperimentInput{}, err
	}
	armC, err := countIndicators(control, "control")
	if err != nil {
		return domain.ExperimentInput{}, err
	}
	return domain.ExperimentInput{Treatment: armT, Control: armC}, nil
}

func countIndicators(xs []float64, label string) (domain.ArmObservation, error) {
	if len(xs) == 0 {
		return domain.ArmObservation{}, fmt.Errorf("%w: %s arm has zero trials", domain.ErrInvalidInput, label)
	}
	var successes int64
	for _, x := range xs {
		switch x {
		case 0:
		case 1:
			successes++
		default:
			return domain.ArmObservation{}, fmt.Errorf("%w: %s arm indicator %v is not 0 or 1", domain.ErrInvalidInput, label, x)
		}
	}
	return domain.ArmObservation{Trials: int64(len(xs)), Successes: successes}, nil
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
