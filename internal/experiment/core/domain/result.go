package domain

import "time"

// IntervalMethod records how an interval was derived.
type IntervalMethod string

const (
	IntervalPercentile IntervalMethod = "percentile"
	IntervalAnalytic   IntervalMethod = "analytic"
	IntervalBootstrap  IntervalMethod = "bootstrap"
)

// Interval is a two-sided interval at a stated level. Lower <= Upper.
type Interval struct {
	Lower  float64        `json:"lower"`
	Upper  float64        `json:"upper"`
	Level  float64        `json:"level"`
	Method IntervalMethod `json:"method"`
}

func (i Interval) Width() float64 { return i.Upper - i.Lower }

// Contains reports whether v lies inside the interval.
func (i Interval) Contains(v float64) bool { return i.Lower <= v && v <= i.Upper }

// PosteriorDistribution is a Beta(Alpha, Beta) posterior over one arm's
// conversion rate. Both shape parameters are strictly positive for any
// valid input combined with a proper prior.
type PosteriorDistribution struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

func (p PosteriorDistribution) Mean() float64 {
	return p.Alpha / (p.Alpha + p.Beta)
}

func (p PosteriorDistribution) Variance() float64 {
	s := p.Alpha + p.Beta
	return p.Alpha * p.Beta / (s * s * (s + 1))
}

// EffectSizeReport holds the standardized effect sizes, signed in the
// treatment-minus-control direction.
type EffectSizeReport struct {
	CohensD  float64 `json:"cohens_d"`
	CohensH  float64 `json:"cohens_h"`
	Category string  `json:"category"`
}

// PowerReport holds the achieved power of the observed comparison and the
// per-group sample size required to reach the configured target power.
type PowerReport struct {
	AchievedPower      float64 `json:"achieved_power"`
	RequiredSampleSize int64   `json:"required_sample_size"`
}

// ResultRecord is the canonical aggregate of everything both analyzers
// computed for one experiment. It is built exactly once per run and
// read-only afterwards; downstream consumers rely on the JSON keys verbatim.
//
// Every numeric field is finite. A quantity that is mathematically undefined
// or infinite for the given input is emitted as zero with an explanatory
// entry appended to Flags.
type ResultRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	AdGroupSize    int64 `json:"ad_group_size"`
	PsaGroupSize   int64 `json:"psa_group_size"`
	AdConversions  int64 `json:"ad_conversions"`
	PsaConversions int64 `json:"psa_conversions"`

	AdConversionRate  float64 `json:"ad_conversion_rate"`
	PsaConversionRate float64 `json:"psa_conversion_rate"`
	AbsoluteLift      float64 `json:"absolute_lift"`
	RelativeLift      float64 `json:"relative_lift"`

	// Bayesian fragment.
	PosteriorMeanAd                float64 `json:"posterior_mean_ad"`
	PosteriorMeanPsa               float64 `json:"posterior_mean_psa"`
	ExpectedLift                   float64 `json:"expected_lift"`
	ProbAdBetter                   float64 `json:"prob_ad_better"`
	ProbPsaBetter                  float64 `json:"prob_psa_better"`
	ProbMeaningfulLift             float64 `json:"prob_meaningful_lift"`
	Evidence                       string  `json:"evidence"`
	CredibleIntervalLower          float64 `json:"credible_interval_lower"`
	CredibleIntervalUpper          float64 `json:"credible_interval_upper"`
	ExpectedIncrementalConversions float64 `json:"expected_incremental_conversions"`
	ExpectedIncrementalRevenue     float64 `json:"expected_incremental_revenue"`
	RevenueCILower                 float64 `json:"revenue_ci_lower"`
	RevenueCIUpper                 float64 `json:"revenue_ci_upper"`
	PredictedLiftMean              float64 `json:"predicted_lift_mean"`
	PredictedLiftCILower           float64 `json:"predicted_lift_ci_lower"`
	PredictedLiftCIUpper           float64 `json:"predicted_lift_ci_upper"`

	// Frequentist fragment.
	TStatistic         float64 `json:"t_statistic"`
	PValue             float64 `json:"p_value"`
	DegreesOfFreedom   float64 `json:"degrees_of_freedom"`
	Chi2Statistic      float64 `json:"chi2_statistic"`
	Chi2PValue         float64 `json:"chi2_p_value"`
	CohensD            float64 `json:"cohens_d"`
	CohensH            float64 `json:"cohens_h"`
	EffectSizeCategory string  `json:"effect_size_category"`
	CI95Lower          float64 `json:"ci_95_lower"`
	CI95Upper          float64 `json:"ci_95_upper"`
	BootstrapCILower   float64 `json:"bootstrap_ci_lower"`
	BootstrapCIUpper   float64 `json:"bootstrap_ci_upper"`
	StatisticalPower   float64 `json:"statistical_power"`
	RequiredSampleSize int64   `json:"required_sample_size"`
	IsSignificant      bool    `json:"is_significant"`

	SampleCount int      `json:"sample_count"`
	RandomSeed  *uint64  `json:"random_seed,omitempty"`
	Flags       []string `json:"flags"`
}
