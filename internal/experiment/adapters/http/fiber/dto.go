package fiber

// ArmRequest represents one arm's aggregated counts
// @Description Arm observation DTO
type ArmRequest struct {
	Trials    int64 `json:"trials"`
	Successes int64 `json:"successes"`
}

// AnalyzeExperimentRequest represents the analysis payload. Every config
// field is optional; omitted fields take the documented defaults.
// @Description Experiment analysis DTO
type AnalyzeExperimentRequest struct {
	Treatment ArmRequest `json:"treatment"`
	Control   ArmRequest `json:"control"`

	PriorAlpha           *float64 `json:"prior_alpha,omitempty"`
	PriorBeta            *float64 `json:"prior_beta,omitempty"`
	SampleCount          *int     `json:"sample_count,omitempty"`
	CredibleLevel        *float64 `json:"credible_level,omitempty"`
	MinRelativeLift      *float64 `json:"min_relative_lift,omitempty"`
	ValuePerConversion   *float64 `json:"value_per_conversion,omitempty"`
	FutureHorizon        *int64   `json:"future_horizon,omitempty"`
	PredictiveReplicates *int     `json:"predictive_replicates,omitempty"`
	BootstrapReplicates  *int     `json:"bootstrap_replicates,omitempty"`
	SignificanceAlpha    *float64 `json:"significance_alpha,omitempty"`
	TargetPower          *float64 `json:"target_power,omitempty"`
	RandomSeed           *uint64  `json:"random_seed,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_experiment"`
	Message string `json:"message" example:"control arm has zero trials"`
}
