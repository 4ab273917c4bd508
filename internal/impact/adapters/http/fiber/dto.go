package fiber

// AssessImpactRequest represents the economic model payload
// @Description Business impact DTO
type AssessImpactRequest struct {
	ResultID string `json:"result_id"`

	ValuePerConversion        *float64 `json:"value_per_conversion,omitempty"`
	CostPerImpression         *float64 `json:"cost_per_impression,omitempty"`
	TotalImpressions          *int64   `json:"total_impressions,omitempty"`
	MarginalCostPerConversion *float64 `json:"marginal_cost_per_conversion,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_assumptions"`
	Message string `json:"message" example:"value per conversion is negative"`
}
