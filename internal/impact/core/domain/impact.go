package domain

// Assumptions are the business inputs the economic model combines with a
// result record. Monetary amounts are in the campaign currency.
type Assumptions struct {
	ValuePerConversion        float64
	CostPerImpression         float64
	TotalImpressions          int64
	MarginalCostPerConversion float64
}

func DefaultAssumptions() Assumptions {
	return Assumptions{
		ValuePerConversion: 100,
		CostPerImpression:  0.01,
	}
}

// ImpactReport translates a statistical result into business terms. Ratio
// metrics whose denominator is zero are reported as zero with the matching
// Undefined flag set, never as an infinity.
type ImpactReport struct {
	ResultID string `json:"result_id"`

	IncrementalConversions float64 `json:"incremental_conversions"`
	IncrementalRevenue     float64 `json:"incremental_revenue"`
	TotalRevenue           float64 `json:"total_revenue"`
	TotalCampaignCost      float64 `json:"total_campaign_cost"`

	CostPerIncrementalAcquisition float64 `json:"cost_per_incremental_acquisition"`
	CPAUndefined                  bool    `json:"cpa_undefined"`

	ReturnOnAdSpend float64 `json:"return_on_ad_spend"`
	ROASUndefined   bool    `json:"roas_undefined"`

	ROITotal       float64 `json:"roi_total"`
	ROIIncremental float64 `json:"roi_incremental"`
	ROIUndefined   bool    `json:"roi_undefined"`

	BreakEvenConversions float64 `json:"break_even_conversions"`
	BreakEvenRate        float64 `json:"break_even_rate"`
	BreakEvenUndefined   bool    `json:"break_even_undefined"`
	MeetsBreakEven       bool    `json:"meets_break_even"`
	BreakEvenMargin      float64 `json:"break_even_margin"`
}
