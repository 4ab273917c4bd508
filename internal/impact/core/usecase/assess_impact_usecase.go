package usecase

import (
	"context"
	"errors"
	"fmt"

	expdomain "github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/domain"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/impact/core/domain"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/impact/core/ports"
)

var ErrInvalidAssumptions = errors.New("invalid business assumptions")

type AssessImpactInput struct {
	ResultID    string
	Assumptions domain.Assumptions
}

type AssessImpactUseCase struct {
	results ports.ResultSourcePort
}

func NewAssessImpactUseCase(results ports.ResultSourcePort) *AssessImpactUseCase {
	return &AssessImpactUseCase{results: results}
}

// Execute fetches the result record and translates it into business terms.
func (uc *AssessImpactUseCase) Execute(ctx context.Context, in AssessImpactInput) (*domain.ImpactReport, error) {
	if err := validateAssumptions(in.Assumptions); err != nil {
		return nil, err
	}

	rec, err := uc.results.GetResult(ctx, in.ResultID)
	if err != nil {
		return nil, err
	}

	return Assess(rec, in.Assumptions), nil
}

// Assess computes the economic model from a record and assumptions. Pure;
// exposed so callers holding a record need no repository round trip.
func Assess(rec *expdomain.ResultRecord, a domain.Assumptions) *domain.ImpactReport {
	nAd := float64(rec.AdGroupSize)
	adConversions := float64(rec.AdConversions)

	// Conversions beyond what the control rate predicts for the ad group.
	incremental := adConversions - nAd*rec.PsaConversionRate

	rep := &domain.ImpactReport{
		ResultID:               rec.ID,
		IncrementalConversions: incremental,
		IncrementalRevenue:     incremental * a.ValuePerConversion,
		TotalRevenue:           adConversions * a.ValuePerConversion,
		TotalCampaignCost: float64(a.TotalImpressions)*a.CostPerImpression +
			adConversions*a.MarginalCostPerConversion,
	}

	if incremental > 0 {
		rep.CostPerIncrementalAcquisition = rep.TotalCampaignCost / incremental
	} else {
		rep.CPAUndefined = true
	}

	if rep.TotalCampaignCost > 0 {
		rep.ReturnOnAdSpend = rep.TotalRevenue / rep.TotalCampaignCost
		rep.ROITotal = (rep.TotalRevenue - rep.TotalCampaignCost) / rep.TotalCampaignCost
		rep.ROIIncremental = (rep.IncrementalRevenue - rep.TotalCampaignCost) / rep.TotalCampaignCost
	} else {
		rep.ROASUndefined = true
		rep.ROIUndefined = true
	}

	if a.ValuePerConversion > 0 {
		rep.BreakEvenConversions = rep.TotalCampaignCost / a.ValuePerConversion
		rep.MeetsBreakEven = incremental > rep.BreakEvenConversions
		rep.BreakEvenMargin = incremental - rep.BreakEvenConversions
		if nAd > 0 {
			rep.BreakEvenRate = rep.BreakEvenConversions / nAd
		} else {
			rep.BreakEvenUndefined = true
		}
	} else {
		rep.BreakEvenUndefined = true
	}

	return rep
}

func validateAssumptions(a domain.Assumptions) error {
	if a.ValuePerConversion < 0 {
		return fmt.Errorf("%w: value per conversion is negative", ErrInvalidAssumptions)
	}
	if a.CostPerImpression < 0 {
		return fmt.Errorf("%w: cost per impression is negative", ErrInvalidAssumptions)
	}
	if a.TotalImpressions < 0 {
		return fmt.Errorf("%w: total impressions is negative", ErrInvalidAssumptions)
	}
	if a.MarginalCostPerConversion < 0 {
		return fmt.Errorf("%w: marginal cost per conversion is negative", ErrInvalidAssumptions)
	}
	return nil
}
