package fiber

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	expports "github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/ports"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/impact/core/domain"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/impact/core/usecase"
)

type AssessImpactUseCase interface {
	Execute(ctx context.Context, in usecase.AssessImpactInput) (*domain.ImpactReport, error)
}

type ImpactHandler struct {
	uc AssessImpactUseCase
}

func NewImpactHandler(uc AssessImpactUseCase) *ImpactHandler {
	return &ImpactHandler{uc: uc}
}

// AssessImpact godoc
// @Summary Translate a result record into business impact
// @Description Computes incremental revenue, CPA, ROAS, ROI and break-even from a stored result record and business assumptions
// @Tags Impact
// @Accept json
// @Produce json
// @Param request body AssessImpactRequest true "Impact payload"
// @Success 200 {object} domain.ImpactReport
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /impact [post]
func (h *ImpactHandler) AssessImpact(c *fiber.Ctx) error {
	var req AssessImpactRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid_json",
		})
	}

	if req.ResultID == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "result_id_required",
		})
	}

	in := usecase.AssessImpactInput{
		ResultID:    req.ResultID,
		Assumptions: buildAssumptions(req),
	}

	rep, err := h.uc.Execute(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidAssumptions):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_assumptions",
				Message: err.Error(),
			})
		case errors.Is(err, expports.ErrResultNotFound):
			return c.Status(http.StatusNotFound).JSON(ErrorResponse{
				Error: "result_not_found",
			})
		default:
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	return c.Status(http.StatusOK).JSON(rep)
}

func buildAssumptions(req AssessImpactRequest) domain.Assumptions {
	a := domain.DefaultAssumptions()

	if req.ValuePerConversion != nil {
		a.ValuePerConversion = *req.ValuePerConversion
	}
	if req.CostPerImpression != nil {
		a.CostPerImpression = *req.CostPerImpression
	}
	if req.TotalImpressions != nil {
		a.TotalImpressions = *req.TotalImpressions
	}
	if req.MarginalCostPerConversion != nil {
		a.MarginalCostPerConversion = *req.MarginalCostPerConversion
	}

	return a
}
