package fiber

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/domain"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/ports"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/usecase"
)

type AnalyzeExperimentUseCase interface {
	Execute(ctx context.Context, in usecase.AnalyzeExperimentInput) (*domain.ResultRecord, error)
}

type GetResultUseCase interface {
	Execute(ctx context.Context, id string) (*domain.ResultRecord, error)
}

type ExperimentHandler struct {
	analyzeUC AnalyzeExperimentUseCase
	getUC     GetResultUseCase
}

func NewExperimentHandler(analyzeUC AnalyzeExperimentUseCase, getUC GetResultUseCase) *ExperimentHandler {
	return &ExperimentHandler{analyzeUC: analyzeUC, getUC: getUC}
}

// AnalyzeExperiment godoc
// @Summary Analyze a two-arm conversion experiment
// @Description Runs the Bayesian and frequentist analyses on the given arm counts and returns the merged result record
// @Tags Experiments
// @Accept json
// @Produce json
// @Param request body AnalyzeExperimentRequest true "Experiment payload"
// @Success 200 {object} domain.ResultRecord
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /experiments/analyze [post]
func (h *ExperimentHandler) AnalyzeExperiment(c *fiber.Ctx) error {
	var req AnalyzeExperimentRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid_json",
		})
	}

	in := usecase.AnalyzeExperimentInput{
		Treatment: domain.ArmObservation{Trials: req.Treatment.Trials, Successes: req.Treatment.Successes},
		Control:   domain.ArmObservation{Trials: req.Control.Trials, Successes: req.Control.Successes},
		Config:    buildConfig(req),
	}

	rec, err := h.analyzeUC.Execute(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_experiment",
				Message: err.Error(),
			})
		case errors.Is(err, domain.ErrInvalidParameter):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_parameter",
				Message: err.Error(),
			})
		default:
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	return c.Status(http.StatusOK).JSON(rec)
}

// GetResult godoc
// @Summary Fetch a stored result record
// @Description Returns the result record previously produced for the given id
// @Tags Experiments
// @Produce json
// @Param id path string true "Result record id"
// @Success 200 {object} domain.ResultRecord
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /experiments/{id} [get]
func (h *ExperimentHandler) GetResult(c *fiber.Ctx) error {
	id := c.Params("id")

	rec, err := h.getUC.Execute(c.UserContext(), id)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidResultID):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_result_id",
				Message: err.Error(),
			})
		case errors.Is(err, ports.ErrResultNotFound):
			return c.Status(http.StatusNotFound).JSON(ErrorResponse{
				Error: "result_not_found",
			})
		default:
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	return c.Status(http.StatusOK).JSON(rec)
}

func buildConfig(req AnalyzeExperimentRequest) domain.AnalysisConfig {
	cfg := domain.DefaultAnalysisConfig()

	if req.PriorAlpha != nil {
		cfg.PriorAlpha = *req.PriorAlpha
	}
	if req.PriorBeta != nil {
		cfg.PriorBeta = *req.PriorBeta
	}
	if req.SampleCount != nil {
		cfg.SampleCount = *req.SampleCount
	}
	if req.CredibleLevel != nil {
		cfg.CredibleLevel = *req.CredibleLevel
	}
	if req.MinRelativeLift != nil {
		cfg.MinRelativeLift = *req.MinRelativeLift
	}
	if req.ValuePerConversion != nil {
		cfg.ValuePerConversion = *req.ValuePerConversion
	}
	if req.FutureHorizon != nil {
		cfg.FutureHorizon = *req.FutureHorizon
	}
	if req.PredictiveReplicates != nil {
		cfg.PredictiveReplicates = *req.PredictiveReplicates
	}
	if req.BootstrapReplicates != nil {
		cfg.BootstrapReplicates = *req.BootstrapReplicates
	}
	if req.SignificanceAlpha != nil {
		cfg.SignificanceAlpha = *req.SignificanceAlpha
	}
	if req.TargetPower != nil {
		cfg.TargetPower = *req.TargetPower
	}
	cfg.RandomSeed = req.RandomSeed

	return cfg
}
