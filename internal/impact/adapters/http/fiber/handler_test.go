package fiber_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	expports "github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/ports"
	httpadapter "github.com/RamenMachine/Marketing-Analysis-ABTest/internal/impact/adapters/http/fiber"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/impact/core/domain"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/impact/core/usecase"
)

type fakeAssessUseCase struct {
	ExecuteFn func(ctx context.Context, in usecase.AssessImpactInput) (*domain.ImpactReport, error)
}

func (f *fakeAssessUseCase) Execute(ctx context.Context, in usecase.AssessImpactInput) (*domain.ImpactReport, error) {
	if f.ExecuteFn != nil {
		return f.ExecuteFn(ctx, in)
	}
	return nil, nil
}

func setupApp(t *testing.T, uc httpadapter.AssessImpactUseCase) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := httpadapter.NewImpactHandler(uc)
	app.Post("/impact", h.AssessImpact)
	return app
}

func postJSON(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/impact", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestAssessImpact_Success(t *testing.T) {
	uc := &fakeAssessUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.AssessImpactInput) (*domain.ImpactReport, error) {
			if in.ResultID != "2b1c8e1a-93a4-4a7e-8f52-0c4c38a1d001" {
				t.Fatalf("result id mismapped: %q", in.ResultID)
			}
			// Overridden field applied, untouched fields keep defaults.
			if in.Assumptions.ValuePerConversion != 250 {
				t.Fatalf("override not applied: %v", in.Assumptions.ValuePerConversion)
			}
			if in.Assumptions.CostPerImpression != 0.01 {
				t.Fatalf("default lost: %v", in.Assumptions.CostPerImpression)
			}
			return &domain.ImpactReport{ResultID: in.ResultID, IncrementalConversions: 50}, nil
		},
	}
	app := setupApp(t, uc)

	resp := postJSON(t, app, `{
		"result_id": "2b1c8e1a-93a4-4a7e-8f52-0c4c38a1d001",
		"value_per_conversion": 250
	}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var rep domain.ImpactReport
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if rep.IncrementalConversions != 50 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestAssessImpact_InvalidJSON(t *testing.T) {
	app := setupApp(t, &fakeAssessUseCase{})

	resp := postJSON(t, app, "{not json")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	// Same envelope as every other error path.
	var body httpadapter.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if body.Error != "invalid_json" {
		t.Fatalf("unexpected error code: %+v", body)
	}
}

func TestAssessImpact_MissingResultID(t *testing.T) {
	app := setupApp(t, &fakeAssessUseCase{})

	resp := postJSON(t, app, `{"value_per_conversion": 100}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if body["error"] != "result_id_required" {
		t.Fatalf("unexpected error code: %v", body)
	}
}

func TestAssessImpact_InvalidAssumptionsMapsTo400(t *testing.T) {
	uc := &fakeAssessUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.AssessImpactInput) (*domain.ImpactReport, error) {
			return nil, fmt.Errorf("%w: value per conversion is negative", usecase.ErrInvalidAssumptions)
		},
	}
	app := setupApp(t, uc)

	resp := postJSON(t, app, `{"result_id": "abc", "value_per_conversion": -1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if body["error"] != "invalid_assumptions" {
		t.Fatalf("unexpected error code: %v", body)
	}
}

func TestAssessImpact_NotFoundMapsTo404(t *testing.T) {
	uc := &fakeAssessUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.AssessImpactInput) (*domain.ImpactReport, error) {
			return nil, expports.ErrResultNotFound
		},
	}
	app := setupApp(t, uc)

	resp := postJSON(t, app, `{"result_id": "2b1c8e1a-93a4-4a7e-8f52-0c4c38a1d001"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAssessImpact_InternalErrorMapsTo500(t *testing.T) {
	uc := &fakeAssessUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.AssessImpactInput) (*domain.ImpactReport, error) {
			return nil, fmt.Errorf("db down")
		},
	}
	app := setupApp(t, uc)

	resp := postJSON(t, app, `{"result_id": "2b1c8e1a-93a4-4a7e-8f52-0c4c38a1d001"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}
