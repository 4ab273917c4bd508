package usecase_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/domain"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/ports"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/usecase"
)

// fakeResultRepository fakes ResultRepositoryPort.
type fakeResultRepository struct {
	SaveFn    func(ctx context.Context, rec *domain.ResultRecord) error
	GetFn     func(ctx context.Context, id string) (*domain.ResultRecord, error)
	saved     *domain.ResultRecord
	saveCalls int
}

func (f *fakeResultRepository) SaveResult(ctx context.Context, rec *domain.ResultRecord) error {
	f.saveCalls++
	f.saved = rec
	if f.SaveFn != nil {
		return f.SaveFn(ctx, rec)
	}
	return nil
}

func (f *fakeResultRepository) GetResult(ctx context.Context, id string) (*domain.ResultRecord, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, id)
	}
	return nil, ports.ErrResultNotFound
}

func testInput(seed uint64) usecase.AnalyzeExperimentInput {
	cfg := domain.DefaultAnalysisConfig()
	cfg.SampleCount = 20000
	cfg.PredictiveReplicates = 200
	cfg.BootstrapReplicates = 2000
	cfg.RandomSeed = &seed

	return usecase.AnalyzeExperimentInput{
		Treatment: domain.ArmObservation{Trials: 1000, Successes: 150},
		Control:   domain.ArmObservation{Trials: 1000, Successes: 100},
		Config:    cfg,
	}
}

// ------------------------------------------------------------
// SUCCESS
// ------------------------------------------------------------

func TestAnalyzeExperiment_Success(t *testing.T) {
	repo := &fakeResultRepository{}
	uc := usecase.NewAnalyzeExperimentUseCase(repo, nil)

	rec, err := uc.Execute(context.Background(), testInput(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected a record")
	}
	if repo.saveCalls != 1 || repo.saved != rec {
		t.Fatalf("expected the produced record to be persisted exactly once")
	}

	if rec.ID == "" {
		t.Fatalf("record must carry an id")
	}
	if rec.AdGroupSize != 1000 || rec.AdConversions != 150 {
		t.Fatalf("input snapshot wrong: %+v", rec)
	}
	if rec.AdConversionRate != 0.15 || rec.PsaConversionRate != 0.10 {
		t.Fatalf("rates wrong: ad=%v psa=%v", rec.AdConversionRate, rec.PsaConversionRate)
	}

	// Both fragments must be populated and coherent.
	if rec.ProbAdBetter <= 0.95 {
		t.Fatalf("prob_ad_better %v, want > 0.95", rec.ProbAdBetter)
	}
	if rec.CredibleIntervalLower <= 0 {
		t.Fatalf("credible_interval_lower %v, want > 0", rec.CredibleIntervalLower)
	}
	if rec.PValue >= 0.05 || !rec.IsSignificant {
		t.Fatalf("expected a significant result: p=%v", rec.PValue)
	}
	if rec.Evidence != "very strong" {
		t.Fatalf("evidence %q, want \"very strong\"", rec.Evidence)
	}
	if rec.SampleCount != 20000 {
		t.Fatalf("sample_count %d, want 20000", rec.SampleCount)
	}
	if rec.RandomSeed == nil || *rec.RandomSeed != 5 {
		t.Fatalf("seed not recorded: %v", rec.RandomSeed)
	}

	// Bayesian and frequentist views of the same difference must agree on sign.
	if (rec.CI95Lower > 0) != (rec.CredibleIntervalLower > 0) {
		t.Fatalf("analytic and credible intervals disagree on direction")
	}

	// Finite-only contract.
	for name, v := range map[string]float64{
		"expected_lift":       rec.ExpectedLift,
		"t_statistic":         rec.TStatistic,
		"p_value":             rec.PValue,
		"chi2_statistic":      rec.Chi2Statistic,
		"cohens_d":            rec.CohensD,
		"cohens_h":            rec.CohensH,
		"statistical_power":   rec.StatisticalPower,
		"predicted_lift_mean": rec.PredictedLiftMean,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is not finite: %v", name, v)
		}
	}
	if rec.Flags == nil {
		t.Fatalf("flags must be non-nil for serialization")
	}
}

func TestAnalyzeExperiment_SeededRunsProduceIdenticalNumbers(t *testing.T) {
	uc := usecase.NewAnalyzeExperimentUseCase(&fakeResultRepository{}, nil)

	r1, err := uc.Execute(context.Background(), testInput(77))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := uc.Execute(context.Background(), testInput(77))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r1.ProbAdBetter != r2.ProbAdBetter ||
		r1.CredibleIntervalLower != r2.CredibleIntervalLower ||
		r1.BootstrapCILower != r2.BootstrapCILower {
		t.Fatalf("seeded runs diverge")
	}
}

// ------------------------------------------------------------
// FAILURES
// ------------------------------------------------------------

func TestAnalyzeExperiment_InvalidInputSkipsRepository(t *testing.T) {
	repo := &fakeResultRepository{}
	uc := usecase.NewAnalyzeExperimentUseCase(repo, nil)

	in := testInput(1)
	in.Control = domain.ArmObservation{Trials: 0, Successes: 0}

	_, err := uc.Execute(context.Background(), in)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.saveCalls != 0 {
		t.Fatalf("repository must not be called for invalid input")
	}
}

func TestAnalyzeExperiment_InvalidConfigRejected(t *testing.T) {
	uc := usecase.NewAnalyzeExperimentUseCase(&fakeResultRepository{}, nil)

	in := testInput(1)
	in.Config.CredibleLevel = 2

	if _, err := uc.Execute(context.Background(), in); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestAnalyzeExperiment_RepositoryErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	repo := &fakeResultRepository{
		SaveFn: func(ctx context.Context, rec *domain.ResultRecord) error { return boom },
	}
	uc := usecase.NewAnalyzeExperimentUseCase(repo, nil)

	if _, err := uc.Execute(context.Background(), testInput(1)); !errors.Is(err, boom) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

// ------------------------------------------------------------
// GetResult
// ------------------------------------------------------------

func TestGetResult_Success(t *testing.T) {
	want := &domain.ResultRecord{ID: "2b1c8e1a-93a4-4a7e-8f52-0c4c38a1d001"}
	repo := &fakeResultRepository{
		GetFn: func(ctx context.Context, id string) (*domain.ResultRecord, error) {
			if id != want.ID {
				t.Fatalf("unexpected id %q", id)
			}
			return want, nil
		},
	}

	uc := usecase.NewGetResultUseCase(repo)
	got, err := uc.Execute(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("wrong record returned")
	}
}

func TestGetResult_RejectsMalformedID(t *testing.T) {
	uc := usecase.NewGetResultUseCase(&fakeResultRepository{})

	if _, err := uc.Execute(context.Background(), "not-a-uuid"); !errors.Is(err, usecase.ErrInvalidResultID) {
		t.Fatalf("expected ErrInvalidResultID, got %v", err)
	}
}

func TestGetResult_NotFound(t *testing.T) {
	uc := usecase.NewGetResultUseCase(&fakeResultRepository{})

	_, err := uc.Execute(context.Background(), "2b1c8e1a-93a4-4a7e-8f52-0c4c38a1d001")
	if !errors.Is(err, ports.ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}
}
