package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/domain"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/ports"
)

var ErrInvalidResultID = errors.New("invalid result id")

type GetResultUseCase struct {
	repo ports.ResultRepositoryPort
}

func NewGetResultUseCase(repo ports.ResultRepositoryPort) *GetResultUseCase {
	return &GetResultUseCase{repo: repo}
}

func (uc *GetResultUseCase) Execute(ctx context.Context, id string) (*domain.ResultRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResultID, id)
	}
	return uc.repo.GetResult(ctx, id)
}
