package ports

import (
	"context"
	"errors"

	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/domain"
)

// ErrResultNotFound is returned by GetResult when no record exists for the id.
var ErrResultNotFound = errors.New("result record not found")

type ResultRepositoryPort interface {
	SaveResult(ctx context.Context, rec *domain.ResultRecord) error
	GetResult(ctx context.Context, id string) (*domain.ResultRecord, error)
}
