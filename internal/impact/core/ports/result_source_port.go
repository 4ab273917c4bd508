package ports

import (
	"context"

	expdomain "github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/domain"
)

// ResultSourcePort hands the economic model a previously computed result
// record. The experiment repository satisfies it directly.
type ResultSourcePort interface {
	GetResult(ctx context.Context, id string) (*expdomain.ResultRecord, error)
}
