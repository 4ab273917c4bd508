package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/domain"
	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/ports"
)

type ResultRepository struct {
	db DB
}

func NewResultRepository(db DB) *ResultRepository {
	return &ResultRepository{db: db}
}

var _ ports.ResultRepositoryPort = (*ResultRepository)(nil)

// SQL templates
const insertResultSQL = `
INSERT INTO experiment_results (
    id,
    created_at,
    is_significant,
    flags,
    record
) VALUES (
    $1, $2, $3, $4, $5
)
ON CONFLICT (id) DO NOTHING;
`

const selectResultSQL = `
SELECT record FROM experiment_results WHERE id = $1;
`

func (r *ResultRepository) SaveResult(ctx context.Context, rec *domain.ResultRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, insertResultSQL,
		rec.ID,
		rec.CreatedAt,
		rec.IsSignificant,
		pq.Array(rec.Flags),
		payload,
	)
	return err
}

func (r *ResultRepository) GetResult(ctx context.Context, id string) (*domain.ResultRecord, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, selectResultSQL, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec domain.ResultRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
