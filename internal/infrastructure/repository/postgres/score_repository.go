package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lapollita/polla-api/internal/domain/score"
	"github.com/lapollita/polla-api/internal/platform/id"
	qb "github.com/lapollita/polla-api/internal/platform/querybuilder"
)

type ScoreRepository struct {
	db  *sqlx.DB
	ids id.Generator
}

func NewScoreRepository(db *sqlx.DB, ids id.Generator) *ScoreRepository {
	return &ScoreRepository{db: db, ids: ids}
}

func (r *ScoreRepository) GetByPoolAndUser(ctx context.Context, poolID, userID string) (score.Score, bool, error) {
	query, args, err := qb.Select("*").
		From("scores").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return score.Score{}, false, fmt.Errorf("build get score query: %w", err)
	}

	var row scoreTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return score.Score{}, false, nil
		}
		return score.Score{}, false, fmt.Errorf("get score: %w", err)
	}

	return scoreFromRow(row), true, nil
}

func (r *ScoreRepository) ListByPool(ctx context.Context, poolID string) ([]score.Score, error) {
	query, args, err := qb.Select("*").
		From("scores").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("total DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scores query: %w", err)
	}

	var rows []scoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}

	out := make([]score.Score, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoreFromRow(row))
	}
	return out, nil
}

func (r *ScoreRepository) Upsert(ctx context.Context, s score.Score) (score.Score, error) {
	publicID := s.ID
	if publicID == "" {
		generated, err := r.ids.NewID()
		if err != nil {
			return score.Score{}, fmt.Errorf("generate score id: %w", err)
		}
		publicID = generated
	}

	insertModel := scoreInsertModel{
		PublicID: publicID,
		PoolID:   s.PoolID,
		UserID:   s.UserID,
		Total:    s.Total,
	}
	query, args, err := qb.InsertModel("scores", insertModel, `ON CONFLICT (pool_public_id, user_id) WHERE deleted_at IS NULL
DO UPDATE SET
    total = EXCLUDED.total,
    deleted_at = NULL
RETURNING public_id`)
	if err != nil {
		return score.Score{}, fmt.Errorf("build upsert score query: %w", err)
	}

	var storedID string
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&storedID); err != nil {
		return score.Score{}, fmt.Errorf("upsert score: %w", err)
	}

	s.ID = storedID
	return s, nil
}

func scoreFromRow(row scoreTableModel) score.Score {
	return score.Score{
		ID:     row.PublicID,
		PoolID: row.PoolID,
		UserID: row.UserID,
		Total:  row.Total,
	}
}
