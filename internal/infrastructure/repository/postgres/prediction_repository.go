package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lapollita/polla-api/internal/domain/prediction"
	"github.com/lapollita/polla-api/internal/platform/id"
	qb "github.com/lapollita/polla-api/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db  *sqlx.DB
	ids id.Generator
}

func NewPredictionRepository(db *sqlx.DB, ids id.Generator) *PredictionRepository {
	return &PredictionRepository{db: db, ids: ids}
}

func (r *PredictionRepository) GetByKey(ctx context.Context, key prediction.Key) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").
		From("predictions").
		Where(
			qb.Eq("user_id", key.UserID),
			qb.Eq("match_id", key.MatchID),
			qb.Eq("pool_public_id", key.PoolID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction: %w", err)
	}

	return predictionFromRow(row), true, nil
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID, poolID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").
		From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("pool_public_id", poolID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions by user query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions by user: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

func (r *PredictionRepository) ListByPool(ctx context.Context, poolID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").
		From("predictions").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id", "match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions by pool query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions by pool: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

func (r *PredictionRepository) Upsert(ctx context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	publicID := p.ID
	if publicID == "" {
		generated, err := r.ids.NewID()
		if err != nil {
			return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
		}
		publicID = generated
	}

	insertModel := predictionInsertModel{
		PublicID:      publicID,
		UserID:        p.UserID,
		MatchID:       p.MatchID,
		PoolID:        p.PoolID,
		PredictedHome: p.Home,
		PredictedAway: p.Away,
		SavedDisplay:  p.SavedDisplay,
		FinalResult:   p.FinalResult,
		Points:        p.Points,
	}
	query, args, err := qb.InsertModel("predictions", insertModel, `ON CONFLICT (user_id, match_id, pool_public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    predicted_home = EXCLUDED.predicted_home,
    predicted_away = EXCLUDED.predicted_away,
    saved_display = EXCLUDED.saved_display,
    final_result = EXCLUDED.final_result,
    points = EXCLUDED.points,
    deleted_at = NULL
RETURNING public_id`)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("build upsert prediction query: %w", err)
	}

	var storedID string
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&storedID); err != nil {
		return prediction.Prediction{}, fmt.Errorf("upsert prediction: %w", err)
	}

	p.ID = storedID
	return p, nil
}

func (r *PredictionRepository) Delete(ctx context.Context, key prediction.Key) error {
	query, args, err := qb.Update("predictions").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("user_id", key.UserID),
			qb.Eq("match_id", key.MatchID),
			qb.Eq("pool_public_id", key.PoolID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete prediction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete prediction: %w", err)
	}
	return nil
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	out := prediction.Prediction{
		ID:           row.PublicID,
		UserID:       row.UserID,
		MatchID:      row.MatchID,
		PoolID:       row.PoolID,
		SavedDisplay: row.SavedDisplay,
		FinalResult:  row.FinalResult,
		Points:       row.Points,
	}
	if row.PredictedHome != nil {
		home := *row.PredictedHome
		out.Home = &home
	}
	if row.PredictedAway != nil {
		away := *row.PredictedAway
		out.Away = &away
	}
	return out
}
