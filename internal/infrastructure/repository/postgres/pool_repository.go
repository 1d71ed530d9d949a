package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lapollita/polla-api/internal/domain/pool"
	qb "github.com/lapollita/polla-api/internal/platform/querybuilder"
)

type PoolRepository struct {
	db *sqlx.DB
}

func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) GetByID(ctx context.Context, id string) (pool.Pool, bool, error) {
	query, args, err := qb.Select("*").
		From("pools").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return pool.Pool{}, false, fmt.Errorf("build get pool by id query: %w", err)
	}

	var row poolTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pool.Pool{}, false, nil
		}
		return pool.Pool{}, false, fmt.Errorf("get pool by id: %w", err)
	}

	return poolFromRow(row), true, nil
}

func (r *PoolRepository) GetByInviteCode(ctx context.Context, code string) (pool.Pool, bool, error) {
	query, args, err := qb.Select("*").
		From("pools").
		Where(
			qb.Eq("invite_code", code),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return pool.Pool{}, false, fmt.Errorf("build get pool by invite code query: %w", err)
	}

	var row poolTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pool.Pool{}, false, nil
		}
		return pool.Pool{}, false, fmt.Errorf("get pool by invite code: %w", err)
	}

	return poolFromRow(row), true, nil
}

func (r *PoolRepository) ListByParticipant(ctx context.Context, userID string) ([]pool.Pool, error) {
	query, args, err := qb.Select("*").
		From("pools").
		Where(
			qb.Expr("participant_ids @> ARRAY[?]", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pools by participant query: %w", err)
	}

	var rows []poolTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pools by participant: %w", err)
	}

	out := make([]pool.Pool, 0, len(rows))
	for _, row := range rows {
		out = append(out, poolFromRow(row))
	}
	return out, nil
}

func (r *PoolRepository) ListAll(ctx context.Context) ([]pool.Pool, error) {
	query, args, err := qb.Select("*").
		From("pools").
		Where(qb.IsNull("deleted_at")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pools query: %w", err)
	}

	var rows []poolTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}

	out := make([]pool.Pool, 0, len(rows))
	for _, row := range rows {
		out = append(out, poolFromRow(row))
	}
	return out, nil
}

func (r *PoolRepository) Create(ctx context.Context, p pool.Pool) error {
	insertModel := poolInsertModel{
		PublicID:       p.ID,
		Name:           p.Name,
		Tournament:     p.Tournament,
		LeagueRefID:    p.LeagueRefID,
		LeagueShortcut: p.LeagueShortcut,
		Season:         p.Season,
		AdminUserID:    p.AdminID,
		ParticipantIDs: pq.StringArray(p.Participants),
		Notes:          p.Notes,
		InviteCode:     p.InviteCode,
	}
	query, args, err := qb.InsertModel("pools", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create pool query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create pool: %w", err)
	}

	return nil
}

func (r *PoolRepository) AddParticipant(ctx context.Context, poolID, userID string) error {
	// The membership guard lives in the WHERE clause so double joins stay
	// no-ops without a read-modify-write cycle.
	query, args, err := qb.Update("pools").
		SetExpr("participant_ids", "array_append(participant_ids, ?)", userID).
		Where(
			qb.Eq("public_id", poolID),
			qb.Expr("NOT (participant_ids @> ARRAY[?])", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add participant query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

func poolFromRow(row poolTableModel) pool.Pool {
	return pool.Pool{
		ID:             row.PublicID,
		Name:           row.Name,
		Tournament:     row.Tournament,
		LeagueRefID:    row.LeagueRefID,
		LeagueShortcut: row.LeagueShortcut,
		Season:         row.Season,
		AdminID:        row.AdminUserID,
		Participants:   append([]string(nil), row.ParticipantIDs...),
		Notes:          row.Notes,
		InviteCode:     row.InviteCode,
		CreatedAt:      row.CreatedAt,
	}
}
