package postgres

import "time"

type predictionTableModel struct {
	ID            int64      `db:"id"`
	PublicID      string     `db:"public_id"`
	UserID        string     `db:"user_id"`
	MatchID       int64      `db:"match_id"`
	PoolID        string     `db:"pool_public_id"`
	PredictedHome *int       `db:"predicted_home"`
	PredictedAway *int       `db:"predicted_away"`
	SavedDisplay  string     `db:"saved_display"`
	FinalResult   string     `db:"final_result"`
	Points        int        `db:"points"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

type predictionInsertModel struct {
	PublicID      string `db:"public_id"`
	UserID        string `db:"user_id"`
	MatchID       int64  `db:"match_id"`
	PoolID        string `db:"pool_public_id"`
	PredictedHome *int   `db:"predicted_home"`
	PredictedAway *int   `db:"predicted_away"`
	SavedDisplay  string `db:"saved_display"`
	FinalResult   string `db:"final_result"`
	Points        int    `db:"points"`
}
