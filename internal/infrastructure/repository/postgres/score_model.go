package postgres

import "time"

type scoreTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	PoolID    string     `db:"pool_public_id"`
	UserID    string     `db:"user_id"`
	Total     int        `db:"total"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type scoreInsertModel struct {
	PublicID string `db:"public_id"`
	PoolID   string `db:"pool_public_id"`
	UserID   string `db:"user_id"`
	Total    int    `db:"total"`
}
