package postgres

import (
	"time"

	"github.com/lib/pq"
)

type poolTableModel struct {
	ID             int64          `db:"id"`
	PublicID       string         `db:"public_id"`
	Name           string         `db:"name"`
	Tournament     string         `db:"tournament"`
	LeagueRefID    int64          `db:"league_ref_id"`
	LeagueShortcut string         `db:"league_shortcut"`
	Season         string         `db:"season"`
	AdminUserID    string         `db:"admin_user_id"`
	ParticipantIDs pq.StringArray `db:"participant_ids"`
	Notes          string         `db:"notes"`
	InviteCode     string         `db:"invite_code"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	DeletedAt      *time.Time     `db:"deleted_at"`
}

type poolInsertModel struct {
	PublicID       string         `db:"public_id"`
	Name           string         `db:"name"`
	Tournament     string         `db:"tournament"`
	LeagueRefID    int64          `db:"league_ref_id"`
	LeagueShortcut string         `db:"league_shortcut"`
	Season         string         `db:"season"`
	AdminUserID    string         `db:"admin_user_id"`
	ParticipantIDs pq.StringArray `db:"participant_ids"`
	Notes          string         `db:"notes"`
	InviteCode     string         `db:"invite_code"`
}
