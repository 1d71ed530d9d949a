package memory

import (
	"time"

	"github.com/lapollita/polla-api/internal/domain/pool"
)

const (
	SeedPoolIDBundesliga = "pool-bl1-demo"
	SeedAdminUserID      = "user-demo-admin"
)

// SeedPools returns demo data for running without a database.
func SeedPools() []pool.Pool {
	return []pool.Pool{
		{
			ID:             SeedPoolIDBundesliga,
			Name:           "Demo Polla Bundesliga",
			Tournament:     "1. Fußball-Bundesliga",
			LeagueRefID:    4741,
			LeagueShortcut: "bl1",
			Season:         "2025",
			AdminID:        SeedAdminUserID,
			Participants:   []string{SeedAdminUserID},
			Notes:          "Playground pool, safe to delete",
			InviteCode:     "DEMO2345",
			CreatedAt:      time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}
