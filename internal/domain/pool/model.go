package pool

import "time"

// Pool is a private prediction group played over one tournament season.
type Pool struct {
	ID             string
	Name           string
	Tournament     string
	LeagueRefID    int64
	LeagueShortcut string
	Season         string
	AdminID        string
	Participants   []string
	Notes          string
	InviteCode     string
	CreatedAt      time.Time
}

func (p Pool) HasParticipant(userID string) bool {
	for _, id := range p.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
