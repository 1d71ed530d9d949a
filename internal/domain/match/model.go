package match

import "time"

// ResultTypeFinal tags the full-time result inside a match's result list.
// The feed may also carry half-time or provisional entries, so the final
// score must always be selected by type, never by position.
const ResultTypeFinal = 2

type Result struct {
	ResultID  int64
	Name      string
	TypeID    int
	HomeGoals int
	AwayGoals int
}

type Team struct {
	ID        int64
	Name      string
	ShortName string
	IconURL   string
}

type Match struct {
	ID             int64
	LeagueID       int64
	LeagueName     string
	LeagueShortcut string
	Season         string
	KickoffAt      time.Time
	HomeTeam       Team
	AwayTeam       Team
	IsFinished     bool
	LastUpdatedAt  time.Time
	Results        []Result
}

// FinalResult returns the full-time result when the feed has published one.
func (m Match) FinalResult() (Result, bool) {
	for _, result := range m.Results {
		if result.TypeID == ResultTypeFinal {
			return result, true
		}
	}
	return Result{}, false
}

// HasFinalResult reports whether a full-time result is available, which is
// the condition for scoring predictions against this match.
func (m Match) HasFinalResult() bool {
	_, ok := m.FinalResult()
	return ok
}
