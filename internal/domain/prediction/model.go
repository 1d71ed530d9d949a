package prediction

import "strconv"

// Prediction is one user's guess for one match inside one pool.
// Home/Away are pointers because a slot can be blank before the first save
// and cleared again afterwards; a cleared pair means the row gets deleted.
type Prediction struct {
	ID           string
	UserID       string
	MatchID      int64
	PoolID       string
	Home         *int
	Away         *int
	SavedDisplay string
	FinalResult  string
	Points       int
}

// Key is the natural identity of a prediction row.
type Key struct {
	UserID  string
	MatchID int64
	PoolID  string
}

func (p Prediction) Key() Key {
	return Key{UserID: p.UserID, MatchID: p.MatchID, PoolID: p.PoolID}
}

// IsComplete reports whether both slots carry a value. Only complete
// predictions are persisted and scored.
func (p Prediction) IsComplete() bool {
	return p.Home != nil && p.Away != nil
}

// IsCleared reports whether both slots were blanked out.
func (p Prediction) IsCleared() bool {
	return p.Home == nil && p.Away == nil
}

// Display renders the user-facing "H - A" form of a score pair.
// An incomplete pair renders empty.
func Display(home, away *int) string {
	if home == nil || away == nil {
		return ""
	}
	return strconv.Itoa(*home) + " - " + strconv.Itoa(*away)
}
