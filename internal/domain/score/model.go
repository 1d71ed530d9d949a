package score

// Score is a user's aggregated point total inside one pool.
type Score struct {
	ID     string
	UserID string
	PoolID string
	Total  int
}
