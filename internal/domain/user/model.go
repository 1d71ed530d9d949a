package user

// User is the account-service view of a participant.
type User struct {
	ID       string
	Username string
	Email    string
}

// Principal is the authenticated caller extracted from a bearer token.
type Principal struct {
	UserID   string
	Username string
	Email    string
}
