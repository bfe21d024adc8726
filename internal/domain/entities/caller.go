package entities

// Caller identifies who issued a request: an authenticated user, an
// anonymous browser session, or both while a session is being claimed.
type Caller struct {
	UserID     string
	SessionKey string
}

// Authenticated reports whether the caller presented a valid bearer token.
func (c Caller) Authenticated() bool {
	return c.UserID != ""
}
