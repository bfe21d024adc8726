package entities

import "time"

// Feedback is a rating left by a rider. It may point at the plan search the
// rider is commenting on.
type Feedback struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user,omitempty"`
	SearchID  *string   `json:"search,omitempty"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	Email     string    `json:"email"`
	Page      string    `json:"page"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Anonymous reports whether the feedback was left without signing in.
func (f *Feedback) Anonymous() bool {
	return f.UserID == nil
}
