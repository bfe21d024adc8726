package entities

import "time"

// Search records one successful trip planning request. Exactly one of UserID
// and AnonymousSessionKey is set when the record is written; the session key
// is cleared once the session's owner signs in.
type Search struct {
	ID                  string    `json:"id" db:"id"`
	UserID              *string   `json:"user,omitempty" db:"user_id"`
	AnonymousSessionKey *string   `json:"anonymous_session_key,omitempty" db:"anonymous_session_key"`
	FromLat             float64   `json:"from_lat" db:"from_lat"`
	FromLon             float64   `json:"from_lon" db:"from_lon"`
	ToLat               float64   `json:"to_lat" db:"to_lat"`
	ToLon               float64   `json:"to_lon" db:"to_lon"`
	TripDate            time.Time `json:"trip_date" db:"trip_date"`
	RequestedAt         time.Time `json:"requested_at" db:"requested_at"`
	Modes               string    `json:"modes" db:"modes"`
}
