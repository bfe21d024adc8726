package entities

import "time"

// Booking is a trip the user committed to.
type Booking struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user" db:"user_id"`
	Origin      string    `json:"origin" db:"origin"`
	Destination string    `json:"destination" db:"destination"`
	Time        time.Time `json:"time" db:"time"`
	Mode        string    `json:"mode" db:"mode"`
	DistanceKm  *float64  `json:"distance_km,omitempty" db:"distance_km"`
	// CO2 figures are derived from DistanceKm and Mode when a distance is known.
	CO2EmittedKg *float64  `json:"co2_emitted_kg,omitempty" db:"co2_emitted_kg"`
	CO2SavedKg   *float64  `json:"co2_saved_kg,omitempty" db:"co2_saved_kg"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
