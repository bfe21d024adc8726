package entities

import "time"

// Favorite place types offered by the mobile client.
const (
	PlaceTypeHome  = "home"
	PlaceTypeWork  = "work"
	PlaceTypeOther = "other"
)

// FavoritePlace is an address a user saved for quick trip planning.
type FavoritePlace struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user" db:"user_id"`
	Address   string    `json:"address" db:"address"`
	Type      string    `json:"type" db:"type"`
	IsDefault bool      `json:"is_default" db:"is_default"`
	Lat       *float64  `json:"lat,omitempty" db:"lat"`
	Lon       *float64  `json:"lon,omitempty" db:"lon"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// NearestStop is filled in on read for places with coordinates.
	NearestStop *Stop `json:"nearest_stop,omitempty" db:"-"`
}

// HasLocation reports whether the place carries coordinates.
func (p *FavoritePlace) HasLocation() bool {
	return p.Lat != nil && p.Lon != nil
}
