package entities

import "strings"

// Itinerary is a raw itinerary as returned by the trip planner's plan query.
type Itinerary struct {
	Duration     int64   `json:"duration"`
	WalkDistance float64 `json:"walkDistance"`
	Legs         []Leg   `json:"legs"`
}

// Leg is a raw itinerary leg. StartTime and EndTime are epoch milliseconds.
type Leg struct {
	Mode        string       `json:"mode"`
	StartTime   int64        `json:"startTime"`
	EndTime     int64        `json:"endTime"`
	Distance    float64      `json:"distance"`
	From        LegPlace     `json:"from"`
	To          LegPlace     `json:"to"`
	Trip        *LegTrip     `json:"trip"`
	LegGeometry *LegGeometry `json:"legGeometry"`
	Steps       []LegStep    `json:"steps"`
}

type LegPlace struct {
	Name string `json:"name"`
}

type LegTrip struct {
	RouteShortName *string   `json:"routeShortName"`
	TripHeadsign   *string   `json:"tripHeadsign"`
	Route          *LegRoute `json:"route"`
}

type LegRoute struct {
	ID        string     `json:"id"`
	ShortName *string    `json:"shortName"`
	LongName  *string    `json:"longName"`
	Agency    *LegAgency `json:"agency"`
}

type LegAgency struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

// LegGeometry holds an encoded polyline.
type LegGeometry struct {
	Points *string `json:"points"`
}

type LegStep struct {
	Distance   float64 `json:"distance"`
	StreetName *string `json:"streetName"`
}

// ModeSet returns the distinct uppercased modes of the itinerary's legs.
// A leg without a mode contributes the empty string.
func (it Itinerary) ModeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(it.Legs))
	for _, leg := range it.Legs {
		set[strings.ToUpper(leg.Mode)] = struct{}{}
	}
	return set
}
