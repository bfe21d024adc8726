package entities

import "encoding/json"

// Travel modes accepted by the plan endpoint, in their normalized form.
const (
	ModeAll     = "ALL"
	ModeBus     = "BUS"
	ModeWalk    = "WALK"
	ModeBicycle = "BICYCLE"
	ModeScooter = "SCOOTER"
)

// Option buckets in the plan response.
const (
	BucketWalk    = "walk"
	BucketBus     = "bus"
	BucketBicycle = "bicycle"
	BucketScooter = "scooter"
	BucketOther   = "other"
)

// UnknownLegPlace names a leg endpoint the planner left unnamed.
const UnknownLegPlace = "Unknown stop"

// NormalizedLeg is a leg in the client-facing shape.
type NormalizedLeg struct {
	Type      string  `json:"type"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Duration  string  `json:"duration"`
	DurationS int     `json:"duration_s"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Geometry  *string `json:"geometry"`
	DistanceM int     `json:"distance_m"`

	*BusDetails
	WalkSteps []WalkStep `json:"walk_steps,omitempty"`
}

// BusDetails is only present on bus legs.
type BusDetails struct {
	RouteShort    *string `json:"route_short"`
	RouteLong     *string `json:"route_long"`
	Headsign      *string `json:"headsign"`
	AuthorityID   *string `json:"authority_id"`
	AuthorityName *string `json:"authority_name"`
	BusName       *string `json:"bus_name"`
}

type WalkStep struct {
	StreetName *string `json:"streetName"`
	DistanceM  int     `json:"distance_m"`
}

// Segment is a run of consecutive legs sharing the same type.
type Segment struct {
	Mode      string   `json:"mode"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	DistanceM int      `json:"distance_m"`
	DurationS int      `json:"duration_s"`
	LegsCount int      `json:"legs_count"`
	Routes    []string `json:"-"`
}

// MarshalJSON emits routes only for bus segments, always as an array.
func (s Segment) MarshalJSON() ([]byte, error) {
	type plain Segment
	if s.Mode != "bus" {
		return json.Marshal(plain(s))
	}
	routes := s.Routes
	if routes == nil {
		routes = []string{}
	}
	return json.Marshal(struct {
		plain
		Routes []string `json:"routes"`
	}{plain(s), routes})
}

type TripOption struct {
	Option         int             `json:"option"`
	TotalDistanceM int             `json:"total_distance_m"`
	WalkDistanceM  int             `json:"walk_distance_m"`
	Legs           []NormalizedLeg `json:"legs"`
	Segments       []Segment       `json:"segments"`
}

// TripOptions groups options by primary mode. Every bucket is always present.
type TripOptions struct {
	Walk    []TripOption `json:"walk"`
	Bus     []TripOption `json:"bus"`
	Bicycle []TripOption `json:"bicycle"`
	Scooter []TripOption `json:"scooter"`
	Other   []TripOption `json:"other"`
}

// NewTripOptions returns options with every bucket initialized to an empty slice.
func NewTripOptions() TripOptions {
	return TripOptions{
		Walk:    []TripOption{},
		Bus:     []TripOption{},
		Bicycle: []TripOption{},
		Scooter: []TripOption{},
		Other:   []TripOption{},
	}
}

// Add appends an option to the named bucket. Unknown buckets go to Other.
func (o *TripOptions) Add(bucket string, option TripOption) {
	switch bucket {
	case BucketWalk:
		o.Walk = append(o.Walk, option)
	case BucketBus:
		o.Bus = append(o.Bus, option)
	case BucketBicycle:
		o.Bicycle = append(o.Bicycle, option)
	case BucketScooter:
		o.Scooter = append(o.Scooter, option)
	default:
		o.Other = append(o.Other, option)
	}
}

// Count returns the number of options across all buckets.
func (o TripOptions) Count() int {
	return len(o.Walk) + len(o.Bus) + len(o.Bicycle) + len(o.Scooter) + len(o.Other)
}

// TripPlan is the plan endpoint response.
type TripPlan struct {
	FromStationName *string     `json:"fromStationName"`
	ToStationName   *string     `json:"toStationName"`
	Options         TripOptions `json:"options"`
}
