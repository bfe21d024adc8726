package entities

// Stop is a transit stop as published by the trip planner. Stops are never
// persisted; they are fetched fresh for each request.
type Stop struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Code *string `json:"code"`
}

// StopTime is one departure from a stop as reported by the planner.
// Times are seconds since local midnight of the service day.
type StopTime struct {
	ScheduledArrival   int    `json:"scheduledArrival"`
	RealtimeArrival    *int   `json:"realtimeArrival"`
	ScheduledDeparture int    `json:"scheduledDeparture"`
	RealtimeDeparture  int    `json:"realtimeDeparture"`
	RouteShortName     string `json:"routeShortName"`
	RouteLongName      string `json:"routeLongName"`
}

// StopTimes is the planner's answer for a single stop.
// A nil value from the planner means the stop does not exist.
type StopTimes struct {
	Name  string     `json:"name"`
	Times []StopTime `json:"times"`
}

// UpcomingTrip is a formatted departure shown on a stop's schedule board.
type UpcomingTrip struct {
	Route     string `json:"route"`
	Name      string `json:"name"`
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
}

// UnknownStopName is shown when the planner cannot resolve a stop.
const UnknownStopName = "Unknown Stop"

// StopSchedule is the list of upcoming departures for a stop.
type StopSchedule struct {
	StopID        string         `json:"stop_id"`
	StopName      string         `json:"stop_name"`
	UpcomingTrips []UpcomingTrip `json:"upcoming_trips"`
}

// UnknownStopSchedule is the schedule rendered when lookup fails.
func UnknownStopSchedule(stopID string) *StopSchedule {
	return &StopSchedule{
		StopID:        stopID,
		StopName:      UnknownStopName,
		UpcomingTrips: []UpcomingTrip{},
	}
}
