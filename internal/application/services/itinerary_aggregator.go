package services

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/somos/attraction/backend/internal/domain/entities"
)

// ModeFilter is a normalized (trimmed, uppercased) requested travel mode.
type ModeFilter string

// ParseModeFilter normalizes a requested mode and checks it is supported.
func ParseModeFilter(raw string) (ModeFilter, bool) {
	mode := strings.ToUpper(strings.TrimSpace(raw))
	switch mode {
	case entities.ModeAll, entities.ModeBus, entities.ModeWalk, entities.ModeBicycle, entities.ModeScooter:
		return ModeFilter(mode), true
	}
	return ModeFilter(mode), false
}

// Keep reports whether an itinerary with the given mode set satisfies the filter.
// WALK only keeps walk-only itineraries; the other modes keep any itinerary
// that uses them at least once.
func (f ModeFilter) Keep(modes map[string]struct{}) bool {
	switch f {
	case entities.ModeAll:
		return true
	case entities.ModeWalk:
		return isWalkOnly(modes)
	default:
		_, ok := modes[string(f)]
		return ok
	}
}

// ClassifyPrimaryMode picks the display bucket for an itinerary. It is
// deliberately independent of the requested filter.
func ClassifyPrimaryMode(modes map[string]struct{}) string {
	if isWalkOnly(modes) {
		return entities.BucketWalk
	}
	for _, candidate := range []struct{ mode, bucket string }{
		{entities.ModeBus, entities.BucketBus},
		{entities.ModeBicycle, entities.BucketBicycle},
		{entities.ModeScooter, entities.BucketScooter},
	} {
		if _, ok := modes[candidate.mode]; ok {
			return candidate.bucket
		}
	}
	return entities.BucketOther
}

func isWalkOnly(modes map[string]struct{}) bool {
	_, ok := modes[entities.ModeWalk]
	return ok && len(modes) == 1
}

// NormalizeLeg converts a raw planner leg into the client-facing shape.
// Timestamps are rendered in loc.
func NormalizeLeg(leg entities.Leg, loc *time.Location) entities.NormalizedLeg {
	mode := leg.Mode
	if mode == "" {
		mode = "UNKNOWN"
	}

	out := entities.NormalizedLeg{
		Type:      strings.ToLower(mode),
		From:      placeName(leg.From),
		To:        placeName(leg.To),
		Duration:  "N/A",
		DistanceM: roundMeters(leg.Distance),
	}
	if leg.LegGeometry != nil {
		out.Geometry = leg.LegGeometry.Points
	}

	if leg.StartTime != 0 && leg.EndTime != 0 {
		out.DurationS = int((leg.EndTime - leg.StartTime) / 1000)
		out.Duration = fmt.Sprintf("%dm %ds", out.DurationS/60, out.DurationS%60)
		start := isoTimestamp(leg.StartTime, loc)
		end := isoTimestamp(leg.EndTime, loc)
		out.StartTime = &start
		out.EndTime = &end
	}

	switch out.Type {
	case entities.BucketBus:
		out.BusDetails = busDetails(leg.Trip)
	case entities.BucketWalk:
		if len(leg.Steps) > 0 {
			out.WalkSteps = make([]entities.WalkStep, 0, len(leg.Steps))
			for _, step := range leg.Steps {
				out.WalkSteps = append(out.WalkSteps, entities.WalkStep{
					StreetName: step.StreetName,
					DistanceM:  roundMeters(step.Distance),
				})
			}
		}
	}

	return out
}

func busDetails(trip *entities.LegTrip) *entities.BusDetails {
	details := &entities.BusDetails{}
	if trip == nil {
		return details
	}

	details.RouteShort = trip.RouteShortName
	details.Headsign = trip.TripHeadsign
	if trip.Route != nil {
		details.RouteLong = trip.Route.LongName
		if trip.Route.Agency != nil {
			details.AuthorityID = trip.Route.Agency.ID
			details.AuthorityName = trip.Route.Agency.Name
		}
	}

	route, headsign := deref(trip.RouteShortName), deref(trip.TripHeadsign)
	if route == "" && headsign == "" {
		details.BusName = details.AuthorityName
	} else {
		name := strings.TrimSpace(fmt.Sprintf("Bus %s - %s", route, headsign))
		details.BusName = &name
	}
	return details
}

// AggregateSegments merges runs of consecutive legs with the same type.
// Bus segments collect the distinct route short names in order of appearance.
func AggregateSegments(legs []entities.NormalizedLeg) []entities.Segment {
	segments := make([]entities.Segment, 0, len(legs))
	for _, leg := range legs {
		if n := len(segments); n > 0 && segments[n-1].Mode == leg.Type {
			last := &segments[n-1]
			last.To = leg.To
			last.DistanceM += leg.DistanceM
			last.DurationS += leg.DurationS
			last.LegsCount++
			if route := legRouteShort(leg); route != "" && !slices.Contains(last.Routes, route) {
				last.Routes = append(last.Routes, route)
			}
			continue
		}

		segment := entities.Segment{
			Mode:      leg.Type,
			From:      leg.From,
			To:        leg.To,
			DistanceM: leg.DistanceM,
			DurationS: leg.DurationS,
			LegsCount: 1,
		}
		if leg.Type == entities.BucketBus {
			segment.Routes = []string{}
			if route := legRouteShort(leg); route != "" {
				segment.Routes = append(segment.Routes, route)
			}
		}
		segments = append(segments, segment)
	}
	return segments
}

// BuildTripOption normalizes one itinerary. index is its 1-based position in
// the planner's unfiltered list.
func BuildTripOption(index int, itinerary entities.Itinerary, loc *time.Location) entities.TripOption {
	legs := make([]entities.NormalizedLeg, 0, len(itinerary.Legs))
	var total float64
	for _, leg := range itinerary.Legs {
		total += leg.Distance
		legs = append(legs, NormalizeLeg(leg, loc))
	}

	return entities.TripOption{
		Option:         index,
		TotalDistanceM: roundMeters(total),
		WalkDistanceM:  roundMeters(itinerary.WalkDistance),
		Legs:           legs,
		Segments:       AggregateSegments(legs),
	}
}

// AggregateItineraries filters, normalizes and buckets planner itineraries,
// preserving planner order inside each bucket.
func AggregateItineraries(itineraries []entities.Itinerary, filter ModeFilter, loc *time.Location) entities.TripOptions {
	options := entities.NewTripOptions()
	for i, itinerary := range itineraries {
		modes := itinerary.ModeSet()
		if !filter.Keep(modes) {
			continue
		}
		options.Add(ClassifyPrimaryMode(modes), BuildTripOption(i+1, itinerary, loc))
	}
	return options
}

func legRouteShort(leg entities.NormalizedLeg) string {
	if leg.BusDetails == nil {
		return ""
	}
	return deref(leg.RouteShort)
}

func placeName(place entities.LegPlace) string {
	if place.Name == "" {
		return entities.UnknownLegPlace
	}
	return place.Name
}

// isoTimestamp renders epoch milliseconds as ISO-8601 with the zone offset.
func isoTimestamp(ms int64, loc *time.Location) string {
	t := time.UnixMilli(ms).In(loc)
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05-07:00")
	}
	return t.Format("2006-01-02T15:04:05.000000-07:00")
}

func roundMeters(v float64) int {
	return int(math.RoundToEven(v))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
