package geo

import "math"

// EarthRadiusMeters is the mean earth radius of the spherical model.
const EarthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters between two
// (longitude, latitude) pairs given in degrees.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	lon1, lat1, lon2, lat2 = toRadians(lon1), toRadians(lat1), toRadians(lon2), toRadians(lat2)

	dLon := lon2 - lon1
	dLat := lat2 - lat1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push a slightly above 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Asin(math.Sqrt(a))
	return c * EarthRadiusMeters
}

// BoundingBox is an inclusive latitude/longitude rectangle.
type BoundingBox struct {
	Name   string  `yaml:"name" json:"name"`
	MinLat float64 `yaml:"min_lat" json:"min_lat" validate:"gte=-90,lte=90"`
	MaxLat float64 `yaml:"max_lat" json:"max_lat" validate:"gte=-90,lte=90,gtefield=MinLat"`
	MinLon float64 `yaml:"min_lon" json:"min_lon" validate:"gte=-180,lte=180"`
	MaxLon float64 `yaml:"max_lon" json:"max_lon" validate:"gte=-180,lte=180,gtefield=MinLon"`
}

// Contains reports whether the coordinate lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// AnyContains reports whether any of the boxes contains the coordinate.
func AnyContains(boxes []BoundingBox, lat, lon float64) bool {
	for _, box := range boxes {
		if box.Contains(lat, lon) {
			return true
		}
	}
	return false
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
