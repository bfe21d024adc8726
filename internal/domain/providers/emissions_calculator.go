package providers

// Emissions is the CO2 footprint of a trip compared with driving it alone.
type Emissions struct {
	EmittedKg float64
	SavedKg   float64
}

// EmissionsCalculator derives CO2 figures from a trip's distance and mode
type EmissionsCalculator interface {
	Calculate(mode string, distanceKm float64) Emissions
}
