package emissions

import (
	"math"
	"strings"

	"github.com/somos/attraction/backend/internal/domain/providers"
)

// CarBaselineKgPerKm is the per-passenger footprint of driving alone,
// the reference every other mode is compared with.
const CarBaselineKgPerKm = 0.171

// DefaultFactors are kg CO2 per passenger-km by booking mode.
var DefaultFactors = map[string]float64{
	"car":     CarBaselineKgPerKm,
	"bus":     0.089,
	"walk":    0,
	"bicycle": 0,
	"scooter": 0.035,
}

// FactorCalculator implements EmissionsCalculator with fixed per-mode factors
type FactorCalculator struct {
	factors map[string]float64
}

// NewFactorCalculator creates a calculator. A nil map uses DefaultFactors.
func NewFactorCalculator(factors map[string]float64) providers.EmissionsCalculator {
	if factors == nil {
		factors = DefaultFactors
	}
	return &FactorCalculator{factors: factors}
}

// Calculate returns emitted and saved CO2 rounded to grams. Unknown modes
// are treated as driving, so they save nothing.
func (c *FactorCalculator) Calculate(mode string, distanceKm float64) providers.Emissions {
	if distanceKm <= 0 {
		return providers.Emissions{}
	}

	factor, ok := c.factors[strings.ToLower(strings.TrimSpace(mode))]
	if !ok {
		factor = CarBaselineKgPerKm
	}

	emitted := factor * distanceKm
	saved := math.Max(0, CarBaselineKgPerKm*distanceKm-emitted)

	return providers.Emissions{
		EmittedKg: roundGrams(emitted),
		SavedKg:   roundGrams(saved),
	}
}

func roundGrams(kg float64) float64 {
	return math.Round(kg*1000) / 1000
}
