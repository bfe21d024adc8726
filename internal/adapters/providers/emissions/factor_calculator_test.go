package emissions_test

import (
	"testing"

	"github.com/somos/attraction/backend/internal/adapters/providers/emissions"
	"github.com/stretchr/testify/assert"
)

func TestFactorCalculator_Calculate(t *testing.T) {
	calc := emissions.NewFactorCalculator(nil)

	tests := []struct {
		name    string
		mode    string
		km      float64
		emitted float64
		saved   float64
	}{
		{"bus", "BUS", 10, 0.89, 0.82},
		{"walk", "walk", 2, 0, 0.342},
		{"bicycle", " Bicycle ", 4, 0, 0.684},
		{"scooter", "scooter", 3, 0.105, 0.408},
		{"car", "car", 10, 1.71, 0},
		{"unknown mode is car", "tram", 10, 1.71, 0},
		{"zero distance", "bus", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Calculate(tt.mode, tt.km)
			assert.InDelta(t, tt.emitted, got.EmittedKg, 1e-9)
			assert.InDelta(t, tt.saved, got.SavedKg, 1e-9)
		})
	}
}

func TestFactorCalculator_CustomFactors(t *testing.T) {
	calc := emissions.NewFactorCalculator(map[string]float64{"train": 0.041})

	got := calc.Calculate("train", 100)
	assert.InDelta(t, 4.1, got.EmittedKg, 1e-9)
	assert.InDelta(t, 13.0, got.SavedKg, 1e-9)
}
