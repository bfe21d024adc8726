package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/somos/attraction/backend/pkg/geo"
	"gopkg.in/yaml.v3"
)

// DefaultStopAreas are the service areas the stop list is restricted to when
// no STOP_AREAS_FILE is configured.
func DefaultStopAreas() []geo.BoundingBox {
	return []geo.BoundingBox{
		{Name: "cosenza", MinLat: 39.28, MaxLat: 39.32, MinLon: 16.22, MaxLon: 16.28},
		{Name: "rende", MinLat: 39.30, MaxLat: 39.38, MinLon: 16.17, MaxLon: 16.26},
	}
}

type stopAreasFile struct {
	Areas []geo.BoundingBox `yaml:"areas" validate:"required,min=1,dive"`
}

// LoadStopAreas reads bounding boxes from a YAML file:
//
//	areas:
//	  - name: cosenza
//	    min_lat: 39.28
//	    max_lat: 39.32
//	    min_lon: 16.22
//	    max_lon: 16.28
//
// An empty path yields DefaultStopAreas.
func LoadStopAreas(path string) ([]geo.BoundingBox, error) {
	if path == "" {
		return DefaultStopAreas(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return ParseStopAreas(data)
}

// ParseStopAreas decodes and validates a stop areas document.
func ParseStopAreas(data []byte) ([]geo.BoundingBox, error) {
	var file stopAreasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode stop areas: %w", err)
	}

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid stop areas: %w", err)
	}

	return file.Areas, nil
}
