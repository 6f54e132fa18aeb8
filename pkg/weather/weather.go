// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable is returned when the provider could not produce a reading.
	ErrUnavailable = errors.New("weather unavailable")
	// ErrCityNotFound is a specific ErrUnavailable for unknown cities.
	ErrCityNotFound = fmt.Errorf("%w: city not found", ErrUnavailable)
)

// Category is the provider-independent main weather group.
type Category string

const (
	CategoryClear  Category = "clear"
	CategoryClouds Category = "clouds"
	CategoryRain   Category = "rain" // rain, drizzle, thunderstorm
	CategorySnow   Category = "snow"
	CategoryOther  Category = "other"
)

// ParseCategory maps a provider "main" group such as "Drizzle" to a Category.
func ParseCategory(main string) Category {
	switch strings.ToLower(strings.TrimSpace(main)) {
	case "clear":
		return CategoryClear
	case "clouds":
		return CategoryClouds
	case "rain", "drizzle", "thunderstorm":
		return CategoryRain
	case "snow":
		return CategorySnow
	}
	return CategoryOther
}

// Snapshot is a single reading. It is never cached across requests.
type Snapshot struct {
	City        string
	Temperature float64
	FeelsLike   *float64
	Description string
	Main        Category
}

// Provider fetches current conditions for a provider city key.
type Provider interface {
	Current(ctx context.Context, cityKey string) (Snapshot, error)
}

// ForecastProvider can also report the forecast for tomorrow around noon.
type ForecastProvider interface {
	Provider
	Tomorrow(ctx context.Context, cityKey string) (Snapshot, error)
}

var cityKeys = map[string]string{
	"성남시 수정구": "Seongnam",
	"성남시 중원구": "Seongnam",
	"성남시 분당구": "Seongnam",
	"성남시":     "Seongnam",
	"성남":      "Seongnam",
	"서울":      "Seoul",
	"서울시":     "Seoul",
	"서울특별시":   "Seoul",
	"부산":      "Busan",
	"부산시":     "Busan",
	"대구":      "Daegu",
	"인천":      "Incheon",
	"광주":      "Gwangju",
	"대전":      "Daejeon",
	"울산":      "Ulsan",
	"제주":      "Jeju",
	"수원":      "Suwon",
	"수원시":     "Suwon",
}

// ResolveCity maps a free-text place name to the provider city key.
// Unknown names are returned trimmed but otherwise verbatim.
func ResolveCity(name string) string {
	n := strings.Join(strings.Fields(name), " ")
	if key, ok := cityKeys[n]; ok {
		return key
	}
	return n
}
