// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package detection

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/fraudscope/internal/models"
)

// CoordinateEpsilon is the threshold for considering a coordinate as zero.
// 1e-7 degrees is about 1.1cm at the equator.
const CoordinateEpsilon = 1e-7

// IsUnknownLocation reports whether p cannot be used for distance checks.
// A missing point, NaN or infinite values, out-of-range coordinates and a
// coordinate at zero all count as unknown; the dataset does not guarantee
// coordinate validity and zero is its placeholder for "no value".
func IsUnknownLocation(p *models.GeoPoint) bool {
	if p == nil {
		return true
	}
	if math.IsNaN(p.Lat) || math.IsNaN(p.Long) || math.IsInf(p.Lat, 0) || math.IsInf(p.Long, 0) {
		return true
	}
	if p.Lat < -90 || p.Lat > 90 || p.Long < -180 || p.Long > 180 {
		return true
	}
	return math.Abs(p.Lat) < CoordinateEpsilon || math.Abs(p.Long) < CoordinateEpsilon
}

// HasValidCoordinates is the inverse of IsUnknownLocation.
func HasValidCoordinates(p *models.GeoPoint) bool {
	return !IsUnknownLocation(p)
}

// Config configures the detector.
type Config struct {
	// RapidWindowMinutes is the window for rapid-succession pairs.
	RapidWindowMinutes int `json:"rapid_window_minutes"`

	// GeoWindowMinutes is the window for geographic pairs.
	GeoWindowMinutes int `json:"geo_window_minutes"`

	// DistanceMiles is the threshold a geographic pair must exceed.
	DistanceMiles float64 `json:"distance_miles"`

	// Limit caps each result list. Zero or negative means no cap.
	Limit int `json:"limit"`

	// Workers is the number of goroutines scanning account partitions.
	// 0 and 1 both mean a single-threaded scan.
	Workers int `json:"workers"`
}

// DefaultConfig returns the defaults used by the reference reports.
func DefaultConfig() Config {
	return Config{
		RapidWindowMinutes: 10,
		GeoWindowMinutes:   60,
		DistanceMiles:      500,
		Limit:              20,
		Workers:            1,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.RapidWindowMinutes <= 0 {
		return fmt.Errorf("rapid_window_minutes must be positive")
	}
	if c.GeoWindowMinutes <= 0 {
		return fmt.Errorf("geo_window_minutes must be positive")
	}
	if c.DistanceMiles < 0 || math.IsNaN(c.DistanceMiles) {
		return fmt.Errorf("distance_miles cannot be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	return nil
}

// RapidWindow returns the rapid-succession window as a duration.
func (c Config) RapidWindow() time.Duration {
	return time.Duration(c.RapidWindowMinutes) * time.Minute
}

// GeoWindow returns the geographic window as a duration.
func (c Config) GeoWindow() time.Duration {
	return time.Duration(c.GeoWindowMinutes) * time.Minute
}
