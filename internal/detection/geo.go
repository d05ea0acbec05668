// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package detection

import (
	"math"

	"github.com/tomtom215/fraudscope/internal/models"
)

// EarthRadiusMiles is the mean Earth radius used by the distance formula.
const EarthRadiusMiles = 3959.0

// DistanceMiles returns the great-circle distance between a and b using the
// spherical law of cosines. The cosine sum is clamped to [-1, 1] because
// rounding pushes it just outside acos's domain for identical and antipodal
// points.
func DistanceMiles(a, b models.GeoPoint) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLon := toRadians(b.Long) - toRadians(a.Long)

	cosine := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return EarthRadiusMiles * math.Acos(clampUnit(cosine))
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// clampUnit limits x to [-1, 1].
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// roundTo2Decimals rounds a float64 to 2 decimal places.
func roundTo2Decimals(f float64) float64 {
	return math.Round(f*100) / 100
}
