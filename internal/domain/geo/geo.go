// Package geo provides coordinate math for the discovery engine: great-circle
// distance, bounding-box derivation, and coarse tile bucketing for cache
// partitioning.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// TileSizeDeg is the tile cell size in degrees (~2.2 km at the equator).
// Nearby queries land in the same cell and share one cache record instead of
// creating a cache row per exact coordinate.
const TileSizeDeg = 0.02

// Point is a WGS84 coordinate pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a south-west/north-east bounding box.
type Bounds struct {
	SW Point `json:"sw"`
	NE Point `json:"ne"`
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Distance returns the great-circle distance in meters between two points.
func Distance(a, b Point) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Valid reports whether the point has finite coordinates within WGS84 range.
func Valid(p Point) bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Round rounds a coordinate to the given number of decimal places.
func Round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// TileKey buckets a point into a coarse grid cell identifier.
func TileKey(p Point) string {
	latCell := int(math.Floor(p.Lat / TileSizeDeg))
	lngCell := int(math.Floor(p.Lng / TileSizeDeg))
	return fmt.Sprintf("%d:%d", latCell, lngCell)
}

// BoundsFromRadius derives a bounding box from a center point and radius using
// an equirectangular approximation. Longitude span widens with latitude and is
// clamped near the poles.
func BoundsFromRadius(center Point, radiusMeters float64) Bounds {
	dLat := radiusMeters / EarthRadiusMeters * 180 / math.Pi

	cosLat := math.Cos(center.Lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	dLng := dLat / cosLat

	return Bounds{
		SW: Point{Lat: clampLat(center.Lat - dLat), Lng: clampLng(center.Lng - dLng)},
		NE: Point{Lat: clampLat(center.Lat + dLat), Lng: clampLng(center.Lng + dLng)},
	}
}

// Contains reports whether the point lies inside the bounding box.
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.SW.Lat && p.Lat <= b.NE.Lat &&
		p.Lng >= b.SW.Lng && p.Lng <= b.NE.Lng
}

func clampLat(v float64) float64 {
	return math.Max(-90, math.Min(90, v))
}

func clampLng(v float64) float64 {
	return math.Max(-180, math.Min(180, v))
}
