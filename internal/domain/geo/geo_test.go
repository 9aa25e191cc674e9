package geo

import (
	"math"
	"testing"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Berlin Alexanderplatz to Berlin Hauptbahnhof, roughly 4.0 km.
	d := Haversine(52.5219, 13.4132, 52.5251, 13.3694)
	if d < 2500 || d > 3500 {
		t.Errorf("expected ~3 km, got %.0f m", d)
	}
}

func TestHaversine_ZeroForSamePoint(t *testing.T) {
	if d := Haversine(48.8566, 2.3522, 48.8566, 2.3522); d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Point{Lat: 40.7128, Lng: -74.0060}
	b := Point{Lat: 34.0522, Lng: -118.2437}
	if Distance(a, b) != Distance(b, a) {
		t.Error("distance is not symmetric")
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"origin", Point{}, true},
		{"max bounds", Point{Lat: 90, Lng: 180}, true},
		{"min bounds", Point{Lat: -90, Lng: -180}, true},
		{"lat too big", Point{Lat: 90.1}, false},
		{"lng too big", Point{Lng: 180.1}, false},
		{"nan lat", Point{Lat: math.NaN()}, false},
		{"inf lng", Point{Lng: math.Inf(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.p); got != tt.want {
				t.Errorf("Valid(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.23456789, 6); got != 1.234568 {
		t.Errorf("expected 1.234568, got %v", got)
	}
	if got := Round(52.6, 0); got != 53 {
		t.Errorf("expected 53, got %v", got)
	}
}

func TestTileKey_SameCell(t *testing.T) {
	// Points ~200 m apart share a 0.02 degree cell.
	a := TileKey(Point{Lat: 52.5200, Lng: 13.4050})
	b := TileKey(Point{Lat: 52.5210, Lng: 13.4060})
	if a != b {
		t.Errorf("expected same tile, got %q and %q", a, b)
	}
}

func TestTileKey_DifferentCells(t *testing.T) {
	a := TileKey(Point{Lat: 52.52, Lng: 13.40})
	b := TileKey(Point{Lat: 52.62, Lng: 13.40})
	if a == b {
		t.Errorf("expected different tiles, both %q", a)
	}
}

func TestTileKey_NegativeCoordinates(t *testing.T) {
	// Flooring must bucket negatives away from cell zero.
	a := TileKey(Point{Lat: -0.001, Lng: -0.001})
	b := TileKey(Point{Lat: 0.001, Lng: 0.001})
	if a == b {
		t.Errorf("expected different tiles across the origin, both %q", a)
	}
}

func TestBoundsFromRadius_ContainsCenter(t *testing.T) {
	center := Point{Lat: 52.52, Lng: 13.405}
	b := BoundsFromRadius(center, 1000)
	if !b.Contains(center) {
		t.Error("bounds must contain the center")
	}
}

func TestBoundsFromRadius_SpanGrowsWithRadius(t *testing.T) {
	center := Point{Lat: 52.52, Lng: 13.405}
	small := BoundsFromRadius(center, 500)
	large := BoundsFromRadius(center, 5000)

	smallSpan := small.NE.Lat - small.SW.Lat
	largeSpan := large.NE.Lat - large.SW.Lat
	if largeSpan <= smallSpan {
		t.Errorf("larger radius must widen the box: %v vs %v", smallSpan, largeSpan)
	}
}

func TestBoundsFromRadius_ClampsAtPole(t *testing.T) {
	b := BoundsFromRadius(Point{Lat: 89.99, Lng: 0}, 50_000)
	if b.NE.Lat > 90 {
		t.Errorf("latitude must clamp at 90, got %v", b.NE.Lat)
	}
}

func TestBounds_Contains(t *testing.T) {
	b := Bounds{SW: Point{Lat: 52.0, Lng: 13.0}, NE: Point{Lat: 53.0, Lng: 14.0}}

	if !b.Contains(Point{Lat: 52.5, Lng: 13.5}) {
		t.Error("inner point must be contained")
	}
	if b.Contains(Point{Lat: 51.9, Lng: 13.5}) {
		t.Error("point south of the box must not be contained")
	}
	if !b.Contains(Point{Lat: 52.0, Lng: 13.0}) {
		t.Error("boundary point must be contained")
	}
}
