package geo_test

import (
	"math"
	"testing"

	"github.com/agrodist/agrodist/internal/geo"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name string
		a, b geo.Point
		want float64
	}{
		{"same point", geo.Point{Lat: 3.168, Lon: 101.708}, geo.Point{Lat: 3.168, Lon: 101.708}, 0},
		{"3-4-5 triangle", geo.Point{Lat: 0, Lon: 0}, geo.Point{Lat: 3, Lon: 4}, 555},
		{"supplier to retailer", geo.Point{Lat: 3.168, Lon: 101.708}, geo.Point{Lat: 3.148, Lon: 101.698}, math.Sqrt(0.02*0.02+0.01*0.01) * 111},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geo.DistanceKm(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DistanceKm() = %v, want %v", got, tt.want)
			}
			if back := geo.DistanceKm(tt.b, tt.a); math.Abs(back-got) > 1e-12 {
				t.Errorf("distance not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestPointValid(t *testing.T) {
	if !(geo.Point{Lat: -90, Lon: 180}).Valid() {
		t.Error("boundary point should be valid")
	}
	if (geo.Point{Lat: 91, Lon: 0}).Valid() {
		t.Error("lat 91 should be invalid")
	}
	if (geo.Point{Lat: 0, Lon: -181}).Valid() {
		t.Error("lon -181 should be invalid")
	}
}
