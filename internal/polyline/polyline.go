// Package polyline turns normalized trips into rendering-ready geometry:
// per-leg coordinate sequences with color assignments, plus the bounds the map
// view should fit. Output is recomputed fresh for every request and never
// cached.
package polyline

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"pendler.kildedal.dk/internal/models"
)

// earthRadiusMeters converts s2 angles into distances.
const earthRadiusMeters = 6371010.0

// Palette drives color assignment: transit legs cycle through Transit in leg
// order, walk legs all get the fixed Walk color.
type Palette struct {
	Transit []string
	Walk    string
}

// DefaultPalette gives transit legs saturated, distinguishable colors and
// walks a muted grey.
func DefaultPalette() Palette {
	return Palette{
		Transit: []string{
			"#e6194b", "#3cb44b", "#4363d8", "#f58231",
			"#911eb4", "#46c2cb", "#f032e6", "#9a6324",
		},
		Walk: "#7f8c8d",
	}
}

// Leg is one drawable leg of a trip.
type Leg struct {
	Name        string         `json:"name"`
	Kind        models.LegKind `json:"kind"`
	Color       string         `json:"color"`
	Coordinates [][2]float64   `json:"coordinates"`
}

// Extract pulls the drawable legs out of a trip. Legs without geometry are
// skipped; a trip in which no leg carries geometry yields an empty slice and
// the caller decides whether that excludes the trip. The palette index only
// advances on transit legs, so walks never consume a transit color.
func Extract(trip models.Trip, pal Palette) []Leg {
	var legs []Leg
	transitSeen := 0
	for _, leg := range trip.Legs {
		color := pal.Walk
		if leg.Kind == models.LegTransit {
			if len(pal.Transit) > 0 {
				color = pal.Transit[transitSeen%len(pal.Transit)]
			}
			transitSeen++
		}
		if len(leg.Path) == 0 {
			continue
		}
		coords := make([][2]float64, len(leg.Path))
		for i, p := range leg.Path {
			coords[i] = [2]float64{p.Lat, p.Lng}
		}
		legs = append(legs, Leg{
			Name:        leg.Name,
			Kind:        leg.Kind,
			Color:       color,
			Coordinates: coords,
		})
	}
	return legs
}

// Bounds computes the lat/lng rectangle covering every coordinate of the
// given legs plus any extra points (the origin and destination markers).
// Returns ok=false when there is nothing to bound.
func Bounds(legs []Leg, extra ...models.LatLng) (s2.Rect, bool) {
	bounder := s2.NewRectBounder()
	any := false
	for _, leg := range legs {
		for _, c := range leg.Coordinates {
			bounder.AddPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(c[0], c[1])))
			any = true
		}
	}
	for _, p := range extra {
		bounder.AddPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lng)))
		any = true
	}
	return bounder.RectBound(), any
}

// Length is the on-the-ground length of a drawable leg in meters.
func Length(leg Leg) float64 {
	if len(leg.Coordinates) < 2 {
		return 0
	}
	var total s1.Angle
	prev := s2.LatLngFromDegrees(leg.Coordinates[0][0], leg.Coordinates[0][1])
	for _, c := range leg.Coordinates[1:] {
		cur := s2.LatLngFromDegrees(c[0], c[1])
		total += prev.Distance(cur)
		prev = cur
	}
	return float64(total) * earthRadiusMeters
}
