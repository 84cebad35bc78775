// Package geo implements the plane geometry the campus map relies on.
// All functions are total: malformed input degrades to a negative result,
// never to a panic.
package geo

import "math"

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}

// Contains reports whether p lies inside the ring, using the even-odd
// (ray-casting) rule: a horizontal ray is cast from p and crossings against
// every ring edge are counted. The asymmetric straddle test
// (yi > y) != (yj > y) handles vertices sitting exactly on the ray without
// double-counting them. Points exactly on an edge may be classified either
// way. Rings with fewer than 3 vertices contain nothing.
func Contains(p Point, ring []Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, yj := ring[i].Lat, ring[j].Lat
		if (yi > p.Lat) != (yj > p.Lat) {
			// longitude of the edge at p's latitude
			x := (ring[j].Lng-ring[i].Lng)*(p.Lat-yi)/(yj-yi) + ring[i].Lng
			if p.Lng < x {
				inside = !inside
			}
		}
	}
	return inside
}
