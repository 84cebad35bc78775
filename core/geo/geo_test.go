package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// campus rectangle used across the map tests
var campusRing = []Point{
	{Lat: 31.260, Lng: 75.700}, // nw
	{Lat: 31.250, Lng: 75.700}, // sw
	{Lat: 31.250, Lng: 75.710}, // se
	{Lat: 31.260, Lng: 75.710}, // ne
}

func TestContains(t *testing.T) {
	tests := []struct {
		name string
		pt   Point
		ring []Point
		want bool
	}{
		{"center", Point{31.255, 75.705}, campusRing, true},
		{"far north", Point{31.300, 75.705}, campusRing, false},
		{"far south", Point{31.200, 75.705}, campusRing, false},
		{"west of campus", Point{31.255, 75.690}, campusRing, false},
		{"east of campus", Point{31.255, 75.720}, campusRing, false},
		{"just inside nw corner", Point{31.2599, 75.7001}, campusRing, true},
		{"nil ring", Point{31.255, 75.705}, nil, false},
		{"single vertex", Point{31.255, 75.705}, campusRing[:1], false},
		{"two vertices", Point{31.255, 75.705}, campusRing[:2], false},
		{"collapsed ring", Point{31.255, 75.705}, []Point{{31.255, 75.705}, {31.255, 75.705}, {31.255, 75.705}}, false},
		{"nan point", Point{math.NaN(), math.NaN()}, campusRing, false},
		{"nan vertex", Point{31.255, 75.705}, []Point{{math.NaN(), math.NaN()}, {31.250, 75.700}, {31.250, 75.710}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Contains(tt.pt, tt.ring))
		})
	}
}

func TestContains_concave(t *testing.T) {
	// a "U" shape open to the north: the notch between the prongs is outside
	ring := []Point{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 6}, {Lat: 5, Lng: 6}, {Lat: 5, Lng: 4},
		{Lat: 2, Lng: 4}, {Lat: 2, Lng: 2}, {Lat: 5, Lng: 2}, {Lat: 5, Lng: 0},
	}
	assert.True(t, Contains(Point{Lat: 4, Lng: 1}, ring))  // left prong
	assert.False(t, Contains(Point{Lat: 4, Lng: 3}, ring)) // notch
	assert.True(t, Contains(Point{Lat: 1, Lng: 3}, ring))  // base
	assert.False(t, Contains(Point{Lat: 3, Lng: 7}, ring)) // outside
}

func TestPoint_IsFinite(t *testing.T) {
	assert.True(t, Point{31.255, 75.705}.IsFinite())
	assert.True(t, Point{0, 0}.IsFinite())
	assert.False(t, Point{math.NaN(), 75.705}.IsFinite())
	assert.False(t, Point{31.255, math.Inf(1)}.IsFinite())
	assert.False(t, Point{math.Inf(-1), 75.705}.IsFinite())
}
