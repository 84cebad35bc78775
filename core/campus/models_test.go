package campus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/muchiri/karibu/core/geo"
)

func testBoundary() Boundary {
	return Boundary{
		Northwest: geo.Point{Lat: 31.260, Lng: 75.700},
		Northeast: geo.Point{Lat: 31.260, Lng: 75.710},
		Southwest: geo.Point{Lat: 31.250, Lng: 75.700},
		Southeast: geo.Point{Lat: 31.250, Lng: 75.710},
	}
}

func TestBoundary_Ring(t *testing.T) {
	b := testBoundary()

	// the nw-sw-se-ne winding is load-bearing: it walks the quadrilateral's
	// corners in order so the ring stays simple
	assert.Equal(t, []geo.Point{b.Northwest, b.Southwest, b.Southeast, b.Northeast}, b.Ring())
}

func TestBoundary_BBox(t *testing.T) {
	assert.Equal(t, BBox{North: 31.260, South: 31.250, East: 75.710, West: 75.700}, testBoundary().BBox())

	// skewed quadrilateral: box still encloses all four corners
	skewed := Boundary{
		Northwest: geo.Point{Lat: 31.262, Lng: 75.699},
		Northeast: geo.Point{Lat: 31.259, Lng: 75.712},
		Southwest: geo.Point{Lat: 31.249, Lng: 75.701},
		Southeast: geo.Point{Lat: 31.251, Lng: 75.711},
	}
	assert.Equal(t, BBox{North: 31.262, South: 31.249, East: 75.712, West: 75.699}, skewed.BBox())
}

func TestKnownIcon(t *testing.T) {
	for _, icon := range Icons {
		assert.True(t, KnownIcon(icon), icon)
	}
	assert.False(t, KnownIcon("MysteryTag"))
	assert.False(t, KnownIcon(""))
}

func TestUpdateLocation_Apply(t *testing.T) {
	loc := Location{
		ID:          "id-1",
		Name:        "Block 34",
		Description: "Engineering block",
		Icon:        IconBuilding,
		Position:    geo.Point{Lat: 31.255, Lng: 75.705},
	}

	assert.Equal(t, loc, UpdateLocation{}.Apply(loc)) // no-op

	got := UpdateLocation{Name: "Block 34 A", Position: &Coordinate{Lat: 31.256, Lng: 75.706}}.Apply(loc)
	assert.Equal(t, "Block 34 A", got.Name)
	assert.Equal(t, loc.Description, got.Description)
	assert.Equal(t, geo.Point{Lat: 31.256, Lng: 75.706}, got.Position)
}
