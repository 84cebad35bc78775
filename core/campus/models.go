package campus

import (
	"errors"

	"github.com/muchiri/karibu/core"
	"github.com/muchiri/karibu/core/geo"
)

var (
	// errors
	ErrLocationNotFound = errors.New("location not found")
	ErrBoundaryNotSet   = errors.New("map boundary has not been set")
)

// Marker icons the front end knows how to render. Unknown tags are kept
// as-is and fall back to the default marker on the map.
const (
	IconHostel   = "BedDouble"
	IconFood     = "Utensils"
	IconLibrary  = "Library"
	IconBuilding = "Building2"
	IconSchool   = "School"
	IconLandmark = "Landmark"
	IconDefault  = IconLandmark
)

var Icons = []string{IconHostel, IconFood, IconLibrary, IconBuilding, IconSchool, IconLandmark}

func KnownIcon(name string) bool {
	for _, icon := range Icons {
		if icon == name {
			return true
		}
	}
	return false
}

// Boundary is the admin-configured quadrilateral delimiting the visible
// campus area. One boundary exists per deployment; it is overwritten
// wholesale, never patched.
type Boundary struct {
	Northwest geo.Point `json:"northwest"`
	Northeast geo.Point `json:"northeast"`
	Southwest geo.Point `json:"southwest"`
	Southeast geo.Point `json:"southeast"`
}

// Ring returns the boundary as an ordered polygon ring. The nw-sw-se-ne
// winding is an invariant of the type: it walks the corners of a convex
// quadrilateral in order, so the ring is simple regardless of how the four
// named corners were entered.
func (b Boundary) Ring() []geo.Point {
	return []geo.Point{b.Northwest, b.Southwest, b.Southeast, b.Northeast}
}

// BBox is the axis-aligned box enclosing the four corners. It is served to
// the map renderer to restrict the viewport; visibility itself is always
// decided against the polygon ring, never against this box.
type BBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

func (b Boundary) BBox() BBox {
	box := BBox{North: b.Northwest.Lat, South: b.Northwest.Lat, East: b.Northwest.Lng, West: b.Northwest.Lng}
	for _, c := range []geo.Point{b.Northeast, b.Southwest, b.Southeast} {
		if c.Lat > box.North {
			box.North = c.Lat
		}
		if c.Lat < box.South {
			box.South = c.Lat
		}
		if c.Lng > box.East {
			box.East = c.Lng
		}
		if c.Lng < box.West {
			box.West = c.Lng
		}
	}
	return box
}

// Location is a single point of interest with display metadata. It exists
// independently of visibility; whether it shows up on the student map is
// decided by the visible-set cache.
type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Position    geo.Point `json:"position"`
}

// Coordinate is a latitude/longitude pair as submitted by the admin forms.
type Coordinate struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

func (c Coordinate) Point() geo.Point { return geo.Point{Lat: c.Lat, Lng: c.Lng} }

// NewBoundary contains the four corners needed to (re)define the Boundary.
type NewBoundary struct {
	Northwest *Coordinate `json:"northwest" validate:"required"`
	Northeast *Coordinate `json:"northeast" validate:"required"`
	Southwest *Coordinate `json:"southwest" validate:"required"`
	Southeast *Coordinate `json:"southeast" validate:"required"`
}

func (nb NewBoundary) Validate() error { return core.Validate.Struct(nb) }

func (nb NewBoundary) Boundary() Boundary {
	return Boundary{
		Northwest: nb.Northwest.Point(),
		Northeast: nb.Northeast.Point(),
		Southwest: nb.Southwest.Point(),
		Southeast: nb.Southeast.Point(),
	}
}

// NewLocation contains information needed to create a new Location.
type NewLocation struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Icon        string      `json:"icon"`
	Position    *Coordinate `json:"position" validate:"required"`
}

func (nl *NewLocation) Validate() error {
	nl.Name = core.CleanString(nl.Name)
	nl.Description = core.CleanString(nl.Description)
	nl.Icon = core.CleanString(nl.Icon)
	if nl.Icon == "" {
		nl.Icon = IconDefault
	}
	return core.Validate.Struct(nl)
}

// UpdateLocation defines what information may be provided to modify an
// existing Location. Zero-valued fields are left unchanged.
type UpdateLocation struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Position    *Coordinate `json:"position"`
}

func (ul *UpdateLocation) Validate() error {
	ul.Name = core.CleanString(ul.Name)
	ul.Description = core.CleanString(ul.Description)
	ul.Icon = core.CleanString(ul.Icon)
	return core.Validate.Struct(ul)
}

// Apply merges the set fields onto loc and returns the result.
func (ul UpdateLocation) Apply(loc Location) Location {
	if ul.Name != "" {
		loc.Name = ul.Name
	}
	if ul.Description != "" {
		loc.Description = ul.Description
	}
	if ul.Icon != "" {
		loc.Icon = ul.Icon
	}
	if ul.Position != nil {
		loc.Position = ul.Position.Point()
	}
	return loc
}
