package dummydb

import (
	"sync"

	"github.com/muchiri/karibu/core/campus"
)

type (
	DB struct {
		boundary *boundaryTable
		location *locationTable
		visible  *visibleTable
	}

	boundaryTable struct {
		sync.RWMutex
		set      bool
		boundary campus.Boundary
	}

	locationTable struct {
		sync.RWMutex
		table map[string]*campus.Location
	}

	visibleTable struct {
		sync.RWMutex
		locations []campus.Location
	}
)

func Open() (*DB, error) {
	db := &DB{
		boundary: &boundaryTable{},
		location: &locationTable{table: make(map[string]*campus.Location)},
		visible:  &visibleTable{locations: []campus.Location{}},
	}
	return db, nil
}
