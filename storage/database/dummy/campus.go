package dummydb

import (
	"context"

	"github.com/muchiri/karibu/core/campus"
)

type boundaryStore struct {
	db *boundaryTable
}

var _ campus.BoundaryStore = (*boundaryStore)(nil) // interface compliance check

func NewBoundaryStore(db *DB) campus.BoundaryStore {
	return &boundaryStore{db: db.boundary}
}

func (repo *boundaryStore) GetBoundary(ctx context.Context) (campus.Boundary, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if !repo.db.set {
		return campus.Boundary{}, campus.ErrBoundaryNotSet
	}
	return repo.db.boundary, nil
}

func (repo *boundaryStore) SetBoundary(ctx context.Context, b campus.Boundary) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.boundary = b
	repo.db.set = true
	return nil
}

type locationRegistry struct {
	db *locationTable
}

var _ campus.LocationRegistry = (*locationRegistry)(nil)

func NewLocationRegistry(db *DB) campus.LocationRegistry {
	return &locationRegistry{db: db.location}
}

func (repo *locationRegistry) query() []campus.Location {
	locs := make([]campus.Location, 0, len(repo.db.table))
	for _, loc := range repo.db.table {
		locs = append(locs, *loc)
	}
	return locs
}

func (repo *locationRegistry) ListLocations(ctx context.Context) ([]campus.Location, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *locationRegistry) CreateLocation(ctx context.Context, loc campus.Location) (campus.Location, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[loc.ID] = &loc
	return loc, nil
}

func (repo *locationRegistry) GetLocation(ctx context.Context, id string) (campus.Location, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if loc, ok := repo.db.table[id]; ok {
		return *loc, nil
	}
	return campus.Location{}, campus.ErrLocationNotFound
}

func (repo *locationRegistry) UpdateLocation(ctx context.Context, loc campus.Location) (campus.Location, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[loc.ID]; !ok {
		return campus.Location{}, campus.ErrLocationNotFound
	}
	repo.db.table[loc.ID] = &loc
	return loc, nil
}

func (repo *locationRegistry) DeleteLocation(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return campus.ErrLocationNotFound
	}
	delete(repo.db.table, id)
	return nil
}

type visibleCache struct {
	db *visibleTable
}

var _ campus.VisibleCache = (*visibleCache)(nil)

func NewVisibleCache(db *DB) campus.VisibleCache {
	return &visibleCache{db: db.visible}
}

func (repo *visibleCache) GetVisible(ctx context.Context) ([]campus.Location, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	locs := make([]campus.Location, len(repo.db.locations))
	copy(locs, repo.db.locations)
	return locs, nil
}

func (repo *visibleCache) ReplaceVisible(ctx context.Context, locs []campus.Location) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	snapshot := make([]campus.Location, len(locs))
	copy(snapshot, locs)
	repo.db.locations = snapshot
	return nil
}
