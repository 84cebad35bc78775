package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/muchiri/karibu/core/campus"
	"github.com/muchiri/karibu/core/geo"
)

type boundaryRow struct {
	NWLat float64 `db:"nw_lat"`
	NWLng float64 `db:"nw_lng"`
	NELat float64 `db:"ne_lat"`
	NELng float64 `db:"ne_lng"`
	SWLat float64 `db:"sw_lat"`
	SWLng float64 `db:"sw_lng"`
	SELat float64 `db:"se_lat"`
	SELng float64 `db:"se_lng"`
}

func (r boundaryRow) boundary() campus.Boundary {
	return campus.Boundary{
		Northwest: geo.Point{Lat: r.NWLat, Lng: r.NWLng},
		Northeast: geo.Point{Lat: r.NELat, Lng: r.NELng},
		Southwest: geo.Point{Lat: r.SWLat, Lng: r.SWLng},
		Southeast: geo.Point{Lat: r.SELat, Lng: r.SELng},
	}
}

type boundaryStore struct {
	db *sqlx.DB
}

var _ campus.BoundaryStore = (*boundaryStore)(nil) // interface compliance check

func NewBoundaryStore(db *sqlx.DB) campus.BoundaryStore {
	return &boundaryStore{db: db}
}

func (repo *boundaryStore) GetBoundary(ctx context.Context) (campus.Boundary, error) {
	var row boundaryRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT nw_lat, nw_lng, ne_lat, ne_lng, sw_lat, sw_lng, se_lat, se_lng FROM map_boundary WHERE id`)
	if err == sql.ErrNoRows {
		return campus.Boundary{}, campus.ErrBoundaryNotSet
	}
	if err != nil {
		return campus.Boundary{}, errors.Wrap(err, "querying boundary")
	}
	return row.boundary(), nil
}

func (repo *boundaryStore) SetBoundary(ctx context.Context, b campus.Boundary) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO map_boundary (id, nw_lat, nw_lng, ne_lat, ne_lng, sw_lat, sw_lng, se_lat, se_lng, updated_at)
		 VALUES (true, $1, $2, $3, $4, $5, $6, $7, $8, now())
		 ON CONFLICT (id) DO UPDATE SET
		   nw_lat = EXCLUDED.nw_lat, nw_lng = EXCLUDED.nw_lng,
		   ne_lat = EXCLUDED.ne_lat, ne_lng = EXCLUDED.ne_lng,
		   sw_lat = EXCLUDED.sw_lat, sw_lng = EXCLUDED.sw_lng,
		   se_lat = EXCLUDED.se_lat, se_lng = EXCLUDED.se_lng,
		   updated_at = now()`,
		b.Northwest.Lat, b.Northwest.Lng, b.Northeast.Lat, b.Northeast.Lng,
		b.Southwest.Lat, b.Southwest.Lng, b.Southeast.Lat, b.Southeast.Lng,
	)
	return errors.Wrap(err, "saving boundary")
}

type locationRow struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Description string  `db:"description"`
	Icon        string  `db:"icon"`
	Lat         float64 `db:"lat"`
	Lng         float64 `db:"lng"`
}

func (r locationRow) location() campus.Location {
	return campus.Location{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Icon:        r.Icon,
		Position:    geo.Point{Lat: r.Lat, Lng: r.Lng},
	}
}

type locationRegistry struct {
	db *sqlx.DB
}

var _ campus.LocationRegistry = (*locationRegistry)(nil)

func NewLocationRegistry(db *sqlx.DB) campus.LocationRegistry {
	return &locationRegistry{db: db}
}

func (repo *locationRegistry) ListLocations(ctx context.Context) ([]campus.Location, error) {
	var rows []locationRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, name, description, icon, lat, lng FROM map_location`)
	if err != nil {
		return nil, errors.Wrap(err, "querying locations")
	}
	locs := make([]campus.Location, 0, len(rows))
	for _, row := range rows {
		locs = append(locs, row.location())
	}
	return locs, nil
}

func (repo *locationRegistry) CreateLocation(ctx context.Context, loc campus.Location) (campus.Location, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO map_location (id, name, description, icon, lat, lng) VALUES ($1, $2, $3, $4, $5, $6)`,
		loc.ID, loc.Name, loc.Description, loc.Icon, loc.Position.Lat, loc.Position.Lng)
	if err != nil {
		return campus.Location{}, errors.Wrap(err, "inserting location")
	}
	return loc, nil
}

func (repo *locationRegistry) GetLocation(ctx context.Context, id string) (campus.Location, error) {
	var row locationRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, name, description, icon, lat, lng FROM map_location WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return campus.Location{}, campus.ErrLocationNotFound
	}
	if err != nil {
		return campus.Location{}, errors.Wrap(err, "querying location")
	}
	return row.location(), nil
}

func (repo *locationRegistry) UpdateLocation(ctx context.Context, loc campus.Location) (campus.Location, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE map_location SET name = $2, description = $3, icon = $4, lat = $5, lng = $6, updated_at = now()
		 WHERE id = $1`,
		loc.ID, loc.Name, loc.Description, loc.Icon, loc.Position.Lat, loc.Position.Lng)
	if err != nil {
		return campus.Location{}, errors.Wrap(err, "updating location")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return campus.Location{}, campus.ErrLocationNotFound
	}
	return loc, nil
}

func (repo *locationRegistry) DeleteLocation(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM map_location WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting location")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return campus.ErrLocationNotFound
	}
	return nil
}

type visibleCache struct {
	db *sqlx.DB
}

var _ campus.VisibleCache = (*visibleCache)(nil)

func NewVisibleCache(db *sqlx.DB) campus.VisibleCache {
	return &visibleCache{db: db}
}

func (repo *visibleCache) GetVisible(ctx context.Context) ([]campus.Location, error) {
	var raw []byte
	err := repo.db.GetContext(ctx, &raw, `SELECT locations FROM visible_locations_cache WHERE id`)
	if err == sql.ErrNoRows {
		return []campus.Location{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying visible set")
	}
	locs := []campus.Location{}
	if err = json.Unmarshal(raw, &locs); err != nil {
		return nil, errors.Wrap(err, "decoding visible set")
	}
	return locs, nil
}

// ReplaceVisible swaps the whole snapshot in a single UPSERT so readers
// never observe a partially rebuilt cache.
func (repo *visibleCache) ReplaceVisible(ctx context.Context, locs []campus.Location) error {
	if locs == nil {
		locs = []campus.Location{}
	}
	raw, err := json.Marshal(locs)
	if err != nil {
		return errors.Wrap(err, "encoding visible set")
	}
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO visible_locations_cache (id, locations, rebuilt_at) VALUES (true, $1, now())
		 ON CONFLICT (id) DO UPDATE SET locations = EXCLUDED.locations, rebuilt_at = now()`, raw)
	return errors.Wrap(err, "replacing visible set")
}
