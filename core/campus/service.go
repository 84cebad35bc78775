package campus

import (
	"context"
	"fmt"
	"net/mail"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/muchiri/karibu/core"
	"github.com/muchiri/karibu/core/geo"
)

type (
	// BoundaryStore persists the singleton map boundary.
	BoundaryStore interface {
		// GetBoundary returns ErrBoundaryNotSet if no boundary was ever saved.
		GetBoundary(ctx context.Context) (Boundary, error)
		SetBoundary(ctx context.Context, b Boundary) error
	}

	// LocationRegistry persists the full set of points of interest,
	// independent of visibility.
	LocationRegistry interface {
		ListLocations(ctx context.Context) ([]Location, error)
		CreateLocation(ctx context.Context, loc Location) (Location, error)
		GetLocation(ctx context.Context, id string) (Location, error)
		// UpdateLocation returns ErrLocationNotFound if loc.ID does not exist.
		UpdateLocation(ctx context.Context, loc Location) (Location, error)
		DeleteLocation(ctx context.Context, id string) error
	}

	// VisibleCache holds the denormalized visible-set snapshot. Only the
	// rebuild routine may write it; ReplaceVisible swaps the whole snapshot
	// in a single write so readers never observe a partial rebuild.
	VisibleCache interface {
		GetVisible(ctx context.Context) ([]Location, error)
		ReplaceVisible(ctx context.Context, locs []Location) error
	}
)

// Event names a change to one of the visible-set inputs. Every mutation
// dispatches its event to the rebuild handler; the relationship is explicit
// here rather than buried in the storage layer.
type Event string

const (
	BoundaryChanged  Event = "boundary.changed"
	LocationsChanged Event = "locations.changed"
)

// RebuildResult reports the outcome of the cache rebuild a write triggered.
// Err set with the write itself succeeding means the source of truth is
// saved but the map cache is stale until the next successful rebuild; the
// API surfaces this as "saved, but map may be out of date".
type RebuildResult struct {
	Event Event
	Err   error
}

func (r RebuildResult) Rebuilt() bool { return r.Err == nil }

type ServiceInterface interface {
	GetBoundary(ctx context.Context) (Boundary, error)
	SetBoundary(ctx context.Context, nb NewBoundary) (Boundary, RebuildResult, error)
	ListLocations(ctx context.Context) ([]Location, error)
	GetLocation(ctx context.Context, id string) (Location, error)
	CreateLocation(ctx context.Context, nl NewLocation) (Location, RebuildResult, error)
	UpdateLocation(ctx context.Context, id string, ul UpdateLocation) (Location, RebuildResult, error)
	DeleteLocation(ctx context.Context, id string) (RebuildResult, error)
	VisibleLocations(ctx context.Context) ([]Location, error)
	Rebuild(ctx context.Context) error
}

type Service struct {
	boundary  BoundaryStore
	registry  LocationRegistry
	cache     VisibleCache
	logger    core.Logger
	mailSvc   core.EmailService
	alertAddr mail.Address
}

var _ ServiceInterface = (*Service)(nil)

func NewService(
	boundary BoundaryStore,
	registry LocationRegistry,
	cache VisibleCache,
	logger core.Logger,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		boundary:  boundary,
		registry:  registry,
		cache:     cache,
		logger:    logger,
		mailSvc:   mailSvc,
		alertAddr: conf.AdminAlertEmail,
	}
}

func (svc *Service) GetBoundary(ctx context.Context) (Boundary, error) {
	return svc.boundary.GetBoundary(ctx)
}

// SetBoundary overwrites the singleton boundary and rebuilds the visible
// set. The write error and the rebuild outcome are returned separately: a
// failed rebuild never rolls back a landed write.
func (svc *Service) SetBoundary(ctx context.Context, nb NewBoundary) (Boundary, RebuildResult, error) {
	if err := nb.Validate(); err != nil {
		return Boundary{}, RebuildResult{}, err
	}
	b := nb.Boundary()
	if err := svc.boundary.SetBoundary(ctx, b); err != nil {
		return Boundary{}, RebuildResult{}, errors.Wrap(err, "saving boundary")
	}
	return b, svc.dispatch(ctx, BoundaryChanged), nil
}

func (svc *Service) ListLocations(ctx context.Context) ([]Location, error) {
	return svc.registry.ListLocations(ctx)
}

func (svc *Service) GetLocation(ctx context.Context, id string) (Location, error) {
	return svc.registry.GetLocation(ctx, id)
}

func (svc *Service) CreateLocation(ctx context.Context, nl NewLocation) (Location, RebuildResult, error) {
	if err := nl.Validate(); err != nil {
		return Location{}, RebuildResult{}, err
	}
	loc := Location{
		ID:          uuid.New().String(),
		Name:        nl.Name,
		Description: nl.Description,
		Icon:        nl.Icon,
		Position:    nl.Position.Point(),
	}
	loc, err := svc.registry.CreateLocation(ctx, loc)
	if err != nil {
		return Location{}, RebuildResult{}, errors.Wrap(err, "creating location")
	}
	return loc, svc.dispatch(ctx, LocationsChanged), nil
}

func (svc *Service) UpdateLocation(ctx context.Context, id string, ul UpdateLocation) (Location, RebuildResult, error) {
	if err := ul.Validate(); err != nil {
		return Location{}, RebuildResult{}, err
	}
	loc, err := svc.registry.GetLocation(ctx, id)
	if err != nil {
		return Location{}, RebuildResult{}, err
	}
	loc, err = svc.registry.UpdateLocation(ctx, ul.Apply(loc))
	if err != nil {
		return Location{}, RebuildResult{}, err
	}
	return loc, svc.dispatch(ctx, LocationsChanged), nil
}

func (svc *Service) DeleteLocation(ctx context.Context, id string) (RebuildResult, error) {
	if err := svc.registry.DeleteLocation(ctx, id); err != nil {
		return RebuildResult{}, err
	}
	return svc.dispatch(ctx, LocationsChanged), nil
}

// VisibleLocations is the student-facing read: a single non-blocking read
// of the cached snapshot. It never touches the registry.
func (svc *Service) VisibleLocations(ctx context.Context) ([]Location, error) {
	return svc.cache.GetVisible(ctx)
}

// dispatch hands a change event to the rebuild handler. Rebuild failures
// are logged and reported to the admins but never propagated as the
// triggering write's failure.
func (svc *Service) dispatch(ctx context.Context, ev Event) RebuildResult {
	res := RebuildResult{Event: ev}
	if err := svc.Rebuild(ctx); err != nil {
		res.Err = err
		svc.logger.Error(fmt.Sprintf("rebuilding visible set after %s: %v", ev, err), err)
		svc.alertRebuildFailed(ev, err)
	}
	return res
}

// Rebuild recomputes the visible set from the current boundary and
// registry and atomically replaces the cached snapshot. No boundary means
// nothing is visible. If the registry read fails the previous snapshot is
// left untouched; stale-but-valid beats empty-but-wrong.
func (svc *Service) Rebuild(ctx context.Context) error {
	b, err := svc.boundary.GetBoundary(ctx)
	if err != nil {
		if errors.Cause(err) == ErrBoundaryNotSet {
			return errors.Wrap(svc.cache.ReplaceVisible(ctx, []Location{}), "clearing visible set")
		}
		return errors.Wrap(err, "reading boundary")
	}

	locs, err := svc.registry.ListLocations(ctx)
	if err != nil {
		return errors.Wrap(err, "reading location registry")
	}

	ring := b.Ring()
	visible := make([]Location, 0, len(locs))
	for _, loc := range locs {
		if geo.Contains(loc.Position, ring) {
			visible = append(visible, loc)
		}
	}
	// deterministic snapshot ordering: rebuilds with identical inputs
	// produce identical output
	sort.Slice(visible, func(i, j int) bool {
		if visible[i].Name != visible[j].Name {
			return visible[i].Name < visible[j].Name
		}
		return visible[i].ID < visible[j].ID
	})

	return errors.Wrap(svc.cache.ReplaceVisible(ctx, visible), "replacing visible set")
}

func (svc *Service) alertRebuildFailed(ev Event, err error) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{svc.alertAddr},
		Subject: "Map cache rebuild failed",
		Body: fmt.Sprintf(
			"The visible-locations cache could not be rebuilt after a %s event.\n\n"+
				"The map may be out of date until the next successful save.\n\nError: %v\n", ev, err),
	})
}
