package campus_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muchiri/karibu/core"
	"github.com/muchiri/karibu/core/campus"
	dummydb "github.com/muchiri/karibu/storage/database/dummy"
)

type testLogger struct {
	errored []string
}

func (l *testLogger) Debug(msg string, args ...interface{}) {}
func (l *testLogger) Info(msg string, args ...interface{})  {}
func (l *testLogger) Warn(msg string, args ...interface{})  {}
func (l *testLogger) Error(msg string, args ...interface{}) { l.errored = append(l.errored, msg) }
func (l *testLogger) Fatal(msg string, args ...interface{}) { l.errored = append(l.errored, msg) }

type testOutbox struct {
	sent []*core.EmailMessage
}

func (o *testOutbox) SendMessages(messages ...*core.EmailMessage) {
	o.sent = append(o.sent, messages...)
}

// brokenRegistry fails every read so rebuilds abort.
type brokenRegistry struct {
	campus.LocationRegistry
}

func (brokenRegistry) ListLocations(ctx context.Context) ([]campus.Location, error) {
	return nil, errors.New("registry unavailable")
}

func setup(t *testing.T) (*campus.Service, *dummydb.DB, *testLogger, *testOutbox) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	logger := &testLogger{}
	outbox := &testOutbox{}
	svc := campus.NewService(
		dummydb.NewBoundaryStore(db),
		dummydb.NewLocationRegistry(db),
		dummydb.NewVisibleCache(db),
		logger,
		outbox,
		testConfig(),
	)
	return svc, db, logger, outbox
}

func testConfig() *core.Config {
	conf := core.NewConfig()
	conf.TestMode = true
	return conf
}

// the campus rectangle from the admin defaults
func campusBoundary() campus.NewBoundary {
	return campus.NewBoundary{
		Northwest: &campus.Coordinate{Lat: 31.260, Lng: 75.700},
		Northeast: &campus.Coordinate{Lat: 31.260, Lng: 75.710},
		Southwest: &campus.Coordinate{Lat: 31.250, Lng: 75.700},
		Southeast: &campus.Coordinate{Lat: 31.250, Lng: 75.710},
	}
}

func newLocation(name string, lat, lng float64) campus.NewLocation {
	return campus.NewLocation{
		Name:        name,
		Description: name + " description",
		Icon:        campus.IconBuilding,
		Position:    &campus.Coordinate{Lat: lat, Lng: lng},
	}
}

func TestService_SetBoundary_validation(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		nb      campus.NewBoundary
		wantErr bool
	}{
		{"valid", campusBoundary(), false},
		{"missing corner", campus.NewBoundary{
			Northwest: &campus.Coordinate{Lat: 31.260, Lng: 75.700},
			Northeast: &campus.Coordinate{Lat: 31.260, Lng: 75.710},
			Southwest: &campus.Coordinate{Lat: 31.250, Lng: 75.700},
		}, true},
		{"latitude out of range", campus.NewBoundary{
			Northwest: &campus.Coordinate{Lat: 91.0, Lng: 75.700},
			Northeast: &campus.Coordinate{Lat: 31.260, Lng: 75.710},
			Southwest: &campus.Coordinate{Lat: 31.250, Lng: 75.700},
			Southeast: &campus.Coordinate{Lat: 31.250, Lng: 75.710},
		}, true},
		{"longitude out of range", campus.NewBoundary{
			Northwest: &campus.Coordinate{Lat: 31.260, Lng: -180.5},
			Northeast: &campus.Coordinate{Lat: 31.260, Lng: 75.710},
			Southwest: &campus.Coordinate{Lat: 31.250, Lng: 75.700},
			Southeast: &campus.Coordinate{Lat: 31.250, Lng: 75.710},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res, err := svc.SetBoundary(ctx, tt.nb)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.True(t, res.Rebuilt())
				assert.Equal(t, campus.BoundaryChanged, res.Event)
			}
		})
	}
}

func TestService_visibility(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	_, res, err := svc.SetBoundary(ctx, campusBoundary())
	require.NoError(t, err)
	require.True(t, res.Rebuilt())

	inside, res, err := svc.CreateLocation(ctx, newLocation("Block 34", 31.255, 75.705))
	require.NoError(t, err)
	require.True(t, res.Rebuilt())
	_, _, err = svc.CreateLocation(ctx, newLocation("City Hostel", 31.300, 75.705))
	require.NoError(t, err)

	visible, err := svc.VisibleLocations(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, inside.ID, visible[0].ID)
	assert.Equal(t, "Block 34", visible[0].Name)
}

func TestService_noBoundaryMeansNothingVisible(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	_, _, err := svc.CreateLocation(ctx, newLocation("Block 34", 31.255, 75.705))
	require.NoError(t, err)
	require.NoError(t, svc.Rebuild(ctx))

	visible, err := svc.VisibleLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestService_rebuildIsIdempotent(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	_, _, err := svc.SetBoundary(ctx, campusBoundary())
	require.NoError(t, err)
	for _, name := range []string{"Block 34", "Uni Mall", "Night Canteen"} {
		_, _, err = svc.CreateLocation(ctx, newLocation(name, 31.255, 75.705))
		require.NoError(t, err)
	}

	require.NoError(t, svc.Rebuild(ctx))
	first, err := svc.VisibleLocations(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Rebuild(ctx))
	second, err := svc.VisibleLocations(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestService_deletionRemovesVisibility(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	_, _, err := svc.SetBoundary(ctx, campusBoundary())
	require.NoError(t, err)
	loc, _, err := svc.CreateLocation(ctx, newLocation("Block 34", 31.255, 75.705))
	require.NoError(t, err)

	visible, err := svc.VisibleLocations(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)

	res, err := svc.DeleteLocation(ctx, loc.ID)
	require.NoError(t, err)
	require.True(t, res.Rebuilt())

	visible, err = svc.VisibleLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestService_boundaryShrinkRemovesVisibility(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	_, _, err := svc.SetBoundary(ctx, campusBoundary())
	require.NoError(t, err)
	// near the eastern edge of the campus rectangle
	edge, _, err := svc.CreateLocation(ctx, newLocation("East Gate", 31.255, 75.709))
	require.NoError(t, err)

	visible, err := svc.VisibleLocations(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)

	// shrink the boundary westwards; the location record itself is untouched
	shrunk := campus.NewBoundary{
		Northwest: &campus.Coordinate{Lat: 31.260, Lng: 75.700},
		Northeast: &campus.Coordinate{Lat: 31.260, Lng: 75.705},
		Southwest: &campus.Coordinate{Lat: 31.250, Lng: 75.700},
		Southeast: &campus.Coordinate{Lat: 31.250, Lng: 75.705},
	}
	_, res, err := svc.SetBoundary(ctx, shrunk)
	require.NoError(t, err)
	require.True(t, res.Rebuilt())

	visible, err = svc.VisibleLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, visible)

	got, err := svc.GetLocation(ctx, edge.ID)
	require.NoError(t, err)
	assert.Equal(t, edge, got)
}

func TestService_settledStateMatchesFilter(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	_, _, err := svc.SetBoundary(ctx, campusBoundary())
	require.NoError(t, err)

	in1, _, err := svc.CreateLocation(ctx, newLocation("Block 34", 31.2555, 75.7052))
	require.NoError(t, err)
	in2, _, err := svc.CreateLocation(ctx, newLocation("Uni Mall", 31.2520, 75.7080))
	require.NoError(t, err)
	out, _, err := svc.CreateLocation(ctx, newLocation("Railway Station", 31.300, 75.600))
	require.NoError(t, err)
	_, _, err = svc.UpdateLocation(ctx, in2.ID, campus.UpdateLocation{Name: "University Mall"})
	require.NoError(t, err)
	_, err = svc.DeleteLocation(ctx, in1.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Rebuild(ctx))

	visible, err := svc.VisibleLocations(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, in2.ID, visible[0].ID)
	assert.Equal(t, "University Mall", visible[0].Name)
	assert.NotEqual(t, out.ID, visible[0].ID)
}

func TestService_updateMergesFields(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	_, _, err := svc.SetBoundary(ctx, campusBoundary())
	require.NoError(t, err)
	loc, _, err := svc.CreateLocation(ctx, newLocation("Block 34", 31.255, 75.705))
	require.NoError(t, err)

	updated, res, err := svc.UpdateLocation(ctx, loc.ID, campus.UpdateLocation{Description: "Engineering block"})
	require.NoError(t, err)
	assert.True(t, res.Rebuilt())
	assert.Equal(t, loc.Name, updated.Name)
	assert.Equal(t, "Engineering block", updated.Description)
	assert.Equal(t, loc.Position, updated.Position)

	_, _, err = svc.UpdateLocation(ctx, "no-such-id", campus.UpdateLocation{Name: "x"})
	assert.Equal(t, campus.ErrLocationNotFound, errors.Cause(err))
}

func TestService_deleteUnknownLocation(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.DeleteLocation(context.Background(), "no-such-id")
	assert.Equal(t, campus.ErrLocationNotFound, errors.Cause(err))
}

func TestService_rebuildFailureKeepsPreviousCache(t *testing.T) {
	svc, db, logger, outbox := setup(t)
	ctx := context.Background()

	_, _, err := svc.SetBoundary(ctx, campusBoundary())
	require.NoError(t, err)
	loc, _, err := svc.CreateLocation(ctx, newLocation("Block 34", 31.255, 75.705))
	require.NoError(t, err)

	// same stores, but every registry read now fails
	broken := campus.NewService(
		dummydb.NewBoundaryStore(db),
		brokenRegistry{dummydb.NewLocationRegistry(db)},
		dummydb.NewVisibleCache(db),
		logger,
		outbox,
		testConfig(),
	)

	_, res, err := broken.SetBoundary(ctx, campusBoundary())
	require.NoError(t, err) // the write itself landed
	assert.False(t, res.Rebuilt())
	assert.Error(t, res.Err)

	// previous snapshot untouched: stale-but-valid beats empty-but-wrong
	visible, err := broken.VisibleLocations(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, loc.ID, visible[0].ID)

	// failure was logged and the admins were alerted
	assert.NotEmpty(t, logger.errored)
	require.Len(t, outbox.sent, 1)
	assert.Equal(t, "Map cache rebuild failed", outbox.sent[0].Subject)
}

func TestService_createValidation(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		nl      campus.NewLocation
		wantErr bool
	}{
		{"valid", newLocation("Block 34", 31.255, 75.705), false},
		{"missing name", campus.NewLocation{
			Description: "x", Position: &campus.Coordinate{Lat: 31.255, Lng: 75.705},
		}, true},
		{"missing description", campus.NewLocation{
			Name: "x", Position: &campus.Coordinate{Lat: 31.255, Lng: 75.705},
		}, true},
		{"missing position", campus.NewLocation{Name: "x", Description: "y"}, true},
		{"unknown icon is tolerated", campus.NewLocation{
			Name: "x", Description: "y", Icon: "MysteryTag",
			Position: &campus.Coordinate{Lat: 31.255, Lng: 75.705},
		}, false},
		{"empty icon gets the default marker", campus.NewLocation{
			Name: "x", Description: "y",
			Position: &campus.Coordinate{Lat: 31.255, Lng: 75.705},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, _, err := svc.CreateLocation(ctx, tt.nl)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotEmpty(t, loc.ID)
			if tt.nl.Icon != "" {
				assert.Equal(t, tt.nl.Icon, loc.Icon) // unknown tags kept as-is
			} else {
				assert.Equal(t, campus.IconDefault, loc.Icon)
			}
		})
	}
}
