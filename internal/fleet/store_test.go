package fleet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviops/movi/pkg/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fleet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeedIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx))
	first, err := s.UnassignedVehicles(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Seed(ctx))
	second, err := s.UnassignedVehicles(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
	assert.Len(t, second, 3, "one of four vehicles starts deployed")
}

func TestTripLookups(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))

	trip, err := s.TripByName(ctx, "Whitefield Express 08:00 UP")
	require.NoError(t, err)
	assert.Equal(t, 25, trip.BookingPercentage)

	byID, err := s.TripByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.DisplayName, byID.DisplayName)

	// Single substring match resolves.
	partial, err := s.TripByName(ctx, "E-City Direct 09:00")
	require.NoError(t, err)
	assert.Equal(t, "E-City Direct 09:00 UP", partial.DisplayName)

	// Ambiguous substring does not.
	_, err = s.TripByName(ctx, "Whitefield")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.TripByID(ctx, 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPathAndStops(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))

	path, err := s.PathByName(ctx, "Whitefield Express")
	require.NoError(t, err)
	require.Len(t, path.StopIDs, 4)

	stops, err := s.StopsForPath(ctx, path.ID)
	require.NoError(t, err)
	require.Len(t, stops, 4)
	assert.Equal(t, "Majestic Terminal", stops[0].Name, "stops come back in path order")
	assert.Equal(t, "Whitefield Tech Park", stops[3].Name)

	routes, err := s.RoutesForPath(ctx, path.ID)
	require.NoError(t, err)
	assert.Len(t, routes, 2)
}

func TestCreatePathRejectsMissingStop(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	stop := &domain.Stop{Name: "Lone Stop", Latitude: 1, Longitude: 1}
	require.NoError(t, s.CreateStop(ctx, stop))

	err := s.CreatePath(ctx, &domain.Path{Name: "Broken", StopIDs: []int64{stop.ID, 424242}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The failed transaction must not leave a half-created path behind.
	_, err = s.PathByName(ctx, "Broken")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRouteNameDefaultsFromPath(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := &domain.Stop{Name: "A", Latitude: 1, Longitude: 1}
	b := &domain.Stop{Name: "B", Latitude: 2, Longitude: 2}
	require.NoError(t, s.CreateStop(ctx, a))
	require.NoError(t, s.CreateStop(ctx, b))
	p := &domain.Path{Name: "Test Loop", StopIDs: []int64{a.ID, b.ID}}
	require.NoError(t, s.CreatePath(ctx, p))

	r := &domain.Route{PathID: p.ID, ShiftTime: "07:15", Direction: "UP", Active: true}
	require.NoError(t, s.CreateRoute(ctx, r))
	assert.Equal(t, "Test Loop 07:15 UP", r.Name)

	err := s.CreateRoute(ctx, &domain.Route{PathID: 9999, ShiftTime: "07:15", Direction: "UP"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeploymentLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))

	trip, err := s.TripByName(ctx, "E-City Direct 09:00 UP")
	require.NoError(t, err)

	_, err = s.DeploymentForTrip(ctx, trip.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	unassigned, err := s.UnassignedVehicles(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, unassigned)

	dep := &domain.Deployment{TripID: trip.ID, VehicleID: unassigned[0].ID, DriverID: 2}
	require.NoError(t, s.CreateDeployment(ctx, dep))
	assert.NotZero(t, dep.ID)

	loaded, err := s.DeploymentForTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, dep.VehicleID, loaded.VehicleID)
	assert.False(t, loaded.DeployedAt.IsZero())

	// A second deployment on the same trip violates the unique constraint.
	err = s.CreateDeployment(ctx, &domain.Deployment{TripID: trip.ID, VehicleID: unassigned[0].ID, DriverID: 2})
	assert.Error(t, err)

	removed, err := s.DeleteDeploymentForTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, dep.ID, removed.ID)

	_, err = s.DeleteDeploymentForTrip(ctx, trip.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
