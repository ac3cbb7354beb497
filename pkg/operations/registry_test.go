package operations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviops/movi/pkg/domain"
)

// fakeStore is an in-memory Store for exercising the registry without a
// database. Mutations append; lookups scan.
type fakeStore struct {
	stops       map[int64]*domain.Stop
	paths       map[int64]*domain.Path
	routes      map[int64]*domain.Route
	vehicles    map[int64]*domain.Vehicle
	drivers     map[int64]*domain.Driver
	trips       map[int64]*domain.Trip
	deployments map[int64]*domain.Deployment // keyed by trip ID

	nextID int64
	failAll error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stops:       make(map[int64]*domain.Stop),
		paths:       make(map[int64]*domain.Path),
		routes:      make(map[int64]*domain.Route),
		vehicles:    make(map[int64]*domain.Vehicle),
		drivers:     make(map[int64]*domain.Driver),
		trips:       make(map[int64]*domain.Trip),
		deployments: make(map[int64]*domain.Deployment),
		nextID:      100,
	}
}

func (f *fakeStore) id() int64 { f.nextID++; return f.nextID }

func (f *fakeStore) TripByID(_ context.Context, id int64) (*domain.Trip, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	if t, ok := f.trips[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) TripByName(_ context.Context, name string) (*domain.Trip, error) {
	for _, t := range f.trips {
		if t.DisplayName == name {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) RouteByID(_ context.Context, id int64) (*domain.Route, error) {
	if r, ok := f.routes[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) RouteByName(_ context.Context, name string) (*domain.Route, error) {
	for _, r := range f.routes {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) PathByName(_ context.Context, name string) (*domain.Path, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	for _, p := range f.paths {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) VehicleByID(_ context.Context, id int64) (*domain.Vehicle, error) {
	if v, ok := f.vehicles[id]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) DeploymentForTrip(_ context.Context, tripID int64) (*domain.Deployment, error) {
	if d, ok := f.deployments[tripID]; ok {
		return d, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) UnassignedVehicles(_ context.Context) ([]domain.Vehicle, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	deployed := make(map[int64]bool)
	for _, d := range f.deployments {
		deployed[d.VehicleID] = true
	}
	var out []domain.Vehicle
	for _, v := range f.vehicles {
		if !deployed[v.ID] {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeStore) StopsForPath(_ context.Context, pathID int64) ([]domain.Stop, error) {
	p, ok := f.paths[pathID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var out []domain.Stop
	for _, id := range p.StopIDs {
		if s, ok := f.stops[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) RoutesForPath(_ context.Context, pathID int64) ([]domain.Route, error) {
	var out []domain.Route
	for _, r := range f.routes {
		if r.PathID == pathID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) DriverByID(_ context.Context, id int64) (*domain.Driver, error) {
	if d, ok := f.drivers[id]; ok {
		return d, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) CreateStop(_ context.Context, stop *domain.Stop) error {
	stop.ID = f.id()
	f.stops[stop.ID] = stop
	return nil
}

func (f *fakeStore) CreatePath(_ context.Context, path *domain.Path) error {
	for _, id := range path.StopIDs {
		if _, ok := f.stops[id]; !ok {
			return domain.ErrNotFound
		}
	}
	path.ID = f.id()
	f.paths[path.ID] = path
	return nil
}

func (f *fakeStore) CreateRoute(_ context.Context, route *domain.Route) error {
	if _, ok := f.paths[route.PathID]; !ok {
		return domain.ErrNotFound
	}
	route.ID = f.id()
	f.routes[route.ID] = route
	return nil
}

func (f *fakeStore) CreateDeployment(_ context.Context, d *domain.Deployment) error {
	d.ID = f.id()
	f.deployments[d.TripID] = d
	return nil
}

func (f *fakeStore) DeleteDeploymentForTrip(_ context.Context, tripID int64) (*domain.Deployment, error) {
	d, ok := f.deployments[tripID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(f.deployments, tripID)
	return d, nil
}

func seededStore() *fakeStore {
	f := newFakeStore()
	f.stops[1] = &domain.Stop{ID: 1, Name: "Central", Latitude: 12.97, Longitude: 77.59}
	f.stops[2] = &domain.Stop{ID: 2, Name: "Tech Park", Latitude: 12.93, Longitude: 77.62}
	f.paths[10] = &domain.Path{ID: 10, Name: "Morning Loop", StopIDs: []int64{1, 2}}
	f.routes[20] = &domain.Route{ID: 20, PathID: 10, Name: "Morning Loop 08:00 UP", ShiftTime: "08:00", Direction: "UP", Active: true}
	f.vehicles[30] = &domain.Vehicle{ID: 30, LicensePlate: "KA-01-AB-1234", Type: "bus", Capacity: 40}
	f.vehicles[31] = &domain.Vehicle{ID: 31, LicensePlate: "KA-01-CD-5678", Type: "cab", Capacity: 6}
	f.drivers[40] = &domain.Driver{ID: 40, Name: "Asha", LicenseNumber: "DL-99"}
	f.trips[50] = &domain.Trip{ID: 50, RouteID: 20, DisplayName: "Morning Loop 08:00", BookingPercentage: 25}
	return f
}

func TestRegistryVocabulary(t *testing.T) {
	reg := NewRegistry(newFakeStore())
	defs := reg.Definitions()
	require.Len(t, defs, 9)

	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"assign_vehicle_to_trip",
		"create_path",
		"create_route",
		"create_stop",
		"get_trip_status",
		"get_unassigned_vehicles_count",
		"list_routes_by_path",
		"list_stops_for_path",
		"remove_vehicle_from_trip",
	}, names)

	remove, ok := reg.Lookup("remove_vehicle_from_trip")
	require.True(t, ok)
	assert.True(t, remove.RequiresConsequenceCheck)
	assert.True(t, remove.Idempotent)
	assert.Equal(t, domain.CategoryDelete, remove.Category)

	assign, ok := reg.Lookup("assign_vehicle_to_trip")
	require.True(t, ok)
	assert.False(t, assign.Idempotent, "creation must not be retried")
	assert.False(t, assign.RequiresConsequenceCheck)
}

func TestExecuteUnknownOperation(t *testing.T) {
	reg := NewRegistry(newFakeStore())
	res := reg.Execute(context.Background(), "launch_rocket", nil)
	assert.False(t, res.Success())
	assert.ErrorIs(t, res.Err(), domain.ErrOperationNotFound)
	assert.Nil(t, res.Data())
}

func TestExecuteValidatesParams(t *testing.T) {
	reg := NewRegistry(seededStore())

	res := reg.Execute(context.Background(), "get_trip_status", map[string]any{})
	assert.False(t, res.Success())
	assert.ErrorIs(t, res.Err(), domain.ErrInvalidParams)

	// Classifier output carries IDs as float64; whole floats must pass.
	res = reg.Execute(context.Background(), "get_trip_status", map[string]any{"trip_id": float64(50)})
	require.True(t, res.Success(), "got: %s", res.Message())
	assert.Equal(t, int64(50), res.Data()["trip_id"])
}

func TestGetUnassignedVehiclesCount(t *testing.T) {
	store := seededStore()
	reg := NewRegistry(store)

	res := reg.Execute(context.Background(), "get_unassigned_vehicles_count", map[string]any{})
	require.True(t, res.Success())
	assert.Equal(t, 2, res.Data()["count"])

	// Deploy one and the count drops.
	store.deployments[50] = &domain.Deployment{ID: 1, TripID: 50, VehicleID: 30, DriverID: 40}
	res = reg.Execute(context.Background(), "get_unassigned_vehicles_count", map[string]any{})
	require.True(t, res.Success())
	assert.Equal(t, 1, res.Data()["count"])
}

func TestGetTripStatus(t *testing.T) {
	store := seededStore()
	reg := NewRegistry(store)

	res := reg.Execute(context.Background(), "get_trip_status", map[string]any{"trip_id": 50})
	require.True(t, res.Success())
	assert.Equal(t, false, res.Data()["has_deployment"])
	assert.Equal(t, 25, res.Data()["booking_percentage"])

	store.deployments[50] = &domain.Deployment{ID: 2, TripID: 50, VehicleID: 30, DriverID: 40}
	res = reg.Execute(context.Background(), "get_trip_status", map[string]any{"trip_id": 50})
	require.True(t, res.Success())
	assert.Equal(t, true, res.Data()["has_deployment"])

	res = reg.Execute(context.Background(), "get_trip_status", map[string]any{"trip_id": 999})
	assert.False(t, res.Success())
	assert.ErrorIs(t, res.Err(), domain.ErrNotFound)
}

func TestListStopsForPath(t *testing.T) {
	reg := NewRegistry(seededStore())

	res := reg.Execute(context.Background(), "list_stops_for_path", map[string]any{"path_name": "Morning Loop"})
	require.True(t, res.Success())
	assert.Equal(t, 2, res.Data()["count"])

	res = reg.Execute(context.Background(), "list_stops_for_path", map[string]any{"path_name": "Nowhere"})
	assert.False(t, res.Success())
	assert.ErrorIs(t, res.Err(), domain.ErrNotFound)
}

func TestListRoutesByPath(t *testing.T) {
	reg := NewRegistry(seededStore())
	res := reg.Execute(context.Background(), "list_routes_by_path", map[string]any{"path_name": "Morning Loop"})
	require.True(t, res.Success())
	assert.Equal(t, 1, res.Data()["count"])
}

func TestAssignVehicleToTrip(t *testing.T) {
	store := seededStore()
	reg := NewRegistry(store)
	params := map[string]any{"trip_id": 50, "vehicle_id": 30, "driver_id": 40}

	res := reg.Execute(context.Background(), "assign_vehicle_to_trip", params)
	require.True(t, res.Success(), "got: %s", res.Message())
	assert.NotZero(t, res.Data()["deployment_id"])

	// Second assignment on the same trip is rejected.
	res = reg.Execute(context.Background(), "assign_vehicle_to_trip", params)
	assert.False(t, res.Success())
	assert.ErrorIs(t, res.Err(), domain.ErrInvalidParams)

	res = reg.Execute(context.Background(), "assign_vehicle_to_trip",
		map[string]any{"trip_id": 999, "vehicle_id": 30, "driver_id": 40})
	assert.False(t, res.Success())
	assert.ErrorIs(t, res.Err(), domain.ErrNotFound)
}

func TestCreateStopAndPathAndRoute(t *testing.T) {
	store := seededStore()
	reg := NewRegistry(store)
	ctx := context.Background()

	res := reg.Execute(ctx, "create_stop", map[string]any{
		"name": "Depot", "latitude": 12.90, "longitude": 77.55,
	})
	require.True(t, res.Success())
	stopID := res.Data()["stop_id"].(int64)

	res = reg.Execute(ctx, "create_stop", map[string]any{
		"name": "Depot Two", "latitude": 120.0, "longitude": 77.55,
	})
	assert.False(t, res.Success(), "latitude out of range must fail validation")

	res = reg.Execute(ctx, "create_path", map[string]any{
		"path_name":        "Evening Loop",
		"ordered_stop_ids": []any{float64(1), float64(stopID)},
	})
	require.True(t, res.Success(), "got: %s", res.Message())
	pathID := res.Data()["path_id"].(int64)

	res = reg.Execute(ctx, "create_path", map[string]any{
		"path_name":        "Short",
		"ordered_stop_ids": []any{float64(1)},
	})
	assert.False(t, res.Success(), "a path needs at least two stops")

	res = reg.Execute(ctx, "create_route", map[string]any{
		"path_id": pathID, "shift_time": "18:30", "direction": "DOWN",
	})
	require.True(t, res.Success(), "got: %s", res.Message())

	res = reg.Execute(ctx, "create_route", map[string]any{
		"path_id": pathID, "shift_time": "25:00", "direction": "DOWN",
	})
	assert.False(t, res.Success(), "shift_time must be a valid HH:MM")

	res = reg.Execute(ctx, "create_route", map[string]any{
		"path_id": pathID, "shift_time": "18:30", "direction": "SIDEWAYS",
	})
	assert.False(t, res.Success(), "direction outside the enum must fail")
}

func TestRemoveVehicleFromTrip(t *testing.T) {
	store := seededStore()
	store.deployments[50] = &domain.Deployment{ID: 3, TripID: 50, VehicleID: 30, DriverID: 40}
	reg := NewRegistry(store)

	res := reg.Execute(context.Background(), "remove_vehicle_from_trip", map[string]any{"trip_id": 50})
	require.True(t, res.Success())
	assert.Equal(t, int64(30), res.Data()["vehicle_id"])

	// Already removed: reported as a plain failure, not a transient one.
	res = reg.Execute(context.Background(), "remove_vehicle_from_trip", map[string]any{"trip_id": 50})
	assert.False(t, res.Success())
	assert.ErrorIs(t, res.Err(), domain.ErrNotFound)
	assert.False(t, domain.IsRetryable(res.Err()))
}

func TestStoreFailuresAreTransient(t *testing.T) {
	store := seededStore()
	store.failAll = errors.New("connection reset")
	reg := NewRegistry(store)

	res := reg.Execute(context.Background(), "get_unassigned_vehicles_count", map[string]any{})
	assert.False(t, res.Success())
	assert.True(t, domain.IsRetryable(res.Err()))
}
