package operations

import (
	"context"
	"errors"
	"fmt"

	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/schema"
)

func (r *Registry) assignVehicleToTrip() Definition {
	return Definition{
		Name:        "assign_vehicle_to_trip",
		Description: "Assign a vehicle and driver to a trip (creates a deployment).",
		Category:    domain.CategoryWrite,
		// Creates a row; a retry after an ambiguous failure could deploy twice.
		Idempotent: false,
		Schema: schema.Schema{
			"trip_id":    schema.ID(),
			"vehicle_id": schema.ID(),
			"driver_id":  schema.ID(),
		},
		run: func(ctx context.Context, params map[string]any) Result {
			var req struct {
				TripID    int64 `json:"trip_id"`
				VehicleID int64 `json:"vehicle_id"`
				DriverID  int64 `json:"driver_id"`
			}
			if err := decode(params, &req); err != nil {
				return Fail(err, "Invalid assignment parameters.")
			}

			trip, err := r.store.TripByID(ctx, req.TripID)
			if errors.Is(err, domain.ErrNotFound) {
				return Fail(err, fmt.Sprintf("Trip %d does not exist.", req.TripID))
			}
			if err != nil {
				return Fail(domain.Transient(err), "Could not look up the trip.")
			}

			if _, err := r.store.VehicleByID(ctx, req.VehicleID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return Fail(err, fmt.Sprintf("Vehicle %d does not exist.", req.VehicleID))
				}
				return Fail(domain.Transient(err), "Could not look up the vehicle.")
			}
			if _, err := r.store.DriverByID(ctx, req.DriverID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return Fail(err, fmt.Sprintf("Driver %d does not exist.", req.DriverID))
				}
				return Fail(domain.Transient(err), "Could not look up the driver.")
			}

			if _, err := r.store.DeploymentForTrip(ctx, req.TripID); err == nil {
				return Fail(fmt.Errorf("%w: trip %d already has a deployment", domain.ErrInvalidParams, req.TripID),
					fmt.Sprintf("Trip %q already has a vehicle assigned. Remove it first.", trip.DisplayName))
			} else if !errors.Is(err, domain.ErrNotFound) {
				return Fail(domain.Transient(err), "Could not check the trip's current deployment.")
			}

			dep := &domain.Deployment{TripID: req.TripID, VehicleID: req.VehicleID, DriverID: req.DriverID}
			if err := r.store.CreateDeployment(ctx, dep); err != nil {
				return Fail(domain.Transient(err), "Could not create the deployment.")
			}

			return OK(fmt.Sprintf("Vehicle %d assigned to trip %q", req.VehicleID, trip.DisplayName), map[string]any{
				"deployment_id": dep.ID,
				"trip_id":       req.TripID,
				"trip_name":     trip.DisplayName,
				"vehicle_id":    req.VehicleID,
				"driver_id":     req.DriverID,
			})
		},
	}
}

func (r *Registry) createStop() Definition {
	return Definition{
		Name:        "create_stop",
		Description: "Create a stop at a geographic location.",
		Category:    domain.CategoryWrite,
		Idempotent:  false,
		Schema: schema.Schema{
			"name":      schema.String(),
			"latitude":  schema.Latitude(),
			"longitude": schema.Longitude(),
		},
		run: func(ctx context.Context, params map[string]any) Result {
			var req struct {
				Name      string  `json:"name"`
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			}
			if err := decode(params, &req); err != nil {
				return Fail(err, "Invalid stop parameters.")
			}

			stop := &domain.Stop{Name: req.Name, Latitude: req.Latitude, Longitude: req.Longitude}
			if err := r.store.CreateStop(ctx, stop); err != nil {
				return Fail(domain.Transient(err), "Could not create the stop.")
			}
			return OK(fmt.Sprintf("Stop %q created", stop.Name), map[string]any{
				"stop_id":   stop.ID,
				"name":      stop.Name,
				"latitude":  stop.Latitude,
				"longitude": stop.Longitude,
			})
		},
	}
}

func (r *Registry) createPath() Definition {
	return Definition{
		Name:        "create_path",
		Description: "Create a path from an ordered list of at least two stop IDs.",
		Category:    domain.CategoryWrite,
		Idempotent:  false,
		Schema: schema.Schema{
			"path_name":        schema.String(),
			"ordered_stop_ids": schema.Slice(schema.ID(), 2),
		},
		run: func(ctx context.Context, params map[string]any) Result {
			var req struct {
				PathName       string  `json:"path_name"`
				OrderedStopIDs []int64 `json:"ordered_stop_ids"`
			}
			if err := decode(params, &req); err != nil {
				return Fail(err, "Invalid path parameters.")
			}

			path := &domain.Path{Name: req.PathName, StopIDs: req.OrderedStopIDs}
			if err := r.store.CreatePath(ctx, path); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return Fail(err, "One or more of the stops do not exist.")
				}
				return Fail(domain.Transient(err), "Could not create the path.")
			}
			return OK(fmt.Sprintf("Path %q created with %d stops", path.Name, len(path.StopIDs)), map[string]any{
				"path_id": path.ID,
				"name":    path.Name,
				"stops":   len(path.StopIDs),
			})
		},
	}
}

func (r *Registry) createRoute() Definition {
	return Definition{
		Name:        "create_route",
		Description: "Create a route over a path with a shift time and direction.",
		Category:    domain.CategoryWrite,
		Idempotent:  false,
		Schema: schema.Schema{
			"path_id":    schema.ID(),
			"shift_time": schema.TimeOfDay(),
			"direction":  schema.Enum("direction", "UP", "DOWN"),
		},
		run: func(ctx context.Context, params map[string]any) Result {
			var req struct {
				PathID    int64  `json:"path_id"`
				ShiftTime string `json:"shift_time"`
				Direction string `json:"direction"`
			}
			if err := decode(params, &req); err != nil {
				return Fail(err, "Invalid route parameters.")
			}

			route := &domain.Route{PathID: req.PathID, ShiftTime: req.ShiftTime, Direction: req.Direction, Active: true}
			if err := r.store.CreateRoute(ctx, route); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return Fail(err, fmt.Sprintf("Path %d does not exist.", req.PathID))
				}
				return Fail(domain.Transient(err), "Could not create the route.")
			}
			return OK(fmt.Sprintf("Route %q created", route.Name), map[string]any{
				"route_id":   route.ID,
				"name":       route.Name,
				"shift_time": route.ShiftTime,
				"direction":  route.Direction,
			})
		},
	}
}
