package operations

import (
	"context"
	"errors"
	"fmt"

	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/schema"
)

func (r *Registry) getUnassignedVehiclesCount() Definition {
	return Definition{
		Name:        "get_unassigned_vehicles_count",
		Description: "Count and list vehicles not currently assigned to any trip.",
		Category:    domain.CategoryRead,
		Idempotent:  true,
		Schema:      schema.Schema{},
		run: func(ctx context.Context, _ map[string]any) Result {
			vehicles, err := r.store.UnassignedVehicles(ctx)
			if err != nil {
				return Fail(domain.Transient(err), "Could not look up unassigned vehicles.")
			}
			list := make([]map[string]any, 0, len(vehicles))
			for _, v := range vehicles {
				list = append(list, map[string]any{
					"id":            v.ID,
					"license_plate": v.LicensePlate,
					"type":          v.Type,
					"capacity":      v.Capacity,
				})
			}
			return OK(fmt.Sprintf("Found %d unassigned vehicles", len(vehicles)), map[string]any{
				"count":    len(vehicles),
				"vehicles": list,
			})
		},
	}
}

func (r *Registry) getTripStatus() Definition {
	return Definition{
		Name:        "get_trip_status",
		Description: "Detailed status of a trip: bookings, deployment, vehicle and live status.",
		Category:    domain.CategoryRead,
		Idempotent:  true,
		Schema:      schema.Schema{"trip_id": schema.ID()},
		run: func(ctx context.Context, params map[string]any) Result {
			var req struct {
				TripID int64 `json:"trip_id"`
			}
			if err := decode(params, &req); err != nil {
				return Fail(err, "Invalid trip reference.")
			}

			trip, err := r.store.TripByID(ctx, req.TripID)
			if errors.Is(err, domain.ErrNotFound) {
				return Fail(err, fmt.Sprintf("Trip %d does not exist.", req.TripID))
			}
			if err != nil {
				return Fail(domain.Transient(err), "Could not look up the trip.")
			}

			data := map[string]any{
				"trip_id":            trip.ID,
				"display_name":       trip.DisplayName,
				"booking_percentage": trip.BookingPercentage,
				"live_status":        trip.LiveStatus,
				"has_deployment":     false,
			}

			dep, err := r.store.DeploymentForTrip(ctx, trip.ID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				// No vehicle assigned; status is still reportable.
			case err != nil:
				return Fail(domain.Transient(err), "Could not look up the trip's deployment.")
			default:
				data["has_deployment"] = true
				data["deployment_id"] = dep.ID
				if vehicle, verr := r.store.VehicleByID(ctx, dep.VehicleID); verr == nil {
					data["vehicle"] = map[string]any{
						"id":            vehicle.ID,
						"license_plate": vehicle.LicensePlate,
						"capacity":      vehicle.Capacity,
					}
				}
			}

			return OK(fmt.Sprintf("Trip %q is %d%% booked", trip.DisplayName, trip.BookingPercentage), data)
		},
	}
}

func (r *Registry) listStopsForPath() Definition {
	return Definition{
		Name:        "list_stops_for_path",
		Description: "List all stops in order for a path, referenced by name.",
		Category:    domain.CategoryRead,
		Idempotent:  true,
		Schema:      schema.Schema{"path_name": schema.String()},
		run: func(ctx context.Context, params map[string]any) Result {
			var req struct {
				PathName string `json:"path_name"`
			}
			if err := decode(params, &req); err != nil {
				return Fail(err, "Invalid path reference.")
			}

			path, err := r.store.PathByName(ctx, req.PathName)
			if errors.Is(err, domain.ErrNotFound) {
				return Fail(err, fmt.Sprintf("No path named %q.", req.PathName))
			}
			if err != nil {
				return Fail(domain.Transient(err), "Could not look up the path.")
			}

			stops, err := r.store.StopsForPath(ctx, path.ID)
			if err != nil {
				return Fail(domain.Transient(err), "Could not list stops for the path.")
			}

			list := make([]map[string]any, 0, len(stops))
			for i, s := range stops {
				list = append(list, map[string]any{
					"order":     i + 1,
					"id":        s.ID,
					"name":      s.Name,
					"latitude":  s.Latitude,
					"longitude": s.Longitude,
				})
			}
			return OK(fmt.Sprintf("Path %q has %d stops", path.Name, len(stops)), map[string]any{
				"path_id": path.ID,
				"count":   len(stops),
				"stops":   list,
			})
		},
	}
}

func (r *Registry) listRoutesByPath() Definition {
	return Definition{
		Name:        "list_routes_by_path",
		Description: "List all routes that run over a path, referenced by name.",
		Category:    domain.CategoryRead,
		Idempotent:  true,
		Schema:      schema.Schema{"path_name": schema.String()},
		run: func(ctx context.Context, params map[string]any) Result {
			var req struct {
				PathName string `json:"path_name"`
			}
			if err := decode(params, &req); err != nil {
				return Fail(err, "Invalid path reference.")
			}

			path, err := r.store.PathByName(ctx, req.PathName)
			if errors.Is(err, domain.ErrNotFound) {
				return Fail(err, fmt.Sprintf("No path named %q.", req.PathName))
			}
			if err != nil {
				return Fail(domain.Transient(err), "Could not look up the path.")
			}

			routes, err := r.store.RoutesForPath(ctx, path.ID)
			if err != nil {
				return Fail(domain.Transient(err), "Could not list routes for the path.")
			}

			list := make([]map[string]any, 0, len(routes))
			for _, rt := range routes {
				list = append(list, map[string]any{
					"id":         rt.ID,
					"name":       rt.Name,
					"shift_time": rt.ShiftTime,
					"direction":  rt.Direction,
					"active":     rt.Active,
				})
			}
			return OK(fmt.Sprintf("Path %q serves %d routes", path.Name, len(routes)), map[string]any{
				"path_id": path.ID,
				"count":   len(routes),
				"routes":  list,
			})
		},
	}
}
