package operations

import (
	"context"
	"errors"
	"fmt"

	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/schema"
)

func (r *Registry) removeVehicleFromTrip() Definition {
	return Definition{
		Name:        "remove_vehicle_from_trip",
		Description: "Remove the deployed vehicle from a trip. Affects passengers with existing bookings.",
		Category:    domain.CategoryDelete,
		// Removing an already-removed deployment is a no-op, so a retry
		// after an ambiguous failure is safe.
		Idempotent:               true,
		RequiresConsequenceCheck: true,
		Schema: schema.Schema{
			"trip_id": schema.ID(),
		},
		run: func(ctx context.Context, params map[string]any) Result {
			var req struct {
				TripID int64 `json:"trip_id"`
			}
			if err := decode(params, &req); err != nil {
				return Fail(err, "Invalid removal parameters.")
			}

			trip, err := r.store.TripByID(ctx, req.TripID)
			if errors.Is(err, domain.ErrNotFound) {
				return Fail(err, fmt.Sprintf("Trip %d does not exist.", req.TripID))
			}
			if err != nil {
				return Fail(domain.Transient(err), "Could not look up the trip.")
			}

			removed, err := r.store.DeleteDeploymentForTrip(ctx, req.TripID)
			if errors.Is(err, domain.ErrNotFound) {
				return Fail(err, fmt.Sprintf("Trip %q has no vehicle assigned.", trip.DisplayName))
			}
			if err != nil {
				return Fail(domain.Transient(err), "Could not remove the deployment.")
			}

			return OK(fmt.Sprintf("Vehicle %d removed from trip %q", removed.VehicleID, trip.DisplayName), map[string]any{
				"trip_id":    req.TripID,
				"trip_name":  trip.DisplayName,
				"vehicle_id": removed.VehicleID,
				"driver_id":  removed.DriverID,
			})
		},
	}
}
