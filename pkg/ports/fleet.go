package ports

import (
	"context"

	"github.com/moviops/movi/pkg/domain"
)

// FleetReader is the read-only slice of the fleet store the pipeline itself
// needs: resolving entity references during classification and looking up
// trip/deployment facts during consequence evaluation. Mutations only ever
// happen through registered operations, never through this interface.
//
// Lookups return domain.ErrNotFound for missing entities.
type FleetReader interface {
	TripByID(ctx context.Context, id int64) (*domain.Trip, error)
	TripByName(ctx context.Context, displayName string) (*domain.Trip, error)
	RouteByID(ctx context.Context, id int64) (*domain.Route, error)
	RouteByName(ctx context.Context, name string) (*domain.Route, error)
	PathByName(ctx context.Context, name string) (*domain.Path, error)
	VehicleByID(ctx context.Context, id int64) (*domain.Vehicle, error)

	// DeploymentForTrip returns the trip's active deployment, or
	// domain.ErrNotFound when the trip has no vehicle assigned.
	DeploymentForTrip(ctx context.Context, tripID int64) (*domain.Deployment, error)
}
