package operations

import (
	"context"
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/ports"
	"github.com/moviops/movi/pkg/schema"
)

// Store is everything the operations need from the fleet database. Each
// mutation method is one bounded transaction; nothing here spans a
// pipeline suspension point.
type Store interface {
	ports.FleetReader

	UnassignedVehicles(ctx context.Context) ([]domain.Vehicle, error)
	StopsForPath(ctx context.Context, pathID int64) ([]domain.Stop, error)
	RoutesForPath(ctx context.Context, pathID int64) ([]domain.Route, error)
	DriverByID(ctx context.Context, id int64) (*domain.Driver, error)

	CreateStop(ctx context.Context, stop *domain.Stop) error
	CreatePath(ctx context.Context, path *domain.Path) error
	CreateRoute(ctx context.Context, route *domain.Route) error
	CreateDeployment(ctx context.Context, d *domain.Deployment) error

	// DeleteDeploymentForTrip removes the trip's deployment and returns
	// it, or domain.ErrNotFound when the trip has none.
	DeleteDeploymentForTrip(ctx context.Context, tripID int64) (*domain.Deployment, error)
}

// Definition describes one operation in the closed vocabulary.
type Definition struct {
	Name        string
	Description string
	Category    domain.Category
	// RequiresConsequenceCheck flags the class of operations that detach
	// a deployment from a trip carrying bookings.
	RequiresConsequenceCheck bool
	// Idempotent gates the executor's retry: creation operations are not
	// safely retryable, reads and deletes-by-key are.
	Idempotent bool
	Schema     schema.Schema

	run func(ctx context.Context, params map[string]any) Result
}

// Registry is the start-time-resolved dispatch table.
type Registry struct {
	store Store
	ops   map[string]Definition
}

// NewRegistry builds the registry with the full operation vocabulary.
func NewRegistry(store Store) *Registry {
	r := &Registry{store: store, ops: make(map[string]Definition)}
	for _, def := range []Definition{
		r.getUnassignedVehiclesCount(),
		r.getTripStatus(),
		r.listStopsForPath(),
		r.listRoutesByPath(),
		r.assignVehicleToTrip(),
		r.createStop(),
		r.createPath(),
		r.createRoute(),
		r.removeVehicleFromTrip(),
	} {
		r.ops[def.Name] = def
	}
	return r
}

// Lookup returns the definition for an operation name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	def, ok := r.ops[name]
	return def, ok
}

// Definitions returns the vocabulary sorted by name, for prompt building
// and introspection.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.ops))
	for _, def := range r.ops {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Execute validates params against the operation's schema and runs it
// once. Retry, if any, is the executor's concern.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) Result {
	def, ok := r.ops[name]
	if !ok {
		return Fail(fmt.Errorf("%w: %s", domain.ErrOperationNotFound, name),
			fmt.Sprintf("I don't know how to perform %q.", name))
	}
	if err := schema.Validate(def.Schema, params); err != nil {
		return Fail(fmt.Errorf("%w: %v", domain.ErrInvalidParams, err),
			"The request is missing or has invalid parameters: "+err.Error())
	}
	return def.run(ctx, params)
}

// decode maps loosely-typed classifier params onto a typed request struct.
// JSON numbers arrive as float64; weak typing converts them to the int64
// fields the store expects.
func decode(params map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	return nil
}
