// Package schema validates operation parameters before dispatch.
//
// Every registered operation declares a Schema mapping parameter names to
// types; the registry validates the classifier's parameter map against it
// before the operation runs, never after. Validation failures are
// aggregated so the formatter can report every problem in one response.
//
//	params := schema.Schema{
//	    "trip_id":    schema.ID(),
//	    "vehicle_id": schema.ID(),
//	    "driver_id":  schema.ID(),
//	}
//
//	if err := schema.Validate(params, args); err != nil {
//	    // terminal: blocks before any side effect
//	}
//
// Besides the basic types there are domain validators for the shapes the
// fleet operations need: positive IDs, HH:MM shift times and geographic
// coordinates. Optional wraps any type to make the field non-required.
package schema
