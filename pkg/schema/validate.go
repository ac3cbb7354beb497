package schema

// Schema maps parameter names to their expected types.
// Example: {"trip_id": ID(), "shift_time": TimeOfDay()}
type Schema map[string]Type

// Validate checks data against the schema. Fields wrapped in Optional may
// be absent; everything else is required. Unknown fields in data are
// ignored: the classifier is allowed to pass through extra context, the
// operation simply never reads it.
//
// Returns an AggregateError carrying every failure found.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	var errs []error

	for field, typ := range schema {
		value, exists := data[field]
		if !exists {
			if _, optional := typ.(*OptionalType); optional {
				continue
			}
			errs = append(errs, &ValidationError{Key: field, Reason: "required"})
			continue
		}

		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    field,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
