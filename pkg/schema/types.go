package schema

import (
	"fmt"
	"reflect"
	"regexp"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g. "string", "id").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in types ---

// StringType validates non-empty string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if s == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

// IntType validates integer values. JSON decoding produces float64, so
// whole-number floats are accepted.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got fractional number")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates numeric values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected number, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elem    Type
	minimum int
}

func (t *SliceType) Name() string { return fmt.Sprintf("[%s]", t.elem.Name()) }

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	if rv.Len() < t.minimum {
		return fmt.Errorf("needs at least %d elements, got %d", t.minimum, rv.Len())
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// OptionalType wraps another type; Validate is only invoked for fields that
// are present, so the wrapper itself just delegates. Its presence in a
// Schema marks the field non-required.
type OptionalType struct {
	inner Type
}

func (t *OptionalType) Name() string { return t.inner.Name() + "?" }

func (t *OptionalType) Validate(value any) error { return t.inner.Validate(value) }

// --- Domain validators ---

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// IDType validates positive integer identifiers.
type IDType struct{}

func (t *IDType) Name() string { return "id" }

func (t *IDType) Validate(value any) error {
	n, ok := asNumber(value)
	if !ok {
		return fmt.Errorf("expected numeric id, got %T", value)
	}
	if n != float64(int64(n)) || n <= 0 {
		return fmt.Errorf("expected positive integer id, got %v", value)
	}
	return nil
}

var shiftTimePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// TimeOfDayType validates HH:MM strings (00:00 .. 23:59).
type TimeOfDayType struct{}

func (t *TimeOfDayType) Name() string { return "time_of_day" }

func (t *TimeOfDayType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected HH:MM string, got %T", value)
	}
	if !shiftTimePattern.MatchString(s) {
		return fmt.Errorf("expected HH:MM, got %q", s)
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	if hh > 23 || mm > 59 {
		return fmt.Errorf("time %q out of range", s)
	}
	return nil
}

// RangeType validates a numeric value within [min, max].
type RangeType struct {
	name     string
	min, max float64
}

func (t *RangeType) Name() string { return t.name }

func (t *RangeType) Validate(value any) error {
	n, ok := asNumber(value)
	if !ok {
		return fmt.Errorf("expected number, got %T", value)
	}
	if n < t.min || n > t.max {
		return fmt.Errorf("%s must be between %v and %v, got %v", t.name, t.min, t.max, n)
	}
	return nil
}

// EnumType validates membership of a fixed string set.
type EnumType struct {
	name    string
	allowed []string
}

func (t *EnumType) Name() string { return t.name }

func (t *EnumType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	for _, a := range t.allowed {
		if s == a {
			return nil
		}
	}
	return fmt.Errorf("%q is not one of %v", s, t.allowed)
}

// --- Factory functions ---

// String creates a non-empty string validator.
func String() Type { return &StringType{} }

// Int creates an integer validator.
func Int() Type { return &IntType{} }

// Float creates a numeric validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean validator.
func Bool() Type { return &BoolType{} }

// Slice creates a slice validator with a minimum length.
func Slice(elem Type, minimum int) Type { return &SliceType{elem: elem, minimum: minimum} }

// Optional marks a field as non-required.
func Optional(inner Type) Type { return &OptionalType{inner: inner} }

// ID creates a positive integer identifier validator.
func ID() Type { return &IDType{} }

// TimeOfDay creates an HH:MM validator.
func TimeOfDay() Type { return &TimeOfDayType{} }

// Latitude validates degrees in [-90, 90].
func Latitude() Type { return &RangeType{name: "latitude", min: -90, max: 90} }

// Longitude validates degrees in [-180, 180].
func Longitude() Type { return &RangeType{name: "longitude", min: -180, max: 180} }

// Enum validates membership of a fixed string set.
func Enum(name string, allowed ...string) Type { return &EnumType{name: name, allowed: allowed} }
