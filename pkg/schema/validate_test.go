package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_RequiredAndOptional(t *testing.T) {
	s := Schema{
		"trip_id": ID(),
		"reason":  Optional(String()),
	}

	assert.NoError(t, Validate(s, map[string]any{"trip_id": float64(3)}))
	assert.NoError(t, Validate(s, map[string]any{"trip_id": 3, "reason": "double booking"}))

	err := Validate(s, map[string]any{})
	require.Error(t, err)
	assert.Len(t, ValidationErrors(err), 1)
}

func TestValidate_AggregatesAllFailures(t *testing.T) {
	s := Schema{
		"name":      String(),
		"latitude":  Latitude(),
		"longitude": Longitude(),
	}

	err := Validate(s, map[string]any{
		"name":      "",
		"latitude":  95.0,
		"longitude": -200.0,
	})
	require.Error(t, err)
	assert.Len(t, ValidationErrors(err), 3)
}

func TestValidate_IgnoresUnknownFields(t *testing.T) {
	s := Schema{"trip_id": ID()}
	assert.NoError(t, Validate(s, map[string]any{"trip_id": 1, "page": "busDashboard"}))
}

func TestID(t *testing.T) {
	assert.NoError(t, ID().Validate(7))
	assert.NoError(t, ID().Validate(float64(7))) // JSON numbers
	assert.Error(t, ID().Validate(0))
	assert.Error(t, ID().Validate(-3))
	assert.Error(t, ID().Validate(2.5))
	assert.Error(t, ID().Validate("7x"))
}

func TestTimeOfDay(t *testing.T) {
	assert.NoError(t, TimeOfDay().Validate("00:01"))
	assert.NoError(t, TimeOfDay().Validate("23:59"))
	assert.Error(t, TimeOfDay().Validate("24:00"))
	assert.Error(t, TimeOfDay().Validate("9:30"))
	assert.Error(t, TimeOfDay().Validate(930))
}

func TestSlice_MinimumLength(t *testing.T) {
	stops := Slice(ID(), 2)
	assert.Error(t, stops.Validate([]any{float64(1)}))
	assert.NoError(t, stops.Validate([]any{float64(1), float64(2)}))
	assert.Error(t, stops.Validate([]any{float64(1), "two"}))
}

func TestEnum(t *testing.T) {
	dir := Enum("direction", "UP", "DOWN")
	assert.NoError(t, dir.Validate("UP"))
	assert.Error(t, dir.Validate("SIDEWAYS"))
}
