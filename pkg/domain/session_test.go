package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_KeyOrderIndependent(t *testing.T) {
	a := Fingerprint("remove_vehicle_from_trip", map[string]any{"trip_id": 1, "force": true})
	b := Fingerprint("remove_vehicle_from_trip", map[string]any{"force": true, "trip_id": 1})
	assert.Equal(t, a, b)

	c := Fingerprint("remove_vehicle_from_trip", map[string]any{"trip_id": 2})
	assert.NotEqual(t, a, c)
}

func TestTurnState_SetRisk(t *testing.T) {
	st := &TurnState{}

	st.SetRisk(RiskHigh)
	assert.Equal(t, RiskHigh, st.Risk)
	assert.True(t, st.ConfirmationRequired)

	st.SetRisk(RiskLow)
	assert.Equal(t, RiskLow, st.Risk)
	assert.False(t, st.ConfirmationRequired)
}

func TestTurnState_FirstFailureWins(t *testing.T) {
	st := &TurnState{}
	st.Fail(StageClassify, errors.New("bad intent"))
	st.Fail(StageExecute, errors.New("later"))

	assert.Equal(t, StageClassify, st.FailedStage)
	assert.Equal(t, "bad intent", st.Err)
}

func TestSession_SuspendResolve(t *testing.T) {
	s := NewSession("s1", "ops", "busDashboard")
	assert.Equal(t, StatusIdle, s.Status)
	assert.True(t, s.Active)

	s.Suspend(&PendingAction{Operation: "remove_vehicle_from_trip"})
	assert.Equal(t, StatusAwaitingConfirmation, s.Status)
	assert.NotNil(t, s.Pending)

	s.Resolve(StatusCompleted)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Nil(t, s.Pending)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(ErrInvalidParams))
	assert.True(t, IsRetryable(Transient(errors.New("database is locked"))))
}
