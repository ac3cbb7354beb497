package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviops/movi/pkg/domain"
)

// RunSessionStoreContract verifies that a SessionStore implementation
// adheres to the interface contract. Every store adapter runs this suite.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-" + time.Now().Format("20060102150405.000")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID, "ops-team", "busDashboard")
		session.Status = domain.StatusAwaitingConfirmation
		session.Pending = &domain.PendingAction{
			Operation:   "remove_vehicle_from_trip",
			Params:      map[string]any{"trip_id": float64(7)},
			Fingerprint: domain.Fingerprint("remove_vehicle_from_trip", map[string]any{"trip_id": float64(7)}),
			Risk:        domain.RiskHigh,
			Message:     "confirm?",
			IssuedAt:    time.Now().UTC(),
		}

		require.NoError(t, store.Save(ctx, session))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, loaded.ID)
		assert.Equal(t, domain.StatusAwaitingConfirmation, loaded.Status)
		require.NotNil(t, loaded.Pending, "pending action must survive a round trip")
		assert.Equal(t, session.Pending.Fingerprint, loaded.Pending.Fingerprint)
		assert.True(t, loaded.Active)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Turn history survives", func(t *testing.T) {
		session := domain.NewSession(sessionID+"-hist", "", "")
		session.AppendTurn(&domain.TurnState{
			TurnID:           "t1",
			SessionID:        session.ID,
			Input:            "how many vehicles are unassigned",
			Response:         "3 vehicles are unassigned.",
			ResponseCategory: domain.ResponseSuccess,
		})
		require.NoError(t, store.Save(ctx, session))
		defer func() { _ = store.Delete(ctx, session.ID) }()

		loaded, err := store.Load(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Turns, 1)
		assert.Equal(t, domain.ResponseSuccess, loaded.Turns[0].Category)
		require.NotNil(t, loaded.Current)
		assert.Equal(t, "t1", loaded.Current.TurnID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID, "", "")))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, domain.NewSession(id1, "", "")))
		require.NoError(t, store.Save(ctx, domain.NewSession(id2, "", "")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})

	t.Run("PurgeExpired", func(t *testing.T) {
		stale := domain.NewSession(sessionID+"-stale", "", "")
		stale.LastActivityAt = time.Now().Add(-48 * time.Hour)
		fresh := domain.NewSession(sessionID+"-fresh", "", "")
		require.NoError(t, store.Save(ctx, stale))
		require.NoError(t, store.Save(ctx, fresh))
		defer func() {
			_ = store.Delete(ctx, stale.ID)
			_ = store.Delete(ctx, fresh.ID)
		}()

		_, err := store.PurgeExpired(ctx, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)

		_, err = store.Load(ctx, fresh.ID)
		assert.NoError(t, err, "fresh session must survive a purge")
	})
}
