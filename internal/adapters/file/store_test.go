package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/ports"
)

func TestFileStoreContract(t *testing.T) {
	ports.RunSessionStoreContract(t, New(t.TempDir()))
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	sess := domain.NewSession("s-1", "ops", "trips")
	sess.Suspend(&domain.PendingAction{
		Operation:   "remove_vehicle_from_trip",
		Params:      map[string]any{"trip_id": float64(50)},
		Fingerprint: domain.Fingerprint("remove_vehicle_from_trip", map[string]any{"trip_id": float64(50)}),
	})
	require.NoError(t, New(dir).Save(ctx, sess))

	// A fresh store over the same directory sees the suspended session.
	loaded, err := New(dir).Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingConfirmation, loaded.Status)
	require.NotNil(t, loaded.Pending)
	assert.Equal(t, sess.Pending.Fingerprint, loaded.Pending.Fingerprint)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(ctx, domain.NewSession("s-1", "", "")))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s-1.json", entries[0].Name())
}

func TestFileStoreRejectsEmptyID(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, &domain.Session{}))
	_, err := store.Load(ctx, "")
	assert.Error(t, err)
}

func TestFileStoreListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("s-1", "", "")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s-1"}, ids)
}

func TestFileStoreRejectsTraversalIDs(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "sessions")
	store := New(dir)
	ctx := context.Background()

	for _, id := range []string{"../escape", "..", "a/b", `a\b`, "x:y"} {
		sess := domain.NewSession(id, "ops", "trips")
		assert.Error(t, store.Save(ctx, sess), "id %q", id)

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "id %q", id)
	}

	// Nothing escaped the session directory.
	_, err := os.Stat(filepath.Join(parent, "escape.json"))
	assert.True(t, os.IsNotExist(err))
}
