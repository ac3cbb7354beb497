package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviops/movi/internal/adapters/memory"
	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/ports"
)

func TestMemoryStoreContract(t *testing.T) {
	ports.RunSessionStoreContract(t, memory.New())
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	sess := domain.NewSession("iso", "ops@example.com", "trips")
	require.NoError(t, store.Save(ctx, sess))

	// Mutating the caller's copy after Save must not leak into the store.
	sess.Status = domain.StatusFailed

	loaded, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, loaded.Status)

	// Nor must mutating a loaded copy.
	loaded.PageContext = "mutated"
	again, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, "trips", again.PageContext)
}

func TestMemoryStorePurgeCutoff(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	old := domain.NewSession("old", "", "")
	old.LastActivityAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Save(ctx, old))
	require.NoError(t, store.Save(ctx, domain.NewSession("new", "", "")))

	n, err := store.PurgeExpired(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, ids)
}
