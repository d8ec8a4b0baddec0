// Package tests holds reusable contract suites for port implementations.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/grammar"
	"github.com/aretw0/beatbox/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCheckpointStoreContract verifies that a CheckpointStore adheres to the port contract.
func RunCheckpointStoreContract(t *testing.T, store ports.CheckpointStore) {
	t.Helper()
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405")

	sample := func(id string) *domain.Checkpoint {
		return &domain.Checkpoint{
			ID:          id,
			Root:        "L",
			Stack:       []domain.Position{0, 3, domain.Begin},
			Steps:       12,
			Emitted:     4,
			Fingerprint: "abc123",
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		cp := sample(id)
		require.NoError(t, store.Save(ctx, id, cp), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, cp, loaded)
	})

	t.Run("Stored copy is isolated", func(t *testing.T) {
		cp := sample(id)
		require.NoError(t, store.Save(ctx, id, cp))
		cp.Stack[0] = 99

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		loaded.Stack[1] = 42

		again, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []domain.Position{0, 3, domain.Begin}, again.Stack)
	})

	t.Run("Sentinels survive", func(t *testing.T) {
		done := sample(id + "-done")
		done.Stack = []domain.Position{domain.End}
		require.NoError(t, store.Save(ctx, done.ID, done))
		defer func() { _ = store.Delete(ctx, done.ID) }()

		loaded, err := store.Load(ctx, done.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Done())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, sample(id)))
		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound, "Load after Delete should return ErrCheckpointNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, id1, sample(id1)))
		require.NoError(t, store.Save(ctx, id2, sample(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunRuleLoaderContract verifies that a RuleLoader produces the expected rule table.
// want maps rule names to their replacement strings.
func RunRuleLoaderContract(t *testing.T, loader ports.RuleLoader, want map[string]string) {
	t.Helper()

	t.Run("Load", func(t *testing.T) {
		table, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, want, table.Rules())
	})

	t.Run("Load is repeatable", func(t *testing.T) {
		a, err := loader.Load()
		require.NoError(t, err)
		b, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	})

	t.Run("Options are forwarded", func(t *testing.T) {
		table, err := loader.Load(grammar.WithImplicitEmpty())
		require.NoError(t, err)
		assert.True(t, table.Lenient())
	})

	t.Run("Source", func(t *testing.T) {
		assert.NotEmpty(t, loader.Source())
	})
}
