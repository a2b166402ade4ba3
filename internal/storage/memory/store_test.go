package memory

import (
	"context"
	"testing"

	"github.com/jaminalder/tictactoe-rounds/internal/domain"
	"github.com/jaminalder/tictactoe-rounds/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func put(m domain.Match) storage.UpdateFunc {
	return func(domain.Match, bool) (domain.Match, bool) { return m, true }
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	// Given: an empty store
	_, err := s.Load(ctx, "a")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	// When: storing a snapshot
	m, _ := domain.New().ApplyMove(4)
	require.NoError(t, s.Update(ctx, "a", put(m)))

	// Then: it loads back unchanged
	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, m, got)

	// And: changing the loaded copy does not touch the stored one
	got.Board[0] = domain.O
	again, _ := s.Load(ctx, "a")
	assert.Equal(t, domain.Empty, again.Board[0])

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Load(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	require.NoError(t, s.Delete(ctx, "missing"))
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	s := New()

	// Given: no snapshot yet
	var sawFound bool
	require.NoError(t, s.Update(ctx, "a", func(m domain.Match, found bool) (domain.Match, bool) {
		sawFound = found
		return m, false
	}))

	// Then: fn saw nothing and declining to write stores nothing
	assert.False(t, sawFound)
	_, err := s.Load(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	// When: fn builds on the stored snapshot
	require.NoError(t, s.Update(ctx, "a", put(domain.New())))
	require.NoError(t, s.Update(ctx, "a", func(m domain.Match, found bool) (domain.Match, bool) {
		require.True(t, found)
		return m.ApplyMove(0)
	}))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.X, got.Board[0])
	assert.Equal(t, domain.O, got.Turn)
}
