package userrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/mood-journal/internal/domain/auth"
)

func TestMemoryRepository_CreateAndLookup(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user, err := repo.Create(ctx, "writer", "hash")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)

	_, err = repo.Create(ctx, "writer", "other")
	require.ErrorIs(t, err, auth.ErrUsernameExists)

	got, found, err := repo.GetByUsername(ctx, "writer")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, user, got)

	_, found, err = repo.GetByID(ctx, 42)
	require.NoError(t, err)
	require.False(t, found)
}
