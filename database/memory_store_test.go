package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tranmq/docrag-be/database"
	"github.com/tranmq/docrag-be/types"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := database.NewMemoryStore()
	ctx := context.Background()

	chunk := types.Chunk{
		Kind:    types.ChunkKindTable,
		Content: "a | b | c",
		Metadata: types.DocumentMetadata{
			Title:   "report",
			PageNum: 3,
		},
	}
	require.NoError(t, store.Set(ctx, "id-1", chunk))

	got, ok, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, chunk, got)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStoreMissingID(t *testing.T) {
	store := database.NewMemoryStore()

	_, ok, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}
