package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Run("orders by created_at before id", func(t *testing.T) {
		store := newMemoryStore()
		ctx := context.Background()

		clock := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return clock }
		_, err := store.Insert(ctx, "Newer", "Content", "alice")
		require.NoError(t, err)

		clock = clock.Add(-time.Hour)
		_, err = store.Insert(ctx, "Older", "Content", "alice")
		require.NoError(t, err)

		posts, err := store.GetPage(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "Newer", posts[0].Title)
	})

	t.Run("update refreshes updated_at", func(t *testing.T) {
		store := newMemoryStore()
		ctx := context.Background()

		clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return clock }
		id, err := store.Insert(ctx, "Title", "Content", "alice")
		require.NoError(t, err)

		clock = clock.Add(time.Minute)
		require.NoError(t, store.Update(ctx, id, "Title", "Edited", "alice"))

		post, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, post.UpdatedAt.After(post.CreatedAt))
	})

	t.Run("returned posts are copies", func(t *testing.T) {
		store := newMemoryStore()
		ctx := context.Background()

		id, err := store.Insert(ctx, "Title", "Content", "alice")
		require.NoError(t, err)

		post, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		post.Title = "Mutated"

		again, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Title", again.Title)
	})

	t.Run("offset past the end", func(t *testing.T) {
		store := newMemoryStore()
		ctx := context.Background()

		_, err := store.Insert(ctx, "Only", "Content", "alice")
		require.NoError(t, err)

		posts, err := store.GetPage(ctx, 5, 10)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("negative offset starts at the first post", func(t *testing.T) {
		store := newMemoryStore()
		ctx := context.Background()

		_, err := store.Insert(ctx, "Only", "Content", "alice")
		require.NoError(t, err)

		posts, err := store.GetPage(ctx, -16, 10)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, "Only", posts[0].Title)

		posts, err = store.SearchPage(ctx, "Only", -1, 10)
		require.NoError(t, err)
		assert.Len(t, posts, 1)
	})

	t.Run("Close", func(t *testing.T) {
		store := newMemoryStore()
		ctx := context.Background()

		_, err := store.Insert(ctx, "Title", "Content", "alice")
		require.NoError(t, err)

		assert.NoError(t, store.Close())

		_, err = store.Count(ctx)
		assert.ErrorIs(t, err, ErrStoreClosed)
		_, err = store.Insert(ctx, "Title", "Content", "alice")
		assert.ErrorIs(t, err, ErrStoreClosed)
	})
}
