package datastore_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"pigbot/internal/datastore"
	"pigbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+t.TempDir()+"/test.db?_pragma=busy_timeout(10000)")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, datastore.CreateTableProcessedMention(ctx, db))
	require.NoError(t, datastore.CreateTableInventory(ctx, db))
	require.NoError(t, datastore.CreateTableEngagementFlag(ctx, db))
	require.NoError(t, datastore.CreateTableCachedPost(ctx, db))
	require.NoError(t, datastore.CreateTableConfig(ctx, db))

	return db
}

func TestMarkMentionProcessedIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	processed, err := datastore.IsMentionProcessed(ctx, db, "m1")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, datastore.MarkMentionProcessed(ctx, db, "m1"))
	require.NoError(t, datastore.MarkMentionProcessed(ctx, db, "m1"))

	processed, err = datastore.IsMentionProcessed(ctx, db, "m1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestIncrementInventoryConcurrent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	const workers = 8

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, datastore.IncrementInventory(ctx, db, "alice", "Wood", 1))
		}()
	}
	wg.Wait()

	entries, err := datastore.GetUserInventory(ctx, db, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, workers, entries[0].Quantity)
}

func TestIncrementInventoryCreatesThenAdds(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, datastore.IncrementInventory(ctx, db, "bob", "Bacon", 1))
	require.NoError(t, datastore.IncrementInventory(ctx, db, "bob", "Bacon", 2))
	require.NoError(t, datastore.IncrementInventory(ctx, db, "bob", "Stone", 1))

	entries, err := datastore.GetUserInventory(ctx, db, "bob")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// ordered by item
	assert.Equal(t, "Bacon", entries[0].Item)
	assert.Equal(t, 3, entries[0].Quantity)
	assert.Equal(t, "Stone", entries[1].Item)
	assert.Equal(t, 1, entries[1].Quantity)
}

func TestFlagEngagementGoalFirstWriterWins(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	created, err := datastore.FlagEngagementGoal(ctx, db, "p1", time.Now())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = datastore.FlagEngagementGoal(ctx, db, "p1", time.Now())
	require.NoError(t, err)
	assert.False(t, created)

	flagged, err := datastore.IsEngagementFlagged(ctx, db, "p1")
	require.NoError(t, err)
	assert.True(t, flagged)
}

func TestUpsertCachedPostsCountsOnlyNew(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	posts := []models.CachedPost{
		{PostID: "p1", Username: "alice", Text: "one", CreatedAt: time.Now()},
		{PostID: "p2", Username: "alice", Text: "two", CreatedAt: time.Now()},
	}

	inserted, err := datastore.UpsertCachedPosts(ctx, db, posts)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	again := append(posts, models.CachedPost{
		PostID: "p3", Username: "alice", Text: "three", CreatedAt: time.Now(),
	})

	inserted, err = datastore.UpsertCachedPosts(ctx, db, again)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	total, err := datastore.CountCachedPosts(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestTouchLastCheckedUpdatesAllRows(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, datastore.IncrementInventory(ctx, db, "carol", "Iron", 1))
	require.NoError(t, datastore.IncrementInventory(ctx, db, "carol", "Water", 1))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, datastore.TouchLastChecked(ctx, db, "carol", now))

	entries, err := datastore.GetUserInventory(ctx, db, "carol")
	require.NoError(t, err)
	for _, entry := range entries {
		require.NotNil(t, entry.LastChecked)
		assert.True(t, entry.LastChecked.Equal(now))
	}
}
