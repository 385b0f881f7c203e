package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"pigbot/internal/models"
	"pigbot/internal/services"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardRotationStaysInCatalog(t *testing.T) {
	t.Parallel()

	injector, _ := newTestContainer(t)
	reward, err := do.Invoke[*services.ServiceReward](injector)
	require.NoError(t, err)

	catalog := make(map[string]struct{}, len(models.ItemCatalog))
	for _, item := range models.ItemCatalog {
		catalog[item] = struct{}{}
	}

	assert.Contains(t, catalog, reward.Current())
	for i := 0; i < 50; i++ {
		assert.Contains(t, catalog, reward.Rotate())
	}
}

func TestConcurrentAwardsAllLand(t *testing.T) {
	t.Parallel()

	injector, _ := newTestContainer(t)
	reward, err := do.Invoke[*services.ServiceReward](injector)
	require.NoError(t, err)

	ctx := context.Background()
	const workers = 8

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reward.AwardItem(ctx, "alice", "Bacon")
		}()
	}
	wg.Wait()

	entries, err := reward.PeekInventory(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, workers, quantityOf(t, entries, "Bacon"))
}

func TestInventoryQueryCooldown(t *testing.T) {
	t.Parallel()

	injector, _ := newTestContainer(t)
	reward, err := do.Invoke[*services.ServiceReward](injector)
	require.NoError(t, err)

	ctx := context.Background()
	reward.AwardItem(ctx, "bob", "Wood")

	now := time.Now()

	status, err := reward.QueryInventory(ctx, "bob", now)
	require.NoError(t, err)
	assert.False(t, status.OnCooldown)
	assert.Equal(t, 1, totalQuantity(status.Entries))

	status, err = reward.QueryInventory(ctx, "bob", now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, status.OnCooldown)
	assert.Greater(t, status.Remaining, time.Duration(0))

	status, err = reward.QueryInventory(ctx, "bob", now.Add(25*time.Hour))
	require.NoError(t, err)
	assert.False(t, status.OnCooldown)
}

func TestInventoryQueryCooldownSurvivesNewAwards(t *testing.T) {
	t.Parallel()

	injector, _ := newTestContainer(t)
	reward, err := do.Invoke[*services.ServiceReward](injector)
	require.NoError(t, err)

	ctx := context.Background()
	reward.AwardItem(ctx, "carol", "Stone")

	now := time.Now()

	_, err = reward.QueryInventory(ctx, "carol", now)
	require.NoError(t, err)

	// an award between queries must not reset the window
	reward.AwardItem(ctx, "carol", "Iron")

	status, err := reward.QueryInventory(ctx, "carol", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, status.OnCooldown)
}

func TestInventoryStatusRender(t *testing.T) {
	t.Parallel()

	onCooldown := &services.InventoryStatus{OnCooldown: true, Remaining: 90 * time.Minute}
	assert.Equal(t, "@dave, the trough opens again in 1h 30m. Patience.", onCooldown.Render("dave"))

	empty := &services.InventoryStatus{}
	assert.Contains(t, empty.Render("dave"), "satchel is empty")

	full := &services.InventoryStatus{Entries: []models.InventoryEntry{
		{Item: "Wood", Quantity: 3},
		{Item: "Bacon", Quantity: 1},
	}}
	assert.Equal(t, "@dave, your inventory: Wood x3, Bacon x1.", full.Render("dave"))
}
