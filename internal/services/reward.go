package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"pigbot/internal/datastore"
	"pigbot/internal/models"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/mroth/weightedrand/v2"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ServiceReward owns the reward catalog, the rotating current reward and all
// inventory mutation. The current reward lives on this handle, not in a
// package variable; a restart re-rolls it, which is fine because reward
// identity only matters at the moment of award.
type ServiceReward struct {
	db     *bun.DB
	rs     *redsync.Redsync
	logger *zap.Logger

	chooser *weightedrand.Chooser[string, int]

	mu      sync.Mutex
	current string
}

func NewServiceReward(container *do.Injector) (*ServiceReward, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil {
		return nil, err
	}

	choices := make([]weightedrand.Choice[string, int], 0, len(models.ItemCatalog))
	for _, item := range models.ItemCatalog {
		choices = append(choices, weightedrand.NewChoice(item, 1))
	}

	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return nil, err
	}

	service := &ServiceReward{
		db:      db,
		rs:      rs,
		logger:  logger,
		chooser: chooser,
	}
	service.current = chooser.Pick()

	return service, nil
}

func (service *ServiceReward) Current() string {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.current
}

// Rotate picks the next reward independently at random. Repeats are allowed;
// there is no avoid-last-value rule.
func (service *ServiceReward) Rotate() string {
	service.mu.Lock()
	service.current = service.chooser.Pick()
	next := service.current
	service.mu.Unlock()

	service.logger.Info("reward rotated", zap.String("item", next))
	return next
}

// Award credits the current reward to username. It never propagates failure:
// a reply already sent must not be undone by a reward that could not be
// written, so contention exhaustion is logged and dropped here.
func (service *ServiceReward) Award(ctx context.Context, username string) {
	service.AwardItem(ctx, username, service.Current())
}

// AwardItem is Award with an explicit item, for callers that captured the
// reward before a rotation (the engagement poller).
func (service *ServiceReward) AwardItem(ctx context.Context, username string, item string) {
	err := datastore.IncrementInventory(ctx, service.db, username, item, 1)
	if err != nil {
		service.logger.Error("award failed",
			zap.String("username", username),
			zap.String("item", item),
			zap.Error(err))
		return
	}

	service.logger.Info("awarded item",
		zap.String("username", username),
		zap.String("item", item))
}

type InventoryStatus struct {
	OnCooldown bool
	Remaining  time.Duration
	Entries    []models.InventoryEntry
}

// QueryInventory reports a user's items at most once per cooldown window.
// The read of last_checked and the conditional touch run under a per-user
// mutex and a single storage transaction, so two concurrent queries cannot
// both see an expired cooldown.
func (service *ServiceReward) QueryInventory(ctx context.Context, username string, now time.Time) (*InventoryStatus, error) {
	mutex := service.rs.NewMutex(LockKeyInventoryQuery(username))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrInventoryLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	var status *InventoryStatus
	err := datastore.WithWriteRetry(ctx, func() error {
		return service.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			entries, err := datastore.GetUserInventory(ctx, tx, username)
			if err != nil {
				return err
			}

			if last := latestChecked(entries); last != nil {
				if remaining := last.Add(INVENTORY_COOLDOWN).Sub(now); remaining > 0 {
					status = &InventoryStatus{OnCooldown: true, Remaining: remaining}
					return nil
				}
			}

			if err := datastore.TouchLastChecked(ctx, tx, username, now); err != nil {
				return err
			}

			status = &InventoryStatus{Entries: entries}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return status, nil
}

// PeekInventory is the read-only view for the ops API; it neither checks nor
// consumes the cooldown.
func (service *ServiceReward) PeekInventory(ctx context.Context, username string) ([]models.InventoryEntry, error) {
	return datastore.GetUserInventory(ctx, service.db, username)
}

func latestChecked(entries []models.InventoryEntry) *time.Time {
	var latest *time.Time
	for i := range entries {
		checked := entries[i].LastChecked
		if checked == nil {
			continue
		}
		if latest == nil || checked.After(*latest) {
			latest = checked
		}
	}
	return latest
}

func (status *InventoryStatus) Render(username string) string {
	if status.OnCooldown {
		hours := int(status.Remaining.Hours())
		minutes := int(status.Remaining.Minutes()) % 60
		return fmt.Sprintf("@%s, the trough opens again in %dh %dm. Patience.", username, hours, minutes)
	}

	if len(status.Entries) == 0 {
		return fmt.Sprintf("@%s, your satchel is empty. Engage with the herd and $PIG will provide.", username)
	}

	parts := make([]string, 0, len(status.Entries))
	for _, entry := range status.Entries {
		parts = append(parts, fmt.Sprintf("%s x%d", entry.Item, entry.Quantity))
	}

	return fmt.Sprintf("@%s, your inventory: %s.", username, strings.Join(parts, ", "))
}
