package datastore

import (
	"context"
	"time"

	"pigbot/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableInventory(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.InventoryEntry)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.InventoryEntry)(nil)).
		Index("index_inventory_username_item").
		IfNotExists().Unique().Column("username", "item").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// IncrementInventory atomically adds amount to the (username, item) counter,
// creating the row when absent. This is the only code path that mutates
// quantity; quantity is never read-modified in application code.
func IncrementInventory(ctx context.Context, db *bun.DB, username string, item string, amount int) error {
	entry := &models.InventoryEntry{
		Username: username,
		Item:     item,
		Quantity: amount,
	}

	return WithWriteRetry(ctx, func() error {
		_, err := db.NewInsert().Model(entry).
			On("CONFLICT (username, item) DO UPDATE").
			Set("quantity = inventory_entry.quantity + EXCLUDED.quantity").
			Exec(ctx)
		return err
	})
}

// GetUserInventory accepts bun.IDB so the reward ledger can run it inside the
// same transaction as TouchLastChecked.
func GetUserInventory(ctx context.Context, db bun.IDB, username string) ([]models.InventoryEntry, error) {
	var entries []models.InventoryEntry
	err := db.NewSelect().Model(&entries).
		Where("username = ?", username).
		Order("item ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func TouchLastChecked(ctx context.Context, db bun.IDB, username string, now time.Time) error {
	_, err := db.NewUpdate().Model((*models.InventoryEntry)(nil)).
		Set("last_checked = ?", now).
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}
