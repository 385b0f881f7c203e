package datastore

import (
	"context"

	"pigbot/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableCachedPost(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.CachedPost)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.CachedPost)(nil)).
		Index("index_cached_post_username").
		IfNotExists().Column("username").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// UpsertCachedPosts stores fetched posts, skipping ids already present, and
// reports how many were new.
func UpsertCachedPosts(ctx context.Context, db *bun.DB, posts []models.CachedPost) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	var inserted int64
	err := WithWriteRetry(ctx, func() error {
		res, err := db.NewInsert().Model(&posts).On("CONFLICT (post_id) DO NOTHING").Exec(ctx)
		if err != nil {
			return err
		}

		inserted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}

	return int(inserted), nil
}

func CountCachedPosts(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.CachedPost)(nil)).Count(ctx)
}

func GetCachedPostTexts(ctx context.Context, db *bun.DB, username string, limit int) ([]string, error) {
	var texts []string
	err := db.NewSelect().Model((*models.CachedPost)(nil)).
		Column("text").
		Where("username = ?", username).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx, &texts)
	if err != nil {
		return nil, err
	}

	return texts, nil
}
