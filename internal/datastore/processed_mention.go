package datastore

import (
	"context"
	"time"

	"pigbot/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableProcessedMention(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.ProcessedMention)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// MarkMentionProcessed records a mention id as handled. Re-marking an already
// recorded id is a no-op, so platform re-delivery cannot double-process.
func MarkMentionProcessed(ctx context.Context, db *bun.DB, mentionID string) error {
	record := &models.ProcessedMention{
		MentionID:   mentionID,
		ProcessedAt: time.Now(),
	}

	return WithWriteRetry(ctx, func() error {
		_, err := db.NewInsert().Model(record).On("CONFLICT (mention_id) DO NOTHING").Exec(ctx)
		return err
	})
}

func IsMentionProcessed(ctx context.Context, db *bun.DB, mentionID string) (bool, error) {
	return db.NewSelect().Model((*models.ProcessedMention)(nil)).
		Where("mention_id = ?", mentionID).
		Exists(ctx)
}
