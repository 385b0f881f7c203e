package datastore

import (
	"context"
	"time"

	"pigbot/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableEngagementFlag(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.EngagementFlag)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// FlagEngagementGoal records that a post reached the engagement goal. Returns
// true only for the call that created the flag; later callers (or a racing
// cycle) get false and must not distribute rewards again.
func FlagEngagementGoal(ctx context.Context, db *bun.DB, postID string, achievedAt time.Time) (bool, error) {
	flag := &models.EngagementFlag{
		PostID:     postID,
		AchievedAt: achievedAt,
	}

	var created bool
	err := WithWriteRetry(ctx, func() error {
		res, err := db.NewInsert().Model(flag).On("CONFLICT (post_id) DO NOTHING").Exec(ctx)
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}

		created = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func IsEngagementFlagged(ctx context.Context, db *bun.DB, postID string) (bool, error) {
	return db.NewSelect().Model((*models.EngagementFlag)(nil)).
		Where("post_id = ?", postID).
		Exists(ctx)
}
