package services

import (
	"context"
	"strings"

	"pigbot/internal/datastore"
	"pigbot/internal/interfaces"
	"pigbot/internal/models"

	"github.com/samber/do"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ServiceCorpus keeps a local corpus of tracked accounts' posts for persona
// grounding. One failing account never aborts the refresh of the others.
type ServiceCorpus struct {
	db       *bun.DB
	platform interfaces.SocialPlatform
	config   *ServiceConfig
	logger   *zap.Logger
}

func NewServiceCorpus(container *do.Injector) (*ServiceCorpus, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	platform, err := do.Invoke[interfaces.SocialPlatform](container)
	if err != nil {
		return nil, err
	}

	config, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil {
		return nil, err
	}

	return &ServiceCorpus{db, platform, config, logger}, nil
}

func (service *ServiceCorpus) RefreshTrackedAccounts(ctx context.Context) error {
	accounts, _ := service.config.GetStringConfig(ctx, CONFIG_TRACKED_ACCOUNTS, DEFAULT_TRACKED_ACCOUNTS)

	for _, username := range strings.Split(accounts, ",") {
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}

		if err := service.refreshAccount(ctx, username); err != nil {
			service.logger.Error("corpus refresh failed for account",
				zap.String("username", username),
				zap.Error(err))
		}
	}

	total, err := datastore.CountCachedPosts(ctx, service.db)
	if err != nil {
		return err
	}

	service.logger.Info("corpus refreshed", zap.Int("cached_posts", total))
	return nil
}

func (service *ServiceCorpus) refreshAccount(ctx context.Context, username string) error {
	accountID, err := service.platform.ResolveUserID(ctx, username)
	if err != nil {
		return err
	}

	posts, err := service.platform.GetRecentPosts(ctx, accountID, CORPUS_FETCH_COUNT)
	if err != nil {
		return err
	}

	cached := make([]models.CachedPost, 0, len(posts))
	for _, post := range posts {
		cached = append(cached, models.CachedPost{
			PostID:    post.ID,
			Username:  username,
			Text:      post.Text,
			CreatedAt: post.CreatedAt,
		})
	}

	added, err := datastore.UpsertCachedPosts(ctx, service.db, cached)
	if err != nil {
		return err
	}

	service.logger.Info("account corpus updated",
		zap.String("username", username),
		zap.Int("new_posts", added))

	return nil
}

// Corpus joins the stored post texts of one account, newest first, for use as
// persona grounding context.
func (service *ServiceCorpus) Corpus(ctx context.Context, username string, limit int) (string, error) {
	texts, err := datastore.GetCachedPostTexts(ctx, service.db, username, limit)
	if err != nil {
		return "", err
	}

	return strings.Join(texts, " "), nil
}
