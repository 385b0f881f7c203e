package services

import (
	"context"
	"fmt"
	"time"

	"pigbot/internal/datastore"
	"pigbot/internal/interfaces"

	"github.com/samber/do"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// EngagerResolver decides which usernames count as having engaged with a
// post. The source variants disagreed on this, so it is a strategy, not a
// hard-coded rule.
type EngagerResolver interface {
	Resolve(ctx context.Context, postID string) ([]string, error)
}

// InteractionResolver counts likers and reposters.
type InteractionResolver struct {
	platform interfaces.SocialPlatform
}

func (r *InteractionResolver) Resolve(ctx context.Context, postID string) ([]string, error) {
	likers, err := r.platform.GetLikingUsers(ctx, postID)
	if err != nil {
		return nil, err
	}

	reposters, err := r.platform.GetRepostingUsers(ctx, postID)
	if err != nil {
		return nil, err
	}

	return dedupeUsernames(append(likers, reposters...)), nil
}

// ConversationResolver counts authors who replied into the post's
// conversation.
type ConversationResolver struct {
	platform interfaces.SocialPlatform
}

func (r *ConversationResolver) Resolve(ctx context.Context, postID string) ([]string, error) {
	repliers, err := r.platform.GetConversationRepliers(ctx, postID)
	if err != nil {
		return nil, err
	}

	return dedupeUsernames(repliers), nil
}

func dedupeUsernames(usernames []string) []string {
	seen := make(map[string]struct{}, len(usernames))
	out := make([]string, 0, len(usernames))
	for _, username := range usernames {
		if username == "" {
			continue
		}
		if _, ok := seen[username]; ok {
			continue
		}
		seen[username] = struct{}{}
		out = append(out, username)
	}
	return out
}

type ServiceEngagement struct {
	db       *bun.DB
	platform interfaces.SocialPlatform
	reward   *ServiceReward
	config   *ServiceConfig
	logger   *zap.Logger
}

func NewServiceEngagement(container *do.Injector) (*ServiceEngagement, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	platform, err := do.Invoke[interfaces.SocialPlatform](container)
	if err != nil {
		return nil, err
	}

	reward, err := do.Invoke[*ServiceReward](container)
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

	return &ServiceEngagement{db, platform, reward, config, logger}, nil
}

func (service *ServiceEngagement) resolver(ctx context.Context) EngagerResolver {
	strategy, _ := service.config.GetStringConfig(ctx, CONFIG_ENGAGEMENT_RESOLVER, RESOLVER_INTERACTIONS)
	if strategy == RESOLVER_CONVERSATION {
		return &ConversationResolver{service.platform}
	}
	return &InteractionResolver{service.platform}
}

// RunEngagementPoll checks the bot's recent posts against the engagement
// target. Each post crosses the goal at most once ever: the flag insert is
// first-writer-wins, the reward is captured before awarding so a rotation
// triggered by another post in the same cycle cannot leak in, and rotation
// happens exactly once after a post's distribution.
func (service *ServiceEngagement) RunEngagementPoll(ctx context.Context) error {
	me, err := service.platform.Me(ctx)
	if err != nil {
		return fmt.Errorf("resolve own account: %w", err)
	}

	posts, err := service.platform.GetRecentPosts(ctx, me.ID, RECENT_POST_COUNT)
	if err != nil {
		return fmt.Errorf("fetch recent posts: %w", err)
	}

	target, _ := service.config.GetIntConfig(ctx, CONFIG_ENGAGEMENT_TOTAL_TARGET, DEFAULT_ENGAGEMENT_TOTAL_TARGET)
	resolver := service.resolver(ctx)

	for _, post := range posts {
		flagged, err := datastore.IsEngagementFlagged(ctx, service.db, post.ID)
		if err != nil {
			return fmt.Errorf("engagement flag lookup: %w", err)
		}
		if flagged {
			continue
		}

		metrics, err := service.platform.GetEngagementMetrics(ctx, post.ID)
		if err != nil {
			// skip this post this cycle; the next tick retries it
			service.logger.Error("metrics fetch failed, skipping post",
				zap.String("post_id", post.ID),
				zap.Error(err))
			continue
		}

		if metrics.Total() < target {
			continue
		}

		created, err := datastore.FlagEngagementGoal(ctx, service.db, post.ID, time.Now())
		if err != nil {
			service.logger.Error("engagement flag write failed",
				zap.String("post_id", post.ID),
				zap.Error(err))
			continue
		}
		if !created {
			continue
		}

		service.logger.Info("engagement target met",
			zap.String("post_id", post.ID),
			zap.Int("engagements", metrics.Total()),
			zap.Int("target", target))

		service.distributeRewards(ctx, resolver, post.ID)
		service.reward.Rotate()
	}

	return nil
}

func (service *ServiceEngagement) distributeRewards(ctx context.Context, resolver EngagerResolver, postID string) {
	item := service.reward.Current()

	usernames, err := resolver.Resolve(ctx, postID)
	if err != nil {
		service.logger.Error("engager resolution failed, no rewards distributed",
			zap.String("post_id", postID),
			zap.Error(err))
		return
	}

	for _, username := range usernames {
		service.reward.AwardItem(ctx, username, item)
	}

	service.logger.Info("rewards distributed",
		zap.String("post_id", postID),
		zap.String("item", item),
		zap.Int("recipients", len(usernames)))
}
