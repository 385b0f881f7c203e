package interfaces

import (
	"context"
	"time"

	"pigbot/internal/models"

	"github.com/go-redis/redis_rate/v10"
)

// SocialPlatform is the bot's view of the social network API. Every call is
// blocking network I/O with its own timeout and retry policy.
type SocialPlatform interface {
	Me(ctx context.Context) (*models.Account, error)
	GetMentions(ctx context.Context, since time.Time) ([]models.Mention, error)
	GetRecentPosts(ctx context.Context, accountID string, n int) ([]models.Post, error)
	GetEngagementMetrics(ctx context.Context, postID string) (*models.EngagementMetrics, error)
	CreatePost(ctx context.Context, text string) (string, error)
	CreateReply(ctx context.Context, text string, inReplyTo string) (string, error)
	SendDirectMessage(ctx context.Context, username string, text string) error
	ResolveUserID(ctx context.Context, username string) (string, error)
	ResolveUsername(ctx context.Context, accountID string) (string, error)
	GetConversationRoot(ctx context.Context, conversationID string) (*models.Post, error)
	GetLikingUsers(ctx context.Context, postID string) ([]string, error)
	GetRepostingUsers(ctx context.Context, postID string) ([]string, error)
	GetConversationRepliers(ctx context.Context, postID string) ([]string, error)
}

// PersonaGenerator produces an in-character reply for the given source text.
// It never fails the caller: any internal error yields a fixed fallback line.
type PersonaGenerator interface {
	Generate(ctx context.Context, sourceText string) string
}

// MarketData looks up market snapshots for a cashtag. Returns an empty slice
// when the ticker is unknown.
type MarketData interface {
	Lookup(ctx context.Context, ticker string) ([]models.MarketEntry, error)
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}
