package services_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"pigbot/internal/datastore"
	"pigbot/internal/interfaces"
	"pigbot/internal/models"
	"pigbot/internal/pkg/caching"
	"pigbot/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"
)

type fixtures struct {
	platform *fakePlatform
	persona  *fakePersona
	market   *fakeMarket
}

// newTestContainer builds the full service graph over a temp sqlite file and
// an embedded redis, with the network collaborators replaced by fakes.
func newTestContainer(t *testing.T) (*do.Injector, *fixtures) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

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

	fx := &fixtures{
		platform: newFakePlatform(),
		persona:  &fakePersona{text: "oink"},
		market:   &fakeMarket{entries: map[string][]models.MarketEntry{}},
	}

	injector := do.New()
	do.ProvideValue(injector, db)
	do.ProvideValue(injector, zap.NewNop())
	do.ProvideValue[interfaces.SocialPlatform](injector, fx.platform)
	do.ProvideValue[interfaces.PersonaGenerator](injector, fx.persona)
	do.ProvideValue[interfaces.MarketData](injector, fx.market)

	cache, err := caching.NewCacheRedis(client, false)
	require.NoError(t, err)
	do.ProvideValue[caching.Cache](injector, cache)

	do.ProvideValue(injector, redsync.New(goredis.NewPool(client)))

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(i)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceReward, error) {
		return services.NewServiceReward(i)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceAnalysis, error) {
		return services.NewServiceAnalysis(i)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceDispatcher, error) {
		return services.NewServiceDispatcher(i)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceEngagement, error) {
		return services.NewServiceEngagement(i)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceCorpus, error) {
		return services.NewServiceCorpus(i)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceOracle, error) {
		return services.NewServiceOracle(i)
	})

	return injector, fx
}

type fakePlatform struct {
	mu sync.Mutex

	me       *models.Account
	mentions []models.Mention
	posts    map[string][]models.Post
	metrics  map[string]*models.EngagementMetrics

	likers    map[string][]string
	reposters map[string][]string
	repliers  map[string][]string
	userIDs   map[string]string
	roots     map[string]*models.Post

	metricsErr map[string]error
	replyErrs  map[string]error
	dmErr      error
	postErr    error

	replies []fakeReply
	dms     []fakeDM
	created []string
}

type fakeReply struct {
	Text      string
	InReplyTo string
}

type fakeDM struct {
	Username string
	Text     string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		me:         &models.Account{ID: "bot-1", Username: "pigbot"},
		posts:      map[string][]models.Post{},
		metrics:    map[string]*models.EngagementMetrics{},
		likers:     map[string][]string{},
		reposters:  map[string][]string{},
		repliers:   map[string][]string{},
		userIDs:    map[string]string{},
		roots:      map[string]*models.Post{},
		metricsErr: map[string]error{},
		replyErrs:  map[string]error{},
	}
}

func (p *fakePlatform) Me(ctx context.Context) (*models.Account, error) {
	return p.me, nil
}

func (p *fakePlatform) GetMentions(ctx context.Context, since time.Time) ([]models.Mention, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Mention, len(p.mentions))
	copy(out, p.mentions)
	return out, nil
}

func (p *fakePlatform) GetRecentPosts(ctx context.Context, accountID string, n int) ([]models.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	posts := p.posts[accountID]
	if len(posts) > n {
		posts = posts[:n]
	}
	return posts, nil
}

func (p *fakePlatform) GetEngagementMetrics(ctx context.Context, postID string) (*models.EngagementMetrics, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.metricsErr[postID]; err != nil {
		return nil, err
	}
	if m, ok := p.metrics[postID]; ok {
		return m, nil
	}
	return &models.EngagementMetrics{}, nil
}

func (p *fakePlatform) CreatePost(ctx context.Context, text string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.postErr != nil {
		return "", p.postErr
	}
	p.created = append(p.created, text)
	return fmt.Sprintf("post-%d", len(p.created)), nil
}

func (p *fakePlatform) CreateReply(ctx context.Context, text string, inReplyTo string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.replyErrs[inReplyTo]; err != nil {
		return "", err
	}
	p.replies = append(p.replies, fakeReply{Text: text, InReplyTo: inReplyTo})
	return "reply-" + inReplyTo, nil
}

func (p *fakePlatform) SendDirectMessage(ctx context.Context, username string, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dmErr != nil {
		return p.dmErr
	}
	p.dms = append(p.dms, fakeDM{Username: username, Text: text})
	return nil
}

func (p *fakePlatform) ResolveUserID(ctx context.Context, username string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.userIDs[username]; ok {
		return id, nil
	}
	return "id-" + username, nil
}

func (p *fakePlatform) ResolveUsername(ctx context.Context, accountID string) (string, error) {
	return "user-" + accountID, nil
}

func (p *fakePlatform) GetConversationRoot(ctx context.Context, conversationID string) (*models.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roots[conversationID], nil
}

func (p *fakePlatform) GetLikingUsers(ctx context.Context, postID string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.likers[postID], nil
}

func (p *fakePlatform) GetRepostingUsers(ctx context.Context, postID string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reposters[postID], nil
}

func (p *fakePlatform) GetConversationRepliers(ctx context.Context, postID string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.repliers[postID], nil
}

func (p *fakePlatform) replyCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.replies)
}

func (p *fakePlatform) lastReply() fakeReply {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.replies[len(p.replies)-1]
}

func (p *fakePlatform) lastPost() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created[len(p.created)-1]
}

type fakePersona struct {
	mu      sync.Mutex
	text    string
	sources []string
}

func (p *fakePersona) Generate(ctx context.Context, sourceText string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources = append(p.sources, sourceText)
	return p.text
}

func (p *fakePersona) lastSource() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sources[len(p.sources)-1]
}

type fakeMarket struct {
	mu      sync.Mutex
	entries map[string][]models.MarketEntry
	errs    map[string]error
}

func (m *fakeMarket) Lookup(ctx context.Context, ticker string) ([]models.MarketEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errs != nil {
		if err := m.errs[ticker]; err != nil {
			return nil, err
		}
	}
	return m.entries[ticker], nil
}

func quantityOf(t *testing.T, entries []models.InventoryEntry, item string) int {
	t.Helper()
	for _, entry := range entries {
		if entry.Item == item {
			return entry.Quantity
		}
	}
	return 0
}

func totalQuantity(entries []models.InventoryEntry) int {
	total := 0
	for _, entry := range entries {
		total += entry.Quantity
	}
	return total
}
