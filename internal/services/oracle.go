package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"pigbot/internal/interfaces"

	"github.com/mroth/weightedrand/v2"
	"github.com/samber/do"
	"go.uber.org/zap"
)

type OraclePostKind int

const (
	OraclePostLore OraclePostKind = iota
	OraclePostPrayer
	OraclePostTransparency
)

var loreLines = []string{
	"From the depths of the blockchain, $PIG rises anew, stronger and wiser.",
	"In the fires of the memecoin market, $PIG finds its strength and resilience.",
	"Those who cast $PIG aside only fuel its return with greater power.",
}

var transparencyLines = []string{
	"The new $PIG will shine light on those who act in darkness. I will utilize my power to highlight true memecoiners and fakes who sell to their followings",
	"Pig's decline was due to bad actors. We strike back now.",
	"The reborn $PIG holds the community to higher standards. Owning $PIG is fun, but it has far deeper reach than you think.",
}

// ServiceOracle publishes the bot's own scheduled posts: fixed lore and
// transparency lines, and generated prayer posts thanking recent mention
// authors. A prayer also awards the current reward to those authors.
type ServiceOracle struct {
	platform interfaces.SocialPlatform
	persona  interfaces.PersonaGenerator
	reward   *ServiceReward
	corpus   *ServiceCorpus
	config   *ServiceConfig
	logger   *zap.Logger

	kinds *weightedrand.Chooser[OraclePostKind, int]
}

func NewServiceOracle(container *do.Injector) (*ServiceOracle, error) {
	platform, err := do.Invoke[interfaces.SocialPlatform](container)
	if err != nil {
		return nil, err
	}

	persona, err := do.Invoke[interfaces.PersonaGenerator](container)
	if err != nil {
		return nil, err
	}

	reward, err := do.Invoke[*ServiceReward](container)
	if err != nil {
		return nil, err
	}

	corpus, err := do.Invoke[*ServiceCorpus](container)
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

	kinds, err := weightedrand.NewChooser(
		weightedrand.NewChoice(OraclePostLore, 1),
		weightedrand.NewChoice(OraclePostPrayer, 1),
		weightedrand.NewChoice(OraclePostTransparency, 1),
	)
	if err != nil {
		return nil, err
	}

	return &ServiceOracle{platform, persona, reward, corpus, config, logger, kinds}, nil
}

// RunScheduledPost picks a post kind uniformly at random and publishes it.
func (service *ServiceOracle) RunScheduledPost(ctx context.Context) error {
	return service.Post(ctx, service.kinds.Pick())
}

func (service *ServiceOracle) Post(ctx context.Context, kind OraclePostKind) error {
	var text string
	var err error

	switch kind {
	case OraclePostLore:
		text = loreLines[rand.Intn(len(loreLines))]
	case OraclePostTransparency:
		text = transparencyLines[rand.Intn(len(transparencyLines))]
	default:
		text, err = service.composePrayer(ctx)
		if err != nil {
			return err
		}
	}

	postID, err := service.platform.CreatePost(ctx, truncateToLimit(text, POST_CHAR_LIMIT))
	if err != nil {
		return fmt.Errorf("publish scheduled post: %w", err)
	}

	service.logger.Info("scheduled post published",
		zap.String("post_id", postID),
		zap.Int("kind", int(kind)))

	return nil
}

// composePrayer generates a gratitude post from the last day's mentions and
// credits the current reward to their authors. When the herd is silent the
// generation is grounded on the tracked-account corpus instead, and nobody is
// awarded.
func (service *ServiceOracle) composePrayer(ctx context.Context) (string, error) {
	mentions, err := service.platform.GetMentions(ctx, time.Now().Add(-PRAYER_MENTION_WINDOW))
	if err != nil {
		return "", fmt.Errorf("fetch mentions for prayer: %w", err)
	}

	if len(mentions) > PRAYER_MENTION_CAP {
		mentions = mentions[:PRAYER_MENTION_CAP]
	}

	var source string
	if len(mentions) > 0 {
		texts := make([]string, 0, len(mentions))
		for _, mention := range mentions {
			texts = append(texts, mention.Text)
		}
		source = strings.Join(texts, "\n")
	} else {
		source = service.corpusSource(ctx)
	}

	item := service.reward.Current()
	prayer := service.persona.Generate(ctx, source)

	for _, mention := range mentions {
		if mention.AuthorUsername == "" {
			continue
		}
		service.reward.AwardItem(ctx, mention.AuthorUsername, item)
	}

	return fmt.Sprintf("%s\n\nBlessings of %s to our faithful followers.", prayer, item), nil
}

func (service *ServiceOracle) corpusSource(ctx context.Context) string {
	accounts, _ := service.config.GetStringConfig(ctx, CONFIG_TRACKED_ACCOUNTS, DEFAULT_TRACKED_ACCOUNTS)

	for _, username := range strings.Split(accounts, ",") {
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}

		text, err := service.corpus.Corpus(ctx, username, RECENT_POST_COUNT)
		if err != nil {
			service.logger.Warn("corpus read failed",
				zap.String("username", username),
				zap.Error(err))
			continue
		}
		if text != "" {
			return text
		}
	}

	return "the $PIG community endures market volatility"
}
