package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pigbot/internal/datastore"
	"pigbot/internal/interfaces"
	"pigbot/internal/models"

	"github.com/samber/do"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

type CommandKind int

const (
	CommandTickerAnalysis CommandKind = iota
	CommandMissingTarget
	CommandInventoryQuery
	CommandDefaultReply
)

// Command is the classification of one mention. Target is only set for
// CommandTickerAnalysis.
type Command struct {
	Kind   CommandKind
	Target string
}

// ClassifyMention routes a mention in fixed priority order: the analysis tag
// wins over the inventory tag, which wins over the default persona reply.
// Tag matching is case-insensitive; the author and the bot itself never count
// as an analysis target.
func ClassifyMention(mention *models.Mention, botUsername string) Command {
	text := strings.ToLower(mention.Text)

	if strings.Contains(text, TAG_TICKER_ANALYSIS) {
		for _, tagged := range mention.TaggedUsernames {
			if strings.EqualFold(tagged, mention.AuthorUsername) || strings.EqualFold(tagged, botUsername) {
				continue
			}
			return Command{Kind: CommandTickerAnalysis, Target: tagged}
		}
		return Command{Kind: CommandMissingTarget}
	}

	if strings.Contains(text, TAG_INVENTORY) {
		return Command{Kind: CommandInventoryQuery}
	}

	return Command{Kind: CommandDefaultReply}
}

type ServiceDispatcher struct {
	db       *bun.DB
	platform interfaces.SocialPlatform
	persona  interfaces.PersonaGenerator
	reward   *ServiceReward
	analysis *ServiceAnalysis
	config   *ServiceConfig
	logger   *zap.Logger
}

func NewServiceDispatcher(container *do.Injector) (*ServiceDispatcher, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

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

	analysis, err := do.Invoke[*ServiceAnalysis](container)
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

	return &ServiceDispatcher{db, platform, persona, reward, analysis, config, logger}, nil
}

// RunDispatchCycle fetches recent mentions, drops the already-processed ones
// and handles the rest in fetch order. One failing mention is logged, left
// unprocessed for the next cycle and never aborts the batch.
func (service *ServiceDispatcher) RunDispatchCycle(ctx context.Context) error {
	me, err := service.platform.Me(ctx)
	if err != nil {
		return fmt.Errorf("resolve own account: %w", err)
	}

	lookback, _ := service.config.GetIntConfig(ctx, CONFIG_MENTION_LOOKBACK_MINUTES, DEFAULT_MENTION_LOOKBACK_MINUTES)
	since := time.Now().Add(-time.Duration(lookback) * time.Minute)

	mentions, err := service.platform.GetMentions(ctx, since)
	if err != nil {
		return fmt.Errorf("fetch mentions: %w", err)
	}

	limit, _ := service.config.GetIntConfig(ctx, CONFIG_MENTION_BATCH_LIMIT, DEFAULT_MENTION_BATCH_LIMIT)
	if len(mentions) > limit {
		mentions = mentions[:limit]
	}

	var handled, skipped, failed int
	for i := range mentions {
		mention := &mentions[i]

		if mention.ID == "" || mention.AuthorUsername == "" {
			service.logger.Warn("malformed mention skipped", zap.String("mention_id", mention.ID))
			continue
		}

		processed, err := datastore.IsMentionProcessed(ctx, service.db, mention.ID)
		if err != nil {
			return fmt.Errorf("processed-mention lookup: %w", err)
		}
		if processed {
			skipped++
			continue
		}

		if err := service.handleMention(ctx, mention, me.Username); err != nil {
			failed++
			service.logger.Error("mention left unprocessed for retry",
				zap.String("mention_id", mention.ID),
				zap.String("author", mention.AuthorUsername),
				zap.Error(err))
			continue
		}

		if err := datastore.MarkMentionProcessed(ctx, service.db, mention.ID); err != nil {
			failed++
			service.logger.Error("failed to mark mention processed",
				zap.String("mention_id", mention.ID),
				zap.Error(err))
			continue
		}

		handled++
	}

	service.logger.Info("dispatch cycle complete",
		zap.Int("found", len(mentions)),
		zap.Int("handled", handled),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))

	return nil
}

func (service *ServiceDispatcher) handleMention(ctx context.Context, mention *models.Mention, botUsername string) error {
	command := ClassifyMention(mention, botUsername)

	switch command.Kind {
	case CommandTickerAnalysis:
		return service.handleTickerAnalysis(ctx, mention, command.Target)
	case CommandMissingTarget:
		text := fmt.Sprintf("@%s, please tag a user after %s to analyze.", mention.AuthorUsername, TAG_TICKER_ANALYSIS)
		_, err := service.platform.CreateReply(ctx, text, mention.ID)
		return err
	case CommandInventoryQuery:
		return service.handleInventoryQuery(ctx, mention)
	default:
		return service.handleDefaultReply(ctx, mention)
	}
}

func (service *ServiceDispatcher) handleTickerAnalysis(ctx context.Context, mention *models.Mention, target string) error {
	report, err := service.analysis.RunConsistencyAnalysis(ctx, target)
	if err != nil {
		service.logger.Error("consistency analysis failed",
			zap.String("target", target),
			zap.Error(err))
		report = fmt.Sprintf("@%s, there was an issue analyzing @%s's consistency. Please try again later.",
			mention.AuthorUsername, target)
	}

	_, err = service.platform.CreateReply(ctx, report, mention.ID)
	return err
}

func (service *ServiceDispatcher) handleInventoryQuery(ctx context.Context, mention *models.Mention) error {
	status, err := service.reward.QueryInventory(ctx, mention.AuthorUsername, time.Now())
	if err != nil {
		return fmt.Errorf("query inventory: %w", err)
	}

	text := status.Render(mention.AuthorUsername)

	delivery, _ := service.config.GetStringConfig(ctx, CONFIG_INVENTORY_DELIVERY, DELIVERY_REPLY)
	if delivery == DELIVERY_DM {
		err := service.platform.SendDirectMessage(ctx, mention.AuthorUsername, text)
		if err == nil {
			return nil
		}
		// never leave the user in silence; fall back to a public reply
		service.logger.Warn("inventory DM failed, falling back to reply",
			zap.String("username", mention.AuthorUsername),
			zap.Error(err))
	}

	_, err = service.platform.CreateReply(ctx, text, mention.ID)
	return err
}

func (service *ServiceDispatcher) handleDefaultReply(ctx context.Context, mention *models.Mention) error {
	source := mention.Text
	if mention.ConversationID != "" && mention.ConversationID != mention.ID {
		root, err := service.platform.GetConversationRoot(ctx, mention.ConversationID)
		if err != nil {
			service.logger.Warn("conversation root lookup failed, using mention text",
				zap.String("mention_id", mention.ID),
				zap.Error(err))
		} else if root != nil {
			source = root.Text
		}
	}

	generated := service.persona.Generate(ctx, source)
	text := truncateToLimit(fmt.Sprintf("@%s, %s", mention.AuthorUsername, generated), POST_CHAR_LIMIT)

	if _, err := service.platform.CreateReply(ctx, text, mention.ID); err != nil {
		return err
	}

	service.reward.Award(ctx, mention.AuthorUsername)
	return nil
}
