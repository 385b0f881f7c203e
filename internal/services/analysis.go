package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"pigbot/internal/interfaces"
	"pigbot/internal/models"

	"github.com/samber/do"
	"go.uber.org/zap"
)

var cashtagPattern = regexp.MustCompile(`\$[A-Za-z0-9]+`)

// ServiceAnalysis computes how consistently an account shills a single
// ticker: score = mentions of the most frequent cashtag / all cashtag
// mentions, 0 when there are none.
type ServiceAnalysis struct {
	platform interfaces.SocialPlatform
	market   interfaces.MarketData
	logger   *zap.Logger
}

func NewServiceAnalysis(container *do.Injector) (*ServiceAnalysis, error) {
	platform, err := do.Invoke[interfaces.SocialPlatform](container)
	if err != nil {
		return nil, err
	}

	market, err := do.Invoke[interfaces.MarketData](container)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil {
		return nil, err
	}

	return &ServiceAnalysis{platform, market, logger}, nil
}

func (service *ServiceAnalysis) Analyze(ctx context.Context, username string) (*models.TickerAnalysis, error) {
	accountID, err := service.platform.ResolveUserID(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", username, err)
	}

	posts, err := service.platform.GetRecentPosts(ctx, accountID, ANALYSIS_POST_CAP)
	if err != nil {
		return nil, fmt.Errorf("fetch posts of %s: %w", username, err)
	}

	tickers := make([]string, 0)
	for _, post := range posts {
		for _, match := range cashtagPattern.FindAllString(post.Text, -1) {
			tickers = append(tickers, strings.ToUpper(match))
		}
	}

	return service.analyzeTickers(ctx, tickers), nil
}

func (service *ServiceAnalysis) analyzeTickers(ctx context.Context, tickers []string) *models.TickerAnalysis {
	counts := make(map[string]int, len(tickers))
	order := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		if counts[ticker] == 0 {
			order = append(order, ticker)
		}
		counts[ticker]++
	}

	analysis := &models.TickerAnalysis{TotalMentions: len(tickers)}
	if len(tickers) == 0 {
		return analysis
	}

	// most mentioned first, first seen wins ties
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	analysis.Score = float64(counts[order[0]]) / float64(len(tickers))

	for _, ticker := range order {
		stats := models.TickerStats{Ticker: ticker, Mentions: counts[ticker]}

		entries, err := service.market.Lookup(ctx, ticker)
		if err != nil {
			// score depends only on mention counts; a dead ticker just
			// loses its market lines
			service.logger.Error("market lookup failed",
				zap.String("ticker", ticker),
				zap.Error(err))
		} else {
			if len(entries) > MARKET_ENTRY_LIMIT {
				entries = entries[:MARKET_ENTRY_LIMIT]
			}
			stats.Entries = entries
		}

		analysis.Stats = append(analysis.Stats, stats)
	}

	return analysis
}

// RunConsistencyAnalysis renders the full report, bounded to the platform
// post length.
func (service *ServiceAnalysis) RunConsistencyAnalysis(ctx context.Context, username string) (string, error) {
	analysis, err := service.Analyze(ctx, username)
	if err != nil {
		return "", err
	}

	return RenderConsistencyReport(username, analysis), nil
}

func RenderConsistencyReport(username string, analysis *models.TickerAnalysis) string {
	if analysis.TotalMentions == 0 {
		return fmt.Sprintf("@%s mentions no tickers in their recent posts. Consistency score: 0.00.", username)
	}

	top := analysis.Stats[0]
	lines := []string{
		fmt.Sprintf("Ticker consistency for @%s", username),
		fmt.Sprintf("Top ticker %s: %d of %d mentions. Score: %.2f",
			top.Ticker, top.Mentions, analysis.TotalMentions, analysis.Score),
	}

	for _, stats := range analysis.Stats {
		lines = append(lines, fmt.Sprintf("%s x%d", stats.Ticker, stats.Mentions))
		for _, entry := range stats.Entries {
			lines = append(lines, fmt.Sprintf("  $%.6f | liq $%.0f | mcap $%.0f | fdv $%.0f",
				entry.PriceUSD, entry.LiquidityUSD, entry.MarketCap, entry.FDV))
		}
	}

	return truncateToLimit(strings.Join(lines, "\n"), POST_CHAR_LIMIT)
}

// truncateToLimit drops whole trailing lines until the text fits; only a
// single overlong line gets cut mid-line, on a rune boundary so multibyte
// text never yields invalid UTF-8.
func truncateToLimit(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	lines := strings.Split(text, "\n")
	for len(lines) > 1 {
		lines = lines[:len(lines)-1]
		candidate := strings.Join(lines, "\n")
		if utf8.RuneCountInString(candidate) <= limit {
			return candidate
		}
	}

	return string([]rune(lines[0])[:limit])
}
