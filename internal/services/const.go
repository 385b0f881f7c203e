package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInventoryLock = errors.New("inventory query locked")

const (
	CONFIG_CRONJOB_TIME_DISPATCH    = "CRONJOB_TIME_DISPATCH"
	CONFIG_CRONJOB_TIME_ENGAGEMENT  = "CRONJOB_TIME_ENGAGEMENT"
	CONFIG_CRONJOB_TIME_CORPUS      = "CRONJOB_TIME_CORPUS"
	CONFIG_CRONJOB_TIME_ORACLE      = "CRONJOB_TIME_ORACLE"
	CONFIG_ENGAGEMENT_TOTAL_TARGET  = "ENGAGEMENT_TOTAL_TARGET"
	CONFIG_MENTION_LOOKBACK_MINUTES = "MENTION_LOOKBACK_MINUTES"
	CONFIG_MENTION_BATCH_LIMIT      = "MENTION_BATCH_LIMIT"
	CONFIG_INVENTORY_DELIVERY       = "INVENTORY_DELIVERY"
	CONFIG_ENGAGEMENT_RESOLVER      = "ENGAGEMENT_RESOLVER"
	CONFIG_TRACKED_ACCOUNTS         = "TRACKED_ACCOUNTS"

	DEFAULT_CRONJOB_TIME_DISPATCH    = "@every 45m"
	DEFAULT_CRONJOB_TIME_ENGAGEMENT  = "@every 1h"
	DEFAULT_CRONJOB_TIME_CORPUS      = "@every 8h"
	DEFAULT_CRONJOB_TIME_ORACLE      = "@every 6h"
	DEFAULT_ENGAGEMENT_TOTAL_TARGET  = 5
	DEFAULT_MENTION_LOOKBACK_MINUTES = 20
	DEFAULT_MENTION_BATCH_LIMIT      = 10
	DEFAULT_TRACKED_ACCOUNTS         = "blknoiz06,MustStopMurad,notthreadguy"

	DELIVERY_REPLY = "reply"
	DELIVERY_DM    = "dm"

	RESOLVER_INTERACTIONS = "interactions"
	RESOLVER_CONVERSATION = "conversation"

	TAG_TICKER_ANALYSIS = "#pigid"
	TAG_INVENTORY       = "#pigme"

	POST_CHAR_LIMIT    = 280
	RECENT_POST_COUNT  = 10
	ANALYSIS_POST_CAP  = 50
	CORPUS_FETCH_COUNT = 8
	MARKET_ENTRY_LIMIT = 3
	INVENTORY_COOLDOWN = 24 * time.Hour

	PRAYER_MENTION_CAP    = 5
	PRAYER_MENTION_WINDOW = 24 * time.Hour

	CACHE_TTL_5_MINS  = 5 * time.Minute
	CACHE_TTL_15_MINS = 15 * time.Minute

	TWITTER_API_BASE_URL   = "https://api.twitter.com"
	DEXSCREENER_SEARCH_URL = "https://api.dexscreener.com/latest/dex/search"
)

func LockKeyInventoryQuery(username string) string {
	return fmt.Sprintf("lock:inventory-query:%s", strings.ToLower(username))
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyMarketTicker(ticker string) string {
	return fmt.Sprintf("market:%s", strings.ToLower(ticker))
}
