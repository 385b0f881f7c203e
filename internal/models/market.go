package models

type MarketEntry struct {
	PriceUSD     float64 `json:"price_usd"`
	LiquidityUSD float64 `json:"liquidity_usd"`
	MarketCap    float64 `json:"market_cap"`
	FDV          float64 `json:"fdv"`
}

type TickerStats struct {
	Ticker   string        `json:"ticker"`
	Mentions int           `json:"mentions"`
	Entries  []MarketEntry `json:"entries"`
}

// TickerAnalysis is the ephemeral result of a consistency analysis. Stats is
// ordered most-mentioned first.
type TickerAnalysis struct {
	Score         float64       `json:"score"`
	TotalMentions int           `json:"total_mentions"`
	Stats         []TickerStats `json:"stats"`
}
