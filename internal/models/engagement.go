package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EngagementFlag marks a post whose engagement goal has been reached. A row
// existing is the flag; it is never updated or deleted.
type EngagementFlag struct {
	bun.BaseModel `bun:"table:engagement_flag"`
	PostID        string    `bun:"post_id,pk" json:"post_id"`
	AchievedAt    time.Time `bun:"achieved_at,notnull" json:"achieved_at"`
}
