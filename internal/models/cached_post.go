package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CachedPost is a tracked account's post kept locally for persona grounding.
type CachedPost struct {
	bun.BaseModel `bun:"table:cached_post"`
	PostID        string    `bun:"post_id,pk" json:"post_id"`
	Username      string    `bun:"username,notnull" json:"username"`
	Text          string    `bun:"text,notnull" json:"text"`
	CreatedAt     time.Time `bun:"created_at" json:"created_at"`
}
