package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Mention is an inbound post referencing the bot's account, as fetched from
// the platform. It is never persisted; only its id is recorded once handled.
type Mention struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	AuthorID        string    `json:"author_id"`
	AuthorUsername  string    `json:"author_username"`
	ConversationID  string    `json:"conversation_id"`
	TaggedUsernames []string  `json:"tagged_usernames"`
	CreatedAt       time.Time `json:"created_at"`
}

type ProcessedMention struct {
	bun.BaseModel `bun:"table:processed_mention"`
	MentionID     string    `bun:"mention_id,pk" json:"mention_id"`
	ProcessedAt   time.Time `bun:"processed_at,notnull" json:"processed_at"`
}
