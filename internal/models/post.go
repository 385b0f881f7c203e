package models

import "time"

type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Post struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

type EngagementMetrics struct {
	Likes   int `json:"likes"`
	Reposts int `json:"reposts"`
	Replies int `json:"replies"`
}

func (m EngagementMetrics) Total() int {
	return m.Likes + m.Reposts + m.Replies
}
