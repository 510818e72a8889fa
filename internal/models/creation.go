package models

import (
	"time"

	"github.com/lib/pq"
)

// Creation is one persisted generation/edit result plus its request metadata.
type Creation struct {
	ID        int            `json:"id" db:"id"`
	UserID    string         `json:"user_id" db:"user_id"`
	Prompt    string         `json:"prompt" db:"prompt"`
	Content   string         `json:"content" db:"content"`
	Type      string         `json:"type" db:"type"`
	Publish   bool           `json:"publish" db:"publish"`
	Likes     pq.StringArray `json:"likes" db:"likes"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

const (
	TypeArticle          = "article"
	TypeBlogTitle        = "blog-title"
	TypeImage            = "image"
	TypeRemoveBackground = "remove-background"
	TypeRemoveObject     = "remove-object"
	TypeResumeReview     = "resume-review"
)

// NewCreation holds the insertable fields; id and created_at are
// server-assigned.
type NewCreation struct {
	UserID  string
	Prompt  string
	Content string
	Type    string
	Publish bool
}

const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// PlanState is what the auth provider knows about a subject: entitlement
// tier and how much free-tier usage it has consumed.
type PlanState struct {
	UserID    string `json:"user_id"`
	Plan      string `json:"plan"`
	FreeUsage int    `json:"free_usage"`
}

func (p PlanState) Premium() bool {
	return p.Plan == PlanPremium
}

// CreationEvent is published to Kafka after each successful insert.
type CreationEvent struct {
	ID        int       `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Publish   bool      `json:"publish"`
	CreatedAt time.Time `json:"created_at"`
}
