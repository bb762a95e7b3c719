package models

import "time"

// NewsStatus captures the two-state publication workflow.
type NewsStatus string

const (
	NewsStatusDraft   NewsStatus = "draft"
	NewsStatusPublish NewsStatus = "publish"
)

// Valid reports whether the status is supported.
func (s NewsStatus) Valid() bool {
	return s == NewsStatusDraft || s == NewsStatusPublish
}

// NewsArticle represents a persisted news row.
type NewsArticle struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Content     string     `db:"content" json:"content"`
	Excerpt     string     `db:"excerpt" json:"excerpt"`
	Image       *string    `db:"image" json:"image,omitempty"`
	AuthorID    string     `db:"author_id" json:"author_id"`
	Status      NewsStatus `db:"status" json:"status"`
	ApprovedBy  *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	Source      *string    `db:"source" json:"source,omitempty"`
	Category    string     `db:"category" json:"category"`
	Active      bool       `db:"active" json:"active"`
	Views       int64      `db:"views" json:"views"`
	Likes       int64      `db:"likes" json:"likes"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// NewsFilter constrains news listing queries.
type NewsFilter struct {
	Status   NewsStatus
	Category string
	Search   string
	AuthorID string
	Page     int
	PageSize int
}
