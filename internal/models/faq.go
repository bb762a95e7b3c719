package models

import "time"

// FAQ is one question/answer entry shown on the public site.
type FAQ struct {
	ID        string     `db:"id" json:"id"`
	Question  string     `db:"question" json:"question"`
	Answer    string     `db:"answer" json:"answer"`
	Category  string     `db:"category" json:"category"`
	Tags      StringList `db:"tags" json:"tags"`
	SortOrder int        `db:"sort_order" json:"sort_order"`
	Active    bool       `db:"active" json:"active"`
	CreatedBy string     `db:"created_by" json:"created_by"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// FAQFilter constrains FAQ listing queries.
type FAQFilter struct {
	Category      string
	Search        string
	IncludeHidden bool
}
