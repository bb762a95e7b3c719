package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ResourceType distinguishes learning material kinds.
type ResourceType string

const (
	ResourceTypeGuide ResourceType = "guide"
	ResourceTypeVideo ResourceType = "video"
	ResourceTypeTools ResourceType = "tools"
)

// Valid reports whether the type is supported.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceTypeGuide, ResourceTypeVideo, ResourceTypeTools:
		return true
	default:
		return false
	}
}

// StringList stores tags as a JSONB array.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
	return json.Unmarshal(raw, l)
}

// LearningResource is one entry of the learning-material library.
type LearningResource struct {
	ID          string       `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Type        ResourceType `db:"type" json:"type"`
	Category    string       `db:"category" json:"category"`
	Author      string       `db:"author" json:"author"`
	AgeGroup    *string      `db:"age_group" json:"age_group,omitempty"`
	Aspect      *string      `db:"aspect" json:"aspect,omitempty"`
	Tags        StringList   `db:"tags" json:"tags"`
	Thumbnail   *string      `db:"thumbnail" json:"thumbnail,omitempty"`
	URL         *string      `db:"url" json:"url,omitempty"`
	OrgID       *string      `db:"org_id" json:"org_id,omitempty"`
	OrgName     *string      `db:"org_name" json:"org_name,omitempty"`
	Active      bool         `db:"active" json:"active"`
	Views       int64        `db:"views" json:"views"`
	Downloads   int64        `db:"downloads" json:"downloads"`
	CreatedBy   string       `db:"created_by" json:"created_by"`
	UpdatedBy   *string      `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// ResourceFilter constrains library listing queries.
type ResourceFilter struct {
	Type          ResourceType
	Category      string
	Search        string
	OrgID         string
	IncludeHidden bool
	Page          int
	PageSize      int
}

// ResourceStatsSummary aggregates library counters per type.
type ResourceStatsSummary struct {
	Type      ResourceType `db:"type" json:"type"`
	Count     int          `db:"count" json:"count"`
	Views     int64        `db:"views" json:"views"`
	Downloads int64        `db:"downloads" json:"downloads"`
}
