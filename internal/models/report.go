package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ReportStatus captures the approval workflow states of an indicator report.
type ReportStatus string

const (
	ReportStatusDraft    ReportStatus = "draft"
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusApproved ReportStatus = "approved"
	ReportStatusRejected ReportStatus = "rejected"
)

// Valid reports whether the status is a supported value. The legacy system
// used "submitted" interchangeably with "pending"; only "pending" is modeled.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusPending, ReportStatusApproved, ReportStatusRejected:
		return true
	default:
		return false
	}
}

// Category classifies one year's achievement against its target.
type Category string

const (
	CategoryAchieved    Category = "ACHIEVED"
	CategoryNotAchieved Category = "NOT_ACHIEVED"
	CategoryNotReported Category = "NOT_REPORTED"
)

// MetricValue is a target/actual figure as entered by a ministry. Entries
// arrive as numbers, numeric strings with comma decimal separators, or the
// "-" marker meaning the figure was not reported.
type MetricValue struct {
	Number   float64
	Reported bool
}

// UnmarshalJSON accepts numbers, numeric strings, "-", "" and null.
func (m *MetricValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*m = MetricValue{}
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*m = MetricValue{Number: num, Reported: true}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("metric value must be a number or string")
	}
	str = strings.TrimSpace(str)
	if str == "" || str == "-" {
		*m = MetricValue{}
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(str, ",", "."), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		parsed = 0
	}
	*m = MetricValue{Number: parsed, Reported: true}
	return nil
}

// MarshalJSON emits the numeric value, or "-" when not reported.
func (m MetricValue) MarshalJSON() ([]byte, error) {
	if !m.Reported {
		return []byte(`"-"`), nil
	}
	return json.Marshal(m.Number)
}

// YearRecord is one year's stored target/actual tuple with its derived
// percentage and category.
type YearRecord struct {
	Year       int      `json:"year"`
	Target     float64  `json:"target"`
	Actual     float64  `json:"actual"`
	Percentage int      `json:"percentage"`
	Category   Category `json:"category"`
	Note       string   `json:"note,omitempty"`
}

// DeriveYearRecord computes the percentage and category from the raw inputs.
// Category is never free-entered: a "-" marker on both figures, or a
// non-positive target, yields NOT_REPORTED; otherwise the rounded percentage
// decides between ACHIEVED (>=100), NOT_ACHIEVED (>0) and NOT_REPORTED.
func DeriveYearRecord(year int, target, actual MetricValue, note string) YearRecord {
	rec := YearRecord{Year: year, Note: note}

	if !target.Reported && !actual.Reported {
		rec.Category = CategoryNotReported
		return rec
	}

	rec.Target = target.Number
	rec.Actual = actual.Number

	switch {
	case rec.Target == 0 && rec.Actual == 0:
		rec.Category = CategoryNotReported
	case rec.Target > 0:
		pct := int(math.Round(rec.Actual / math.Max(1, rec.Target) * 100))
		rec.Percentage = pct
		switch {
		case pct >= 100:
			rec.Category = CategoryAchieved
		case pct > 0:
			rec.Category = CategoryNotAchieved
		default:
			rec.Category = CategoryNotReported
		}
	default:
		rec.Category = CategoryNotReported
	}
	return rec
}

// Indicator is one tracked metric within a report.
type Indicator struct {
	Name          string       `json:"name"`
	TargetUnit    string       `json:"target_unit"`
	ResourceCount float64      `json:"resource_count"`
	Years         []YearRecord `json:"years"`
}

// IndicatorList stores the indicators of a report as a JSONB column.
type IndicatorList []Indicator

// Value implements driver.Valuer.
func (l IndicatorList) Value() (driver.Value, error) {
	if l == nil {
		l = IndicatorList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *IndicatorList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = IndicatorList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported indicators column type %T", src)
	}
	return json.Unmarshal(raw, l)
}

// TotalResourceCount sums the per-indicator resource counts. The stored
// top-level total is always recomputed from this, never client-supplied.
func (l IndicatorList) TotalResourceCount() float64 {
	var total float64
	for _, ind := range l {
		total += ind.ResourceCount
	}
	return total
}

// IndicatorReport is one ministry's program-level report row.
type IndicatorReport struct {
	ID                 string        `db:"id" json:"id"`
	OrgID              string        `db:"org_id" json:"org_id"`
	OrgName            string        `db:"org_name" json:"org_name"`
	Program            string        `db:"program" json:"program"`
	TotalResourceCount float64       `db:"total_resource_count" json:"total_resource_count"`
	Indicators         IndicatorList `db:"indicators" json:"indicators"`
	Status             ReportStatus  `db:"status" json:"status"`
	ApprovedBy         *string       `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt         *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
	RejectionReason    *string       `db:"rejection_reason" json:"rejection_reason,omitempty"`
	SubmittedAt        *time.Time    `db:"submitted_at" json:"submitted_at,omitempty"`
	Active             bool          `db:"active" json:"active"`
	CreatedBy          string        `db:"created_by" json:"created_by"`
	UpdatedBy          *string       `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// ReportFilter constrains listing queries.
type ReportFilter struct {
	OrgID    string
	Status   ReportStatus
	Search   string
	Year     int
	Page     int
	PageSize int
}

// OrgSummary aggregates category counts for one organization across the
// approved reports used by the public dashboard.
type OrgSummary struct {
	OrgID       string `json:"org_id"`
	OrgName     string `json:"org_name"`
	Achieved    int    `json:"achieved"`
	NotAchieved int    `json:"not_achieved"`
	NotReported int    `json:"not_reported"`
}
