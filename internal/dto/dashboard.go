package dto

import "github.com/mfauzi77/paudhi-backend/internal/models"

// PublicDashboardResponse is the cached aggregate served on the public site.
// Only approved reports contribute to its figures.
type PublicDashboardResponse struct {
	TotalReports       int                 `json:"total_reports"`
	TotalOrgs          int                 `json:"total_orgs"`
	TotalResourceCount float64             `json:"total_resource_count"`
	Categories         CategoryBreakdown   `json:"categories"`
	PerOrg             []models.OrgSummary `json:"per_org"`
}

// CategoryBreakdown totals year records by achievement category.
type CategoryBreakdown struct {
	Achieved    int `json:"achieved"`
	NotAchieved int `json:"not_achieved"`
	NotReported int `json:"not_reported"`
}

// AdminDashboardResponse summarises workload for signed-in staff.
type AdminDashboardResponse struct {
	PendingReports  int `json:"pending_reports"`
	ApprovedReports int `json:"approved_reports"`
	RejectedReports int `json:"rejected_reports"`
	DraftReports    int `json:"draft_reports"`
	PublishedNews   int `json:"published_news"`
	DraftNews       int `json:"draft_news"`
	ActiveUsers     int `json:"active_users"`
}
