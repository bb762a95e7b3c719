package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mfauzi77/paudhi-backend/internal/models"
)

// ReportRepository provides database access for indicator reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, org_id, org_name, program, total_resource_count, indicators, status, approved_by, approved_at, rejection_reason, submitted_at, active, created_by, updated_by, created_at, updated_at`

// Create inserts a new report row.
func (r *ReportRepository) Create(ctx context.Context, report *models.IndicatorReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	const query = `INSERT INTO indicator_reports (id, org_id, org_name, program, total_resource_count, indicators, status, active, created_by, created_at, updated_at)
		VALUES (:id, :org_id, :org_name, :program, :total_resource_count, :indicators, :status, :active, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// FindByID returns one report row by identifier.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.IndicatorReport, error) {
	query := `SELECT ` + reportColumns + ` FROM indicator_reports WHERE id = $1 AND active = true LIMIT 1`
	var report models.IndicatorReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find report by id: %w", err)
	}
	return &report, nil
}

// Update persists the editable content fields of a report.
func (r *ReportRepository) Update(ctx context.Context, report *models.IndicatorReport) error {
	report.UpdatedAt = time.Now().UTC()
	const query = `UPDATE indicator_reports SET program = :program, indicators = :indicators,
		total_resource_count = :total_resource_count, status = :status, approved_by = :approved_by,
		approved_at = :approved_at, rejection_reason = :rejection_reason, submitted_at = :submitted_at,
		updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	return nil
}

// List returns reports matching the filter with total count. An empty
// filter.OrgID means no organization restriction.
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.IndicatorReport, int, error) {
	baseQuery := `FROM indicator_reports WHERE active = true`
	var conditions []string
	var args []interface{}

	if filter.OrgID != "" {
		conditions = append(conditions, fmt.Sprintf("org_id = $%d", len(args)+1))
		args = append(args, filter.OrgID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(program) LIKE $%d OR LOWER(org_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Year > 0 {
		// Containment match against the indicators JSONB shape.
		conditions = append(conditions, fmt.Sprintf("indicators @> $%d", len(args)+1))
		args = append(args, fmt.Sprintf(`[{"years": [{"year": %d}]}]`, filter.Year))
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(1) ` + baseQuery
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT `+reportColumns+` %s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`,
		baseQuery, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	reports := []models.IndicatorReport{}
	if err := r.db.SelectContext(ctx, &reports, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	return reports, total, nil
}

// ListByStatus returns every active report in the given status.
func (r *ReportRepository) ListByStatus(ctx context.Context, status models.ReportStatus) ([]models.IndicatorReport, error) {
	query := `SELECT ` + reportColumns + ` FROM indicator_reports WHERE active = true AND status = $1 ORDER BY org_id, program`
	reports := []models.IndicatorReport{}
	if err := r.db.SelectContext(ctx, &reports, query, status); err != nil {
		return nil, fmt.Errorf("list reports by status: %w", err)
	}
	return reports, nil
}

// FindOwnership returns the stored organization per id for bulk validation.
func (r *ReportRepository) FindOwnership(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, org_id FROM indicator_reports WHERE active = true AND id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build ownership query: %w", err)
	}
	query = r.db.Rebind(query)

	rows := []struct {
		ID    string `db:"id"`
		OrgID string `db:"org_id"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find report ownership: %w", err)
	}

	owners := make(map[string]string, len(rows))
	for _, row := range rows {
		owners[row.ID] = row.OrgID
	}
	return owners, nil
}

// SoftDelete marks one report inactive.
func (r *ReportRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	const query = `UPDATE indicator_reports SET active = false, updated_by = $2, updated_at = $3 WHERE id = $1 AND active = true`
	res, err := r.db.ExecContext(ctx, query, id, actorID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BulkSoftDelete marks the given reports inactive one by one and returns how
// many rows were touched. Partial failure leaves earlier deletions applied.
func (r *ReportRepository) BulkSoftDelete(ctx context.Context, ids []string, actorID string) (int, error) {
	deleted := 0
	for _, id := range ids {
		err := r.SoftDelete(ctx, id, actorID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// ListYears returns the distinct reporting years present in active reports,
// newest first.
func (r *ReportRepository) ListYears(ctx context.Context) ([]int, error) {
	const query = `SELECT DISTINCT (year_rec->>'year')::int AS year
		FROM indicator_reports,
			jsonb_array_elements(indicators) AS ind,
			jsonb_array_elements(ind->'years') AS year_rec
		WHERE active = true
		ORDER BY year DESC`
	years := []int{}
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list report years: %w", err)
	}
	return years, nil
}

// CountByStatus aggregates active report counts per workflow state.
func (r *ReportRepository) CountByStatus(ctx context.Context) (map[models.ReportStatus]int, error) {
	const query = `SELECT status, COUNT(1) AS count FROM indicator_reports WHERE active = true GROUP BY status`
	rows := []struct {
		Status models.ReportStatus `db:"status"`
		Count  int                 `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count reports by status: %w", err)
	}
	counts := make(map[models.ReportStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
