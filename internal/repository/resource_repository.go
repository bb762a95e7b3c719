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

// ResourceRepository provides database access for the learning library.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository creates a new instance of ResourceRepository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

const resourceColumns = `id, title, description, type, category, author, age_group, aspect, tags, thumbnail, url, org_id, org_name, active, views, downloads, created_by, updated_by, created_at, updated_at`

// Create inserts a new resource row.
func (r *ResourceRepository) Create(ctx context.Context, res *models.LearningResource) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now

	const query = `INSERT INTO learning_resources (id, title, description, type, category, author, age_group, aspect, tags, thumbnail, url, org_id, org_name, active, created_by, created_at, updated_at)
		VALUES (:id, :title, :description, :type, :category, :author, :age_group, :aspect, :tags, :thumbnail, :url, :org_id, :org_name, :active, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, res); err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

// FindByID returns one resource by identifier.
func (r *ResourceRepository) FindByID(ctx context.Context, id string) (*models.LearningResource, error) {
	query := `SELECT ` + resourceColumns + ` FROM learning_resources WHERE id = $1 AND active = true LIMIT 1`
	var res models.LearningResource
	if err := r.db.GetContext(ctx, &res, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find resource by id: %w", err)
	}
	return &res, nil
}

// Update persists the mutable fields of a resource.
func (r *ResourceRepository) Update(ctx context.Context, res *models.LearningResource) error {
	res.UpdatedAt = time.Now().UTC()
	const query = `UPDATE learning_resources SET title = :title, description = :description, type = :type,
		category = :category, author = :author, age_group = :age_group, aspect = :aspect, tags = :tags,
		thumbnail = :thumbnail, url = :url, active = :active, updated_by = :updated_by, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, res); err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	return nil
}

// List returns resources matching the filter with total count.
func (r *ResourceRepository) List(ctx context.Context, filter models.ResourceFilter) ([]models.LearningResource, int, error) {
	baseQuery := `FROM learning_resources WHERE 1=1`
	var conditions []string
	var args []interface{}

	if !filter.IncludeHidden {
		conditions = append(conditions, "active = true")
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.OrgID != "" {
		conditions = append(conditions, fmt.Sprintf("org_id = $%d", len(args)+1))
		args = append(args, filter.OrgID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(1) ` + baseQuery
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count resources: %w", err)
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

	listQuery := fmt.Sprintf(`SELECT `+resourceColumns+` %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		baseQuery, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	resources := []models.LearningResource{}
	if err := r.db.SelectContext(ctx, &resources, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}
	return resources, total, nil
}

// IncrementViews bumps the view counter atomically at the database.
func (r *ResourceRepository) IncrementViews(ctx context.Context, id string) error {
	const query = `UPDATE learning_resources SET views = views + 1 WHERE id = $1 AND active = true`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment resource views: %w", err)
	}
	return nil
}

// IncrementDownloads bumps the download counter atomically at the database.
func (r *ResourceRepository) IncrementDownloads(ctx context.Context, id string) error {
	const query = `UPDATE learning_resources SET downloads = downloads + 1 WHERE id = $1 AND active = true`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment resource downloads: %w", err)
	}
	return nil
}

// SoftDelete marks one resource inactive.
func (r *ResourceRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	const query = `UPDATE learning_resources SET active = false, updated_by = $2, updated_at = $3 WHERE id = $1 AND active = true`
	res, err := r.db.ExecContext(ctx, query, id, actorID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// StatsByType aggregates per-type counts and counters for the library stats
// endpoint.
func (r *ResourceRepository) StatsByType(ctx context.Context) ([]models.ResourceStatsSummary, error) {
	const query = `SELECT type, COUNT(1) AS count, COALESCE(SUM(views), 0) AS views, COALESCE(SUM(downloads), 0) AS downloads
		FROM learning_resources WHERE active = true GROUP BY type ORDER BY type`
	stats := []models.ResourceStatsSummary{}
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("resource stats by type: %w", err)
	}
	return stats, nil
}
