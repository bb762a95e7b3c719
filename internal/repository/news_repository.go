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

// NewsRepository provides database access for news articles.
type NewsRepository struct {
	db *sqlx.DB
}

// NewNewsRepository creates a new instance of NewsRepository.
func NewNewsRepository(db *sqlx.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

const newsColumns = `id, title, content, excerpt, image, author_id, status, approved_by, approved_at, published_at, source, category, active, views, likes, created_at, updated_at`

// Create inserts a new article row.
func (r *NewsRepository) Create(ctx context.Context, article *models.NewsArticle) error {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now

	const query = `INSERT INTO news (id, title, content, excerpt, image, author_id, status, approved_by, approved_at, published_at, source, category, active, views, likes, created_at, updated_at)
		VALUES (:id, :title, :content, :excerpt, :image, :author_id, :status, :approved_by, :approved_at, :published_at, :source, :category, :active, :views, :likes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, article); err != nil {
		return fmt.Errorf("insert news: %w", err)
	}
	return nil
}

// FindByID returns one article by identifier.
func (r *NewsRepository) FindByID(ctx context.Context, id string) (*models.NewsArticle, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE id = $1 AND active = true LIMIT 1`
	var article models.NewsArticle
	if err := r.db.GetContext(ctx, &article, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find news by id: %w", err)
	}
	return &article, nil
}

// Update persists the mutable fields of an article.
func (r *NewsRepository) Update(ctx context.Context, article *models.NewsArticle) error {
	article.UpdatedAt = time.Now().UTC()
	const query = `UPDATE news SET title = :title, content = :content, excerpt = :excerpt, image = :image,
		status = :status, approved_by = :approved_by, approved_at = :approved_at, published_at = :published_at,
		source = :source, category = :category, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, article); err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	return nil
}

// List returns articles matching the filter with total count.
func (r *NewsRepository) List(ctx context.Context, filter models.NewsFilter) ([]models.NewsArticle, int, error) {
	baseQuery := `FROM news WHERE active = true`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.AuthorID != "" {
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", len(args)+1))
		args = append(args, filter.AuthorID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(excerpt) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(1) ` + baseQuery
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
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

	listQuery := fmt.Sprintf(`SELECT `+newsColumns+` %s ORDER BY COALESCE(published_at, created_at) DESC LIMIT $%d OFFSET $%d`,
		baseQuery, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	articles := []models.NewsArticle{}
	if err := r.db.SelectContext(ctx, &articles, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}
	return articles, total, nil
}

// IncrementViews bumps the view counter atomically at the database.
func (r *NewsRepository) IncrementViews(ctx context.Context, id string) error {
	const query = `UPDATE news SET views = views + 1 WHERE id = $1 AND active = true`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment news views: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementLikes bumps the like counter atomically at the database.
func (r *NewsRepository) IncrementLikes(ctx context.Context, id string) (int64, error) {
	const query = `UPDATE news SET likes = likes + 1 WHERE id = $1 AND active = true RETURNING likes`
	var likes int64
	if err := r.db.GetContext(ctx, &likes, query, id); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("increment news likes: %w", err)
	}
	return likes, nil
}

// SoftDelete marks one article inactive.
func (r *NewsRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE news SET active = false, updated_at = $2 WHERE id = $1 AND active = true`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus aggregates active article counts per publication state.
func (r *NewsRepository) CountByStatus(ctx context.Context) (map[models.NewsStatus]int, error) {
	const query = `SELECT status, COUNT(1) AS count FROM news WHERE active = true GROUP BY status`
	rows := []struct {
		Status models.NewsStatus `db:"status"`
		Count  int               `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count news by status: %w", err)
	}
	counts := make(map[models.NewsStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
