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

// FAQRepository provides database access for FAQ entries.
type FAQRepository struct {
	db *sqlx.DB
}

// NewFAQRepository creates a new instance of FAQRepository.
func NewFAQRepository(db *sqlx.DB) *FAQRepository {
	return &FAQRepository{db: db}
}

const faqColumns = `id, question, answer, category, tags, sort_order, active, created_by, created_at, updated_at`

// Create inserts a new FAQ row.
func (r *FAQRepository) Create(ctx context.Context, faq *models.FAQ) error {
	if faq.ID == "" {
		faq.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	faq.CreatedAt = now
	faq.UpdatedAt = now

	const query = `INSERT INTO faqs (id, question, answer, category, tags, sort_order, active, created_by, created_at, updated_at)
		VALUES (:id, :question, :answer, :category, :tags, :sort_order, :active, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, faq); err != nil {
		return fmt.Errorf("insert faq: %w", err)
	}
	return nil
}

// FindByID returns one FAQ entry by identifier.
func (r *FAQRepository) FindByID(ctx context.Context, id string) (*models.FAQ, error) {
	query := `SELECT ` + faqColumns + ` FROM faqs WHERE id = $1 LIMIT 1`
	var faq models.FAQ
	if err := r.db.GetContext(ctx, &faq, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find faq by id: %w", err)
	}
	return &faq, nil
}

// Update persists the mutable fields of a FAQ entry.
func (r *FAQRepository) Update(ctx context.Context, faq *models.FAQ) error {
	faq.UpdatedAt = time.Now().UTC()
	const query = `UPDATE faqs SET question = :question, answer = :answer, category = :category,
		tags = :tags, sort_order = :sort_order, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, faq); err != nil {
		return fmt.Errorf("update faq: %w", err)
	}
	return nil
}

// List returns FAQ entries ordered for display.
func (r *FAQRepository) List(ctx context.Context, filter models.FAQFilter) ([]models.FAQ, error) {
	baseQuery := `SELECT ` + faqColumns + ` FROM faqs WHERE 1=1`
	var conditions []string
	var args []interface{}

	if !filter.IncludeHidden {
		conditions = append(conditions, "active = true")
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(question) LIKE $%d OR LOWER(answer) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY sort_order ASC, created_at ASC"

	faqs := []models.FAQ{}
	if err := r.db.SelectContext(ctx, &faqs, baseQuery, args...); err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	return faqs, nil
}

// UpdateSortOrder sets the display position of one entry.
func (r *FAQRepository) UpdateSortOrder(ctx context.Context, id string, sortOrder int) error {
	const query = `UPDATE faqs SET sort_order = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, sortOrder, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update faq sort order: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a FAQ entry permanently.
func (r *FAQRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM faqs WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete faq: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
