package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfauzi77/paudhi-backend/internal/models"
)

func newsRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "content", "excerpt", "image", "author_id", "status", "approved_by", "approved_at", "published_at", "source", "category", "active", "views", "likes", "created_at", "updated_at"}).
		AddRow("n1", "Gerakan Transisi PAUD", "isi", "ringkasan", nil, "u1", string(models.NewsStatusPublish), "u2", now, now, "Kementerian Kesehatan", "program", true, int64(10), int64(2), now, now)
}

func TestFindNewsByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + newsColumns + " FROM news WHERE id = $1 AND active = true LIMIT 1")).
		WithArgs("n1").
		WillReturnRows(newsRows(time.Now()))

	article, err := repo.FindByID(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, models.NewsStatusPublish, article.Status)
	assert.EqualValues(t, 10, article.Views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementViews(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE news SET views = views + 1 WHERE id = $1 AND active = true")).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementViews(context.Background(), "n1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementLikesReturnsNewCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	rows := sqlmock.NewRows([]string{"likes"}).AddRow(int64(3))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE news SET likes = likes + 1 WHERE id = $1 AND active = true RETURNING likes")).
		WithArgs("n1").
		WillReturnRows(rows)

	likes, err := repo.IncrementLikes(context.Background(), "n1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementViewsMissingArticle(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectExec("UPDATE news SET views = views").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementViews(context.Background(), "missing")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
