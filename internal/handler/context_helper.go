package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mfauzi77/paudhi-backend/internal/middleware"
	"github.com/mfauzi77/paudhi-backend/internal/models"
)

func userFromContext(c *gin.Context) *models.User {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func pageParams(c *gin.Context) (page, pageSize int) {
	page = queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = queryInt(c, "page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func pagination(page, pageSize, total int) *models.Pagination {
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
