package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mfauzi77/paudhi-backend/internal/models"
	"github.com/mfauzi77/paudhi-backend/internal/service"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
	"github.com/mfauzi77/paudhi-backend/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated user.
const ContextUserKey = "currentUser"

// UserLoader resolves the full account record for validated claims. The
// stored permission set and active flag are authoritative, not the token.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// JWT protects routes by requiring a valid access token backed by an
// active account.
func JWT(authService *service.AuthService, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c, authService, users)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// OptionalJWT attaches the user when a valid token is present but never
// blocks the request.
func OptionalJWT(authService *service.AuthService, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolveUser(c, authService, users); err == nil {
			c.Set(ContextUserKey, user)
		}
		c.Next()
	}
}

func resolveUser(c *gin.Context, authService *service.AuthService, users UserLoader) (*models.User, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, appErrors.ErrUnauthorized
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		return nil, err
	}

	user, err := users.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account is deactivated")
	}
	return user, nil
}
