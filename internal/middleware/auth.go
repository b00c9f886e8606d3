package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/amercier/taskdeck-api/internal/models"
	"github.com/amercier/taskdeck-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const UserKey = "current_user"

// AccountChecker resolves the live account behind a token and enforces
// validity (missing, trashed or expired accounts are rejected). Implemented
// by services.UserService.
type AccountChecker interface {
	CheckActive(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth validates the bearer token, then resolves the account record. An
// expired non-admin account is trashed by the check itself, so the 403 the
// caller sees is already final.
func Auth(jwtService *services.JWTService, accounts AccountChecker) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		user, err := accounts.CheckActive(context.Background(), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrAccessExpired):
				c.Forbidden("access expired, contact the administrator")
			case errors.Is(err, services.ErrUserNotFound):
				c.NotFound("user not found")
			default:
				c.InternalServerError("failed to resolve account")
			}
			return
		}

		c.Set(UserKey, user)

		c.Next()
	}
}

// RequireRole rejects requests whose resolved account holds none of the given
// roles. Must run after Auth.
func RequireRole(roles ...models.Role) drift.HandlerFunc {
	return func(c *drift.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.Unauthorized("not authenticated")
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.Forbidden("forbidden")
	}
}

// CurrentUser returns the account resolved by Auth, or nil.
func CurrentUser(c *drift.Context) *models.User {
	if v, ok := c.Get(UserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func GetUserID(c *drift.Context) uuid.UUID {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return uuid.Nil
}
