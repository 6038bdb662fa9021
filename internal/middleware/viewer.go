package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserLookup loads a local user by ID
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// LoadViewer runs after an auth middleware. It rejects deleted and banned
// accounts and records whether the viewer is an admin.
func LoadViewer(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(ContextUserID).(uint)
			if userID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			user, err := users.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repositories.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
				}
				return err
			}
			if user.IsBanned {
				return echo.NewHTTPError(http.StatusForbidden, "This account has been suspended")
			}

			c.Set(ContextIsAdmin, user.IsAdmin)
			return next(c)
		}
	}
}

// RequireAdmin rejects viewers without the admin flag
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isAdmin, _ := c.Get(ContextIsAdmin).(bool); !isAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}
