package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/kratos-hub/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// FeedLimits bounds page sizes of list endpoints
type FeedLimits struct {
	Default int
	Max     int
}

// DefaultFeedLimits are used when a handler is built with zero limits
var DefaultFeedLimits = FeedLimits{Default: 10, Max: 50}

func (l FeedLimits) orDefault() FeedLimits {
	if l.Default <= 0 || l.Max <= 0 {
		return DefaultFeedLimits
	}
	return l
}

// normalize applies page/limit defaults; page starts at 1
func (l FeedLimits) normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = l.Default
	}
	if limit > l.Max {
		limit = l.Max
	}
	return page, limit
}

func (l FeedLimits) fromQuery(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return l.normalize(page, limit)
}

func getUserIDFromContext(c echo.Context) uint {
	userID, _ := c.Get(middleware.ContextUserID).(uint)
	return userID
}

func isAdmin(c echo.Context) bool {
	admin, _ := c.Get(middleware.ContextIsAdmin).(bool)
	return admin
}

// resolveViewer checks a client-supplied user ID against the authenticated
// viewer. Zero stands for the viewer.
func resolveViewer(c echo.Context, requested uint) (uint, error) {
	viewerID := getUserIDFromContext(c)
	if viewerID == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if requested != 0 && requested != viewerID {
		return 0, echo.NewHTTPError(http.StatusForbidden, "userId does not match the authenticated user")
	}
	return viewerID, nil
}

// bindAndValidate binds the request into req and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}
