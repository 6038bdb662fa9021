package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// AdminHandler serves user moderation for admins
type AdminHandler struct {
	userRepository repositories.UserRepository
	log            logrus.FieldLogger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(userRepo repositories.UserRepository, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{userRepository: userRepo, log: log}
}

// RegisterAdminRoutes registers moderation routes on an admin-only group
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.PUT("/users/:id/ban", h.BanUser)
	g.PUT("/users/:id/unban", h.UnbanUser)
	g.DELETE("/users/:id", h.DeleteUser)
}

// ListUsers searches users by name or email. An empty q lists everyone.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, limit := FeedLimits{Default: 20, Max: 100}.fromQuery(c)

	users, total, err := h.userRepository.SearchUsers(c.Request().Context(), c.QueryParam("q"), (page-1)*limit, limit)
	if err != nil {
		return err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"users": users},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

func (h *AdminHandler) BanUser(c echo.Context) error {
	return h.setBanned(c, true)
}

func (h *AdminHandler) UnbanUser(c echo.Context) error {
	return h.setBanned(c, false)
}

func (h *AdminHandler) setBanned(c echo.Context, banned bool) error {
	targetID, err := h.targetUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userRepository.SetBanned(c.Request().Context(), targetID, banned)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}
	h.log.WithFields(logrus.Fields{
		"admin_id":  getUserIDFromContext(c),
		"target_id": targetID,
		"banned":    banned,
	}).Info("User moderation updated")

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"user": user}})
}

// DeleteUser soft-deletes a user account
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	targetID, err := h.targetUserID(c)
	if err != nil {
		return err
	}

	if err := h.userRepository.DeleteUser(c.Request().Context(), targetID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}
	h.log.WithFields(logrus.Fields{
		"admin_id":  getUserIDFromContext(c),
		"target_id": targetID,
	}).Info("User deleted")

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"deleted": true}})
}

// targetUserID parses the :id path parameter; admins cannot moderate themselves
func (h *AdminHandler) targetUserID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if uint(id) == getUserIDFromContext(c) {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "You cannot moderate your own account")
	}
	return uint(id), nil
}
