package handlers

import (
	"math"
	"net/http"

	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor models.UserCompact `json:"actor"`
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID, err := resolveViewer(c, 0)
	if err != nil {
		return err
	}
	page, limit := FeedLimits{Default: 20, Max: 50}.fromQuery(c)
	ctx := c.Request().Context()

	notifications, total, err := h.notificationRepository.GetByRecipientID(ctx, currentUserID, page, limit)
	if err != nil {
		return err
	}

	actorIDs := make([]uint, 0, len(notifications))
	for _, n := range notifications {
		actorIDs = append(actorIDs, n.ActorID)
	}
	actors, err := h.userRepository.GetUsersByIDs(ctx, actorIDs)
	if err != nil {
		return err
	}
	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n, Actor: models.UserCompact{ID: n.ActorID}}
		if actor, ok := actors[n.ActorID]; ok {
			enriched[i].Actor = actor.ToCompact()
		}
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": enriched,
		},
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

// GetUnreadCount returns how many notifications the viewer has not read
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID, err := resolveViewer(c, 0)
	if err != nil {
		return err
	}
	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAllAsRead marks every notification of the viewer as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID, err := resolveViewer(c, 0)
	if err != nil {
		return err
	}
	if err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), currentUserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
