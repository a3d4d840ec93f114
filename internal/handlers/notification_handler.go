package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vidora/backend/internal/models"
	"github.com/vidora/backend/internal/notify"
	"github.com/vidora/backend/internal/repositories"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	deviceTokenRepository  repositories.DeviceTokenRepository
	dispatcher             *notify.Dispatcher
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, tokenRepo repositories.DeviceTokenRepository, dispatcher *notify.Dispatcher) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		deviceTokenRepository:  tokenRepo,
		dispatcher:             dispatcher,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PATCH("/notifications/:id/read", h.MarkAsRead)
	g.PATCH("/notifications/read-all", h.MarkAllAsRead)
	g.DELETE("/notifications/clear-all", h.ClearAll)
	g.DELETE("/notifications/:id", h.DeleteNotification)
	g.POST("/notifications/register-token", h.RegisterToken)
	g.DELETE("/notifications/unregister-token", h.UnregisterToken)
	g.POST("/notifications/test", h.TestNotification)
}

// parsePagination reads page/limit query parameters with the usual bounds
func parsePagination(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit
}

// GetNotifications returns paginated notifications for the caller
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, limit := parsePagination(c)
	filter := models.NotificationListFilter(c.QueryParam("filter"))
	if filter != models.FilterAll && filter != models.FilterRead && filter != models.FilterUnread {
		return echo.NewHTTPError(http.StatusBadRequest, "filter must be read or unread")
	}

	notifications, total, unreadCount, err := h.notificationRepository.List(c.Request().Context(), currentUserID, page, limit, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": notifications,
			"pagination": echo.Map{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": int(math.Ceil(float64(total) / float64(limit))),
			},
			"unreadCount": unreadCount,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationRepository.UnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"unreadCount": count}})
}

// MarkAsRead marks a notification as read. Idempotent.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notificationRepository.MarkRead(c.Request().Context(), c.Param("id"), currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// MarkAllAsRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notificationRepository.MarkAllRead(c.Request().Context(), currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// DeleteNotification soft-deletes one notification
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notificationRepository.SoftDelete(c.Request().Context(), c.Param("id"), currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// ClearAll soft-deletes all of the caller's notifications
func (h *NotificationHandler) ClearAll(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notificationRepository.ClearAll(c.Request().Context(), currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// RegisterToken registers or refreshes an FCM device token
func (h *NotificationHandler) RegisterToken(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RegisterTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.deviceTokenRepository.Upsert(c.Request().Context(), currentUserID, req.FCMToken, models.DeviceType(req.DeviceType), req.DeviceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"registered": true}})
}

// UnregisterToken removes an FCM device token
func (h *NotificationHandler) UnregisterToken(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UnregisterTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.deviceTokenRepository.Remove(c.Request().Context(), currentUserID, req.DeviceID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"unregistered": true}})
}

// TestNotification sends the caller a notification (development helper)
func (h *NotificationHandler) TestNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.TestNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payload := models.NotificationPayload{
		Recipient: currentUserID,
		Type:      models.NotificationSystem,
		Title:     "Test Notification",
		Message:   "This is a test notification",
		Priority:  models.PriorityHigh,
	}
	if req.Type != "" {
		payload.Type = models.NotificationType(req.Type)
	}
	if req.Title != "" {
		payload.Title = req.Title
	}
	if req.Message != "" {
		payload.Message = req.Message
	}

	notification, err := h.dispatcher.Send(c.Request().Context(), payload)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": notification})
}
