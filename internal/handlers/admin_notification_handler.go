package handlers

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vidora/backend/internal/models"
	"github.com/vidora/backend/internal/repositories"
)

// AdminNotificationHandler handles admin-dashboard notification requests
type AdminNotificationHandler struct {
	adminNotificationRepository repositories.AdminNotificationRepository
}

// NewAdminNotificationHandler creates a new AdminNotificationHandler
func NewAdminNotificationHandler(repo repositories.AdminNotificationRepository) *AdminNotificationHandler {
	return &AdminNotificationHandler{adminNotificationRepository: repo}
}

// RegisterAdminNotificationRoutes registers admin notification routes
func (h *AdminNotificationHandler) RegisterAdminNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PATCH("/notifications/:id/read", h.MarkAsRead)
	g.PATCH("/notifications/read-all", h.MarkAllAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// GetNotifications returns paginated admin notifications
func (h *AdminNotificationHandler) GetNotifications(c echo.Context) error {
	page, limit := parsePagination(c)
	filter := models.NotificationListFilter(c.QueryParam("filter"))
	if filter != models.FilterAll && filter != models.FilterRead && filter != models.FilterUnread {
		return echo.NewHTTPError(http.StatusBadRequest, "filter must be read or unread")
	}

	notifications, total, unreadCount, err := h.adminNotificationRepository.List(c.Request().Context(), page, limit, filter)
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

// GetUnreadCount returns the unread admin notification count
func (h *AdminNotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.adminNotificationRepository.UnreadCount(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"unreadCount": count}})
}

// MarkAsRead marks one admin notification as read. Idempotent.
func (h *AdminNotificationHandler) MarkAsRead(c echo.Context) error {
	if err := h.adminNotificationRepository.MarkRead(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// MarkAllAsRead marks every admin notification as read
func (h *AdminNotificationHandler) MarkAllAsRead(c echo.Context) error {
	if err := h.adminNotificationRepository.MarkAllRead(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// DeleteNotification soft-deletes one admin notification
func (h *AdminNotificationHandler) DeleteNotification(c echo.Context) error {
	if err := h.adminNotificationRepository.SoftDelete(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}
