package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-inbox/internal/api/dto"
	"github.com/spec-kit/support-inbox/internal/service"
)

// NotificationsHandler serves the caller's notification inbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /api/notifications?limit=.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	items, err := h.notifications.List(c.UserContext(), id.UserID, parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewNotificationResponses(items))
}

// UnreadCount GET /api/notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.CountResponse{Count: count})
}

// MarkRead PATCH /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	resourceID, err := pathID(c)
	if err != nil {
		return err
	}
	item, err := h.notifications.MarkRead(c.UserContext(), id.UserID, resourceID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewNotificationResponse(item))
}

// MarkAllRead PATCH /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	updated, err := h.notifications.MarkAllRead(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.CountResponse{Count: updated})
}

// Delete DELETE /api/notifications/:id.
func (h *NotificationsHandler) Delete(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	resourceID, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.notifications.Delete(c.UserContext(), id.UserID, resourceID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Clear DELETE /api/notifications.
func (h *NotificationsHandler) Clear(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	removed, err := h.notifications.Clear(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.CountResponse{Count: removed})
}
