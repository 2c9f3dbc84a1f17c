package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/internal/service/notification"
)

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func mapNotificationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, notification.ErrNotificationNotFound):
		return notFound(c, err.Error())
	default:
		return fallbackError(c, err)
	}
}

// GET /notifications
func (h *NotificationHandler) List(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	var q struct {
		UnreadOnly bool `query:"unread_only"`
		Limit      int  `query:"limit"`
	}
	_ = c.Bind().Query(&q)

	notifs, err := h.svc.List(c.Context(), caller.UserID, q.UnreadOnly, q.Limit)
	if err != nil {
		return mapNotificationError(c, err)
	}
	if notifs == nil {
		notifs = []*schema.Notification{}
	}

	return ok(c, fiber.Map{"notifications": notifs})
}

// PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	if err := h.svc.MarkRead(c.Context(), notifID, caller.UserID); err != nil {
		return mapNotificationError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}
