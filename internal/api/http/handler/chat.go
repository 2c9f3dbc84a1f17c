package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/internal/service/conversation"
)

type ChatHandler struct {
	svc conversation.Service
}

func NewChatHandler(svc conversation.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// POST /chat/message
func (h *ChatHandler) Send(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		RecipientID string `json:"recipientId"`
		Text        string `json:"text"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	recipientID, err := uuid.Parse(body.RecipientID)
	if err != nil {
		return badRequest(c, "invalid recipientId")
	}

	msg, err := h.svc.Append(c.Context(), caller.UserID, recipientID, body.Text)
	if err != nil {
		return mapChatError(c, err)
	}

	return created(c, fiber.Map{"message": msg})
}

// GET /chat/messages/:recipientId
func (h *ChatHandler) Messages(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	peerID, err := uuid.Parse(c.Params("recipientId"))
	if err != nil {
		return badRequest(c, "invalid recipientId")
	}

	msgs, err := h.svc.History(c.Context(), caller.UserID, peerID)
	if err != nil {
		return mapChatError(c, err)
	}
	if msgs == nil {
		msgs = []*schema.Message{}
	}

	return ok(c, fiber.Map{"messages": msgs})
}

func mapChatError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, conversation.ErrSenderNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, conversation.ErrEmptyText),
		errors.Is(err, conversation.ErrTextTooLong),
		errors.Is(err, conversation.ErrInvalidRecipient):
		return badRequest(c, err.Error())
	default:
		return fallbackError(c, err)
	}
}
