package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindcare_backend/pkg/authorize"
)

func (r *Router) registerChatRoutes(
	api fiber.Router,
	ch *handler.ChatHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	chat := api.Group("/chat", authRequired)

	chat.Post("/message", requirePerm(authorize.ResourceMessage, authorize.ActionCreate), ch.Send)
	chat.Get("/messages/:recipientId", requirePerm(authorize.ResourceMessage, authorize.ActionList), ch.Messages)
}
