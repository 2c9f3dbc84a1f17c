package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindcare_backend/pkg/authorize"
)

func (r *Router) registerNotificationRoutes(
	api fiber.Router,
	nh *handler.NotificationHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	notifs := api.Group("/notifications", authRequired)

	notifs.Get("/", requirePerm(authorize.ResourceNotification, authorize.ActionList), nh.List)
	notifs.Put("/:id/read", requirePerm(authorize.ResourceNotification, authorize.ActionUpdate), nh.MarkRead)
}
