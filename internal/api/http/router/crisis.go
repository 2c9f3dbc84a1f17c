package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindcare_backend/pkg/authorize"
)

func (r *Router) registerCrisisRoutes(
	api fiber.Router,
	ch *handler.CrisisHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	crisis := api.Group("/crisis", authRequired)

	crisis.Post("/create", requirePerm(authorize.ResourceCrisis, authorize.ActionCreate), ch.Create)
	crisis.Put("/:id/status", requirePerm(authorize.ResourceCrisis, authorize.ActionUpdate), ch.SetStatus)
	crisis.Get("/:id", requirePerm(authorize.ResourceCrisis, authorize.ActionRead), ch.Get)
}
