package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindcare_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/mindcare_backend/pkg/authorize"
)

func (r *Router) registerPsychologistRoutes(
	api fiber.Router,
	ph *handler.PsychologistHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	psy := api.Group("/psychologist", authRequired, middleware.RequireRole(authorize.RolePsychologist))

	psy.Post("/invite", requirePerm(authorize.ResourceInvite, authorize.ActionCreate), ph.GenerateInvite)
	psy.Get("/patients", requirePerm(authorize.ResourcePatient, authorize.ActionList), ph.Patients)
	psy.Get("/me", requirePerm(authorize.ResourceProfile, authorize.ActionRead), ph.Me)
	psy.Get("/crises", requirePerm(authorize.ResourceCrisis, authorize.ActionList), ph.Crises)
}
