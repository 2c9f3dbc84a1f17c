package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindcare_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/mindcare_backend/pkg/authorize"
)

func (r *Router) registerPatientRoutes(
	api fiber.Router,
	ph *handler.PatientHandler,
	publicKey fiber.Handler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	patient := api.Group("/patient")

	// Reached before an account exists.
	patient.Post("/validate-invite", publicKey, ph.ValidateInvite)

	onlyPatients := middleware.RequireRole(authorize.RolePatient)
	patient.Get("/me", authRequired, onlyPatients, requirePerm(authorize.ResourceProfile, authorize.ActionRead), ph.Me)
	patient.Get("/crises", authRequired, onlyPatients, requirePerm(authorize.ResourceCrisis, authorize.ActionList), ph.Crises)
}
