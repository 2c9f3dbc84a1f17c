package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(api fiber.Router, h *handler.AuthHandler, publicKey, authRequired fiber.Handler) {
	group := api.Group("/auth")
	group.Post("/psychologist/signup", publicKey, h.SignupPsychologist)
	group.Post("/patient/signup", publicKey, h.SignupPatient)
	group.Post("/login", publicKey, h.Login)
	group.Post("/refresh", publicKey, h.Refresh)
	group.Post("/logout", authRequired, h.Logout)
}
