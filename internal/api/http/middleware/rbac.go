package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/pkg/authorize"
)

// RequirePermission enforces the role policy for the caller set by
// AuthRequired. Ownership of the record is left to the service.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		caller, ok := CallerFromFiber(c)
		if !ok {
			return unauthorized(c)
		}

		if err := auth.MustEnforce(c.Context(), authorize.Role(caller.Role), resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return forbidden(c)
			}
			return err
		}

		return c.Next()
	}
}

// RequireRole narrows a route to one account role, for endpoints such as
// /patient/me whose meaning depends on who is asking.
func RequireRole(role authorize.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		caller, ok := CallerFromFiber(c)
		if !ok {
			return unauthorized(c)
		}
		if authorize.Role(caller.Role) != role {
			return forbidden(c)
		}
		return c.Next()
	}
}
