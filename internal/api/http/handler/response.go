package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
	"github.com/Alijeyrad/mindcare_backend/pkg/reqctx"
)

func ok(c fiber.Ctx, body fiber.Map) error {
	return c.JSON(body)
}

func created(c fiber.Ctx, body fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(body)
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func forbidden(c fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
}

func notFound(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func conflict(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msg})
}

func serviceUnavailable(c fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "storage unavailable, retry later"})
}

func internalError(c fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// fallbackError handles what the per-handler mappers leave over: retryable
// storage failures and everything unexpected.
func fallbackError(c fiber.Ctx, err error) error {
	if errors.Is(err, kv.ErrStoreFailure) {
		slog.WarnContext(c.Context(), "http: storage failure", "path", c.Path(), "error", err)
		return serviceUnavailable(c)
	}
	slog.ErrorContext(c.Context(), "http: unhandled error", "path", c.Path(), "error", err)
	return internalError(c)
}

func callerOf(c fiber.Ctx) (*reqctx.Caller, bool) {
	return middleware.CallerFromFiber(c)
}
