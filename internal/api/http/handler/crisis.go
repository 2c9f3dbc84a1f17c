package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/internal/service/crisis"
)

type CrisisHandler struct {
	svc crisis.Service
}

func NewCrisisHandler(svc crisis.Service) *CrisisHandler {
	return &CrisisHandler{svc: svc}
}

// POST /crisis/create
func (h *CrisisHandler) Create(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	cr, err := h.svc.Create(c.Context(), caller.UserID)
	if err != nil {
		return mapCrisisError(c, err)
	}

	return created(c, fiber.Map{"crisis": cr})
}

// PUT /crisis/:id/status
func (h *CrisisHandler) SetStatus(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		Status string  `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cr, err := h.svc.SetStatus(c.Context(), caller.UserID, c.Params("id"), schema.CrisisStatus(body.Status), body.Notes)
	if err != nil {
		return mapCrisisError(c, err)
	}

	return ok(c, fiber.Map{"crisis": cr})
}

// GET /crisis/:id
func (h *CrisisHandler) Get(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	cr, err := h.svc.Get(c.Context(), caller.UserID, c.Params("id"))
	if err != nil {
		return mapCrisisError(c, err)
	}

	return ok(c, fiber.Map{"crisis": cr})
}

func mapCrisisError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, crisis.ErrCrisisNotFound),
		errors.Is(err, account.ErrPatientNotFound),
		errors.Is(err, account.ErrPsychologistNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, crisis.ErrInvalidStatus):
		return badRequest(c, err.Error())
	case errors.Is(err, crisis.ErrForbidden):
		return forbidden(c)
	case errors.Is(err, crisis.ErrInvalidTransition):
		return conflict(c, err.Error())
	default:
		return fallbackError(c, err)
	}
}
