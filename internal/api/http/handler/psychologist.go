package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/internal/service/crisis"
	"github.com/Alijeyrad/mindcare_backend/internal/service/invite"
)

type PsychologistHandler struct {
	accounts account.Service
	invites  invite.Service
	crises   crisis.Service
}

func NewPsychologistHandler(accounts account.Service, invites invite.Service, crises crisis.Service) *PsychologistHandler {
	return &PsychologistHandler{accounts: accounts, invites: invites, crises: crises}
}

// POST /psychologist/invite
func (h *PsychologistHandler) GenerateInvite(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	inv, err := h.invites.Generate(c.Context(), caller.UserID)
	if err != nil {
		return mapPsychologistError(c, err)
	}

	return created(c, fiber.Map{"code": inv.Code})
}

// GET /psychologist/patients
func (h *PsychologistHandler) Patients(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	patients, err := h.accounts.ListPatients(c.Context(), caller.UserID)
	if err != nil {
		return mapPsychologistError(c, err)
	}
	if patients == nil {
		patients = []*schema.Patient{}
	}

	return ok(c, fiber.Map{"patients": patients})
}

// GET /psychologist/me
func (h *PsychologistHandler) Me(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	psy, err := h.accounts.Psychologist(c.Context(), caller.UserID)
	if err != nil {
		return mapPsychologistError(c, err)
	}

	return ok(c, fiber.Map{"psychologist": psy})
}

// GET /psychologist/crises
func (h *PsychologistHandler) Crises(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	crises, err := h.crises.ListForPsychologist(c.Context(), caller.UserID)
	if err != nil {
		return mapPsychologistError(c, err)
	}

	return ok(c, fiber.Map{"crises": nonNilCrises(crises)})
}

func mapPsychologistError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, account.ErrPsychologistNotFound):
		return notFound(c, err.Error())
	default:
		return fallbackError(c, err)
	}
}

func nonNilCrises(in []*schema.Crisis) []*schema.Crisis {
	if in == nil {
		return []*schema.Crisis{}
	}
	return in
}
