package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/internal/service/crisis"
	"github.com/Alijeyrad/mindcare_backend/internal/service/invite"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
)

type PatientHandler struct {
	accounts account.Service
	invites  invite.Service
	crises   crisis.Service
}

func NewPatientHandler(accounts account.Service, invites invite.Service, crises crisis.Service) *PatientHandler {
	return &PatientHandler{accounts: accounts, invites: invites, crises: crises}
}

// POST /patient/validate-invite
func (h *PatientHandler) ValidateInvite(c fiber.Ctx) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Code == "" {
		return invalidInvite(c, "invite code is required")
	}

	valid, err := h.invites.Validate(c.Context(), body.Code)
	if err != nil {
		if errors.Is(err, kv.ErrStoreFailure) {
			return serviceUnavailable(c)
		}
		return invalidInvite(c, err.Error())
	}
	if !valid {
		return invalidInvite(c, invite.ErrInvalidInvite.Error())
	}

	return ok(c, fiber.Map{"valid": true})
}

// GET /patient/me
func (h *PatientHandler) Me(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	p, err := h.accounts.Patient(c.Context(), caller.UserID)
	if err != nil {
		return mapPatientError(c, err)
	}

	// The psychologist is optional in the reply; a dangling link still shows the patient.
	psy, err := h.accounts.Psychologist(c.Context(), p.PsychologistID)
	if err != nil && !errors.Is(err, account.ErrPsychologistNotFound) {
		return mapPatientError(c, err)
	}

	return ok(c, fiber.Map{"patient": p, "psychologist": psy})
}

// GET /patient/crises
func (h *PatientHandler) Crises(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	crises, err := h.crises.ListForPatient(c.Context(), caller.UserID)
	if err != nil {
		return mapPatientError(c, err)
	}

	return ok(c, fiber.Map{"crises": nonNilCrises(crises)})
}

func invalidInvite(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"valid": false, "error": msg})
}

func mapPatientError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, account.ErrPatientNotFound):
		return notFound(c, err.Error())
	default:
		return fallbackError(c, err)
	}
}
