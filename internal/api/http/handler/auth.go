package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/service/auth"
	"github.com/Alijeyrad/mindcare_backend/internal/service/identity"
	"github.com/Alijeyrad/mindcare_backend/internal/service/invite"
)

type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// POST /auth/psychologist/signup
func (h *AuthHandler) SignupPsychologist(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		CRP      string `json:"crp"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	userID, err := h.svc.SignupPsychologist(c.Context(), auth.SignupPsychologistRequest{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
		CRP:      body.CRP,
	})
	if err != nil {
		return mapAuthError(c, err)
	}

	return created(c, fiber.Map{"success": true, "userId": userID})
}

// POST /auth/patient/signup
func (h *AuthHandler) SignupPatient(c fiber.Ctx) error {
	var body struct {
		InviteCode       string `json:"inviteCode"`
		Name             string `json:"name"`
		Age              int    `json:"age"`
		Phone            string `json:"phone"`
		EmergencyContact string `json:"emergencyContact"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.SignupPatient(c.Context(), auth.SignupPatientRequest{
		InviteCode:       body.InviteCode,
		Name:             body.Name,
		Age:              body.Age,
		Phone:            body.Phone,
		EmergencyContact: body.EmergencyContact,
	})
	if err != nil {
		return mapAuthError(c, err)
	}

	out := fiber.Map{
		"success": true,
		"userId":  res.UserID,
		"credentials": fiber.Map{
			"email":    res.Credentials.Email,
			"password": res.Credentials.Password,
		},
	}
	if res.Session != nil {
		out["accessToken"] = res.Session.AccessToken
		out["refreshToken"] = res.Session.RefreshToken
		out["expiresIn"] = res.Session.ExpiresIn
	}
	return created(c, out)
}

// POST /auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	s, err := h.svc.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, sessionBody(s))
}

// POST /auth/refresh
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.RefreshToken == "" {
		return badRequest(c, "refreshToken is required")
	}

	s, err := h.svc.Refresh(c.Context(), body.RefreshToken)
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, sessionBody(s))
}

// POST /auth/logout  (requires AuthRequired middleware)
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	caller, found := callerOf(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.svc.Logout(c.Context(), caller.SessionID); err != nil {
		return mapAuthError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func sessionBody(s *auth.Session) fiber.Map {
	return fiber.Map{
		"accessToken":  s.AccessToken,
		"refreshToken": s.RefreshToken,
		"expiresIn":    s.ExpiresIn,
		"role":         s.Role,
	}
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapAuthError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrNameRequired),
		errors.Is(err, auth.ErrCRPRequired),
		errors.Is(err, auth.ErrInvalidAge),
		errors.Is(err, auth.ErrInvalidPhone),
		errors.Is(err, auth.ErrInviteRequired),
		errors.Is(err, invite.ErrMalformedCode):
		return badRequest(c, err.Error())
	case errors.Is(err, invite.ErrInvalidInvite):
		return badRequest(c, err.Error())
	case errors.Is(err, identity.ErrEmailTaken):
		return conflict(c, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	default:
		return fallbackError(c, err)
	}
}
