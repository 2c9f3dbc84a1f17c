// Package auth runs the signup and login flows on top of the identity gateway
// and the account directory.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/internal/service/identity"
	"github.com/Alijeyrad/mindcare_backend/internal/service/invite"
	"github.com/Alijeyrad/mindcare_backend/pkg/util/codes"
	"github.com/Alijeyrad/mindcare_backend/pkg/util/password"
)

const (
	minPasswordLength       = 8
	generatedPasswordLength = 12
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type SignupPsychologistRequest struct {
	Email    string
	Password string
	Name     string
	CRP      string
}

type SignupPatientRequest struct {
	InviteCode       string
	Name             string
	Age              int
	Phone            string // national or international format
	EmergencyContact string
}

// Credentials are shown to the patient once; the password is never stored.
type Credentials struct {
	Email    string
	Password string
}

type PatientSignup struct {
	UserID      uuid.UUID
	Credentials Credentials
	// Session is nil when the automatic sign-in failed.
	Session *Session
}

type Session struct {
	Role         schema.Role
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	SignupPsychologist(ctx context.Context, req SignupPsychologistRequest) (uuid.UUID, error)
	SignupPatient(ctx context.Context, req SignupPatientRequest) (*PatientSignup, error)
	Login(ctx context.Context, email, pass string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	identity identity.Gateway
	accounts account.Service
	invites  invite.Service

	region      string
	emailDomain string
}

func New(
	gw identity.Gateway,
	accounts account.Service,
	invites invite.Service,
	cfg *config.Config,
) Service {
	region := strings.ToUpper(cfg.Patients.DefaultRegion)
	if region == "" {
		region = "BR"
	}
	domain := cfg.Patients.EmailDomain
	if domain == "" {
		domain = "mindcare.local"
	}
	return &authService{
		identity:    gw,
		accounts:    accounts,
		invites:     invites,
		region:      region,
		emailDomain: domain,
	}
}

// ---------------------------------------------------------------------------
// SignupPsychologist
// ---------------------------------------------------------------------------

func (s *authService) SignupPsychologist(ctx context.Context, req SignupPsychologistRequest) (uuid.UUID, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.CRP = strings.TrimSpace(req.CRP)

	if _, err := mail.ParseAddress(req.Email); err != nil || !strings.Contains(req.Email, "@") {
		return uuid.Nil, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return uuid.Nil, ErrPasswordTooShort
	}
	if req.Name == "" {
		return uuid.Nil, ErrNameRequired
	}
	if req.CRP == "" {
		return uuid.Nil, ErrCRPRequired
	}

	userID, err := s.identity.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		return uuid.Nil, err
	}

	_, err = s.accounts.CreatePsychologist(ctx, account.CreatePsychologistRequest{
		ID:    userID,
		Email: req.Email,
		Name:  req.Name,
		CRP:   req.CRP,
	})
	if err != nil {
		slog.Error("signup: psychologist account not created", "user_id", userID, "error", err)
		return uuid.Nil, fmt.Errorf("create psychologist: %w", err)
	}

	return userID, nil
}

// ---------------------------------------------------------------------------
// SignupPatient
// ---------------------------------------------------------------------------

func (s *authService) SignupPatient(ctx context.Context, req SignupPatientRequest) (*PatientSignup, error) {
	req.Name = strings.TrimSpace(req.Name)
	if strings.TrimSpace(req.InviteCode) == "" {
		return nil, ErrInviteRequired
	}
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if req.Age <= 0 {
		return nil, ErrInvalidAge
	}
	phone, err := s.normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	generated, err := password.Generate(generatedPasswordLength)
	if err != nil {
		return nil, err
	}
	creds := Credentials{Password: generated}

	patient, err := s.invites.Consume(ctx, req.InviteCode, func(ctx context.Context, psychologistID uuid.UUID) (*schema.Patient, error) {
		email, err := s.synthesizeEmail()
		if err != nil {
			return nil, err
		}
		userID, err := s.identity.CreateUser(ctx, email, creds.Password)
		if err != nil {
			return nil, err
		}
		creds.Email = email

		return s.accounts.CreatePatient(ctx, account.CreatePatientRequest{
			ID:               userID,
			Name:             req.Name,
			Age:              req.Age,
			Phone:            phone,
			EmergencyContact: strings.TrimSpace(req.EmergencyContact),
			PsychologistID:   psychologistID,
			LoginEmail:       email,
		})
	})
	if err != nil {
		return nil, err
	}

	out := &PatientSignup{UserID: patient.ID, Credentials: creds}

	tokens, err := s.identity.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		slog.Warn("signup: patient auto sign-in failed", "user_id", patient.ID, "error", err)
		return out, nil
	}
	out.Session = sessionOf(tokens, schema.RolePatient)
	return out, nil
}

// ---------------------------------------------------------------------------
// Login / Refresh / Logout
// ---------------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, email, pass string) (*Session, error) {
	tokens, err := s.identity.SignIn(ctx, email, pass)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.withRole(ctx, tokens)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	tokens, err := s.identity.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return s.withRole(ctx, tokens)
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.identity.SignOut(ctx, sessionID)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *authService) withRole(ctx context.Context, tokens *identity.Tokens) (*Session, error) {
	acc, err := s.accounts.Resolve(ctx, tokens.UserID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			// credentials without a profile behind them
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return sessionOf(tokens, acc.Role), nil
}

func (s *authService) normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidPhone
	}
	num, err := phonenumbers.Parse(raw, s.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// synthesizeEmail builds the login for a patient, who never chooses one.
func (s *authService) synthesizeEmail() (string, error) {
	local, err := codes.GenerateRecordID("patient", time.Now())
	if err != nil {
		return "", fmt.Errorf("generate patient login: %w", err)
	}
	return local + "@" + s.emailDomain, nil
}

func sessionOf(t *identity.Tokens, role schema.Role) *Session {
	return &Session{
		Role:         role,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
	}
}
