// Package account is the directory of patients and psychologists. Each user has
// one Account record; its role decides which profile it carries, so any id is
// resolved with a single read.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/pkg/crypto"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreatePsychologistRequest struct {
	ID    uuid.UUID
	Email string
	Name  string
	CRP   string
}

type CreatePatientRequest struct {
	ID               uuid.UUID
	Name             string
	Age              int
	Phone            string // E.164
	EmergencyContact string
	PsychologistID   uuid.UUID
	LoginEmail       string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	CreatePsychologist(ctx context.Context, req CreatePsychologistRequest) (*schema.Psychologist, error)
	CreatePatient(ctx context.Context, req CreatePatientRequest) (*schema.Patient, error)

	Resolve(ctx context.Context, id uuid.UUID) (*schema.Account, error)
	Patient(ctx context.Context, id uuid.UUID) (*schema.Patient, error)
	Psychologist(ctx context.Context, id uuid.UUID) (*schema.Psychologist, error)

	// ListPatients returns the psychologist's patients in enrolment order,
	// skipping index entries whose account is missing.
	ListPatients(ctx context.Context, psychologistID uuid.UUID) ([]*schema.Patient, error)
	AddPatientToPsychologist(ctx context.Context, psychologistID, patientID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type accountService struct {
	store  kv.Store
	sealer *crypto.Sealer // nil stores phones in plaintext
}

func New(store kv.Store, cfg *config.Config) (Service, error) {
	s := &accountService{store: store}
	if k := cfg.Authentication.EncryptionKey; k != "" {
		sealer, err := crypto.NewSealer(k)
		if err != nil {
			return nil, fmt.Errorf("account service: %w", err)
		}
		s.sealer = sealer
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func (s *accountService) CreatePsychologist(ctx context.Context, req CreatePsychologistRequest) (*schema.Psychologist, error) {
	now := time.Now().UTC()
	p := &schema.Psychologist{
		ID:        req.ID,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Name:      strings.TrimSpace(req.Name),
		CRP:       strings.TrimSpace(req.CRP),
		CreatedAt: now,
	}
	acc := &schema.Account{ID: req.ID, Role: schema.RolePsychologist, CreatedAt: now, Psychologist: p}
	if err := s.insert(ctx, acc); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *accountService) CreatePatient(ctx context.Context, req CreatePatientRequest) (*schema.Patient, error) {
	now := time.Now().UTC()
	p := &schema.Patient{
		ID:               req.ID,
		Name:             strings.TrimSpace(req.Name),
		Age:              req.Age,
		Phone:            req.Phone,
		EmergencyContact: req.EmergencyContact,
		PsychologistID:   req.PsychologistID,
		CreatedAt:        now,
	}
	if req.LoginEmail != "" {
		p.Credentials = &schema.PatientCredentials{Email: req.LoginEmail}
	}

	stored := *p
	if s.sealer != nil {
		enc, err := s.sealer.Seal(p.Phone, p.ID.String())
		if err != nil {
			return nil, fmt.Errorf("encrypt phone: %w", err)
		}
		stored.Phone = enc
	}

	acc := &schema.Account{ID: req.ID, Role: schema.RolePatient, CreatedAt: now, Patient: &stored}
	if err := s.insert(ctx, acc); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *accountService) insert(ctx context.Context, acc *schema.Account) error {
	ok, err := s.store.SetNX(ctx, schema.AccountKey(acc.ID), acc)
	if err != nil {
		return fmt.Errorf("store account: %w", err)
	}
	if !ok {
		return ErrAccountExists
	}
	return nil
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

func (s *accountService) Resolve(ctx context.Context, id uuid.UUID) (*schema.Account, error) {
	acc, err := kv.GetJSON[schema.Account](ctx, s.store, schema.AccountKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acc.Patient != nil {
		s.openPhone(acc.Patient)
	}
	return acc, nil
}

func (s *accountService) Patient(ctx context.Context, id uuid.UUID) (*schema.Patient, error) {
	acc, err := s.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if acc.Role != schema.RolePatient || acc.Patient == nil {
		return nil, ErrPatientNotFound
	}
	return acc.Patient, nil
}

func (s *accountService) Psychologist(ctx context.Context, id uuid.UUID) (*schema.Psychologist, error) {
	acc, err := s.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrPsychologistNotFound
		}
		return nil, err
	}
	if acc.Role != schema.RolePsychologist || acc.Psychologist == nil {
		return nil, ErrPsychologistNotFound
	}
	return acc.Psychologist, nil
}

// ---------------------------------------------------------------------------
// Patient index
// ---------------------------------------------------------------------------

func (s *accountService) ListPatients(ctx context.Context, psychologistID uuid.UUID) ([]*schema.Patient, error) {
	accs, err := kv.ResolveLog[schema.Account](ctx, s.store,
		schema.PsychologistPatientsLog(psychologistID), schema.AccountKeyOf)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	patients := lo.FilterMap(accs, func(a *schema.Account, _ int) (*schema.Patient, bool) {
		if a == nil || a.Role != schema.RolePatient || a.Patient == nil {
			return nil, false
		}
		s.openPhone(a.Patient)
		return a.Patient, true
	})
	return patients, nil
}

func (s *accountService) AddPatientToPsychologist(ctx context.Context, psychologistID, patientID uuid.UUID) error {
	if _, err := s.store.Append(ctx, schema.PsychologistPatientsLog(psychologistID), patientID.String()); err != nil {
		return fmt.Errorf("index patient: %w", err)
	}
	return nil
}

// openPhone decrypts the stored phone in place. Records written before a key
// was configured hold plaintext and are left alone.
func (s *accountService) openPhone(p *schema.Patient) {
	if s.sealer == nil || !crypto.IsSealed(p.Phone) {
		return
	}
	plain, err := s.sealer.Open(p.Phone, p.ID.String())
	if err != nil {
		slog.Warn("account: phone decrypt failed", "patient_id", p.ID, "error", err)
		return
	}
	p.Phone = plain
}
