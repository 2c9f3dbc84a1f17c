package crisis

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
	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/pkg/events"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
	"github.com/Alijeyrad/mindcare_backend/pkg/observability"
	"github.com/Alijeyrad/mindcare_backend/pkg/util/codes"
)

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Create raises a pending crisis for the patient and alerts their psychologist.
	Create(ctx context.Context, patientID uuid.UUID) (*schema.Crisis, error)
	// SetStatus is restricted to the owning psychologist. notes replaces the
	// stored notes only when non-empty.
	SetStatus(ctx context.Context, actorID uuid.UUID, crisisID string, status schema.CrisisStatus, notes *string) (*schema.Crisis, error)
	Get(ctx context.Context, actorID uuid.UUID, crisisID string) (*schema.Crisis, error)

	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*schema.Crisis, error)
	ListForPsychologist(ctx context.Context, psychologistID uuid.UUID) ([]*schema.Crisis, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type crisisService struct {
	store       kv.Store
	accounts    account.Service
	pub         events.Publisher
	forwardOnly bool
	now         func() time.Time
}

func New(store kv.Store, accounts account.Service, pub events.Publisher, cfg *config.Config) Service {
	return &crisisService{
		store:       store,
		accounts:    accounts,
		pub:         pub,
		forwardOnly: cfg.Crisis.EnforceForwardTransitions,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func (s *crisisService) Create(ctx context.Context, patientID uuid.UUID) (*schema.Crisis, error) {
	patient, err := s.accounts.Patient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	id, err := codes.GenerateRecordID("crisis", now)
	if err != nil {
		return nil, fmt.Errorf("generate crisis id: %w", err)
	}

	c := &schema.Crisis{
		ID:             id,
		PatientID:      patient.ID,
		PatientName:    patient.Name,
		PsychologistID: patient.PsychologistID,
		Timestamp:      now,
		Status:         schema.CrisisPending,
	}
	if err := s.store.Set(ctx, schema.CrisisKey(id), c); err != nil {
		return nil, fmt.Errorf("store crisis: %w", err)
	}

	if _, err := s.store.Append(ctx, schema.PatientCrisesLog(patient.ID), id); err != nil {
		return nil, fmt.Errorf("index crisis for patient: %w", err)
	}
	if _, err := s.store.Append(ctx, schema.PsychologistCrisesLog(patient.PsychologistID), id); err != nil {
		return nil, fmt.Errorf("index crisis for psychologist: %w", err)
	}

	events.Emit(s.pub, events.CrisisRaised(patient.PsychologistID.String()), id)
	observability.CrisesRaised.Add(ctx, 1)
	slog.Info("crisis raised", "crisis_id", id, "psychologist_id", patient.PsychologistID)

	return c, nil
}

// ---------------------------------------------------------------------------
// SetStatus
// ---------------------------------------------------------------------------

func (s *crisisService) SetStatus(
	ctx context.Context,
	actorID uuid.UUID,
	crisisID string,
	status schema.CrisisStatus,
	notes *string,
) (*schema.Crisis, error) {
	c, err := s.load(ctx, crisisID)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if c.PsychologistID != actorID {
		return nil, ErrForbidden
	}
	if s.forwardOnly && !c.Status.Precedes(status) {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	c.Status = status
	c.UpdatedAt = &now
	if notes != nil && strings.TrimSpace(*notes) != "" {
		n := *notes
		c.Notes = &n
	}

	if err := s.store.Set(ctx, schema.CrisisKey(c.ID), c); err != nil {
		return nil, fmt.Errorf("store crisis: %w", err)
	}

	events.Emit(s.pub, events.CrisisStatus(c.ID), string(status))
	observability.CrisisStatusChanges.Add(ctx, 1)

	return c, nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func (s *crisisService) Get(ctx context.Context, actorID uuid.UUID, crisisID string) (*schema.Crisis, error) {
	c, err := s.load(ctx, crisisID)
	if err != nil {
		return nil, err
	}
	if c.PatientID != actorID && c.PsychologistID != actorID {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *crisisService) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*schema.Crisis, error) {
	return s.list(ctx, schema.PatientCrisesLog(patientID))
}

func (s *crisisService) ListForPsychologist(ctx context.Context, psychologistID uuid.UUID) ([]*schema.Crisis, error) {
	return s.list(ctx, schema.PsychologistCrisesLog(psychologistID))
}

func (s *crisisService) list(ctx context.Context, log string) ([]*schema.Crisis, error) {
	found, err := kv.ResolveLog[schema.Crisis](ctx, s.store, log, schema.CrisisKey)
	if err != nil {
		return nil, fmt.Errorf("list crises: %w", err)
	}
	return lo.Compact(found), nil
}

func (s *crisisService) load(ctx context.Context, id string) (*schema.Crisis, error) {
	c, err := kv.GetJSON[schema.Crisis](ctx, s.store, schema.CrisisKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrCrisisNotFound
		}
		return nil, fmt.Errorf("get crisis: %w", err)
	}
	return c, nil
}
