package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
	"github.com/Alijeyrad/mindcare_backend/pkg/observability"
	"github.com/Alijeyrad/mindcare_backend/pkg/util/codes"
)

// CreatePatientFunc builds the patient account for a consumed invite. It runs
// after the code is claimed and before it is marked used.
type CreatePatientFunc func(ctx context.Context, psychologistID uuid.UUID) (*schema.Patient, error)

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Generate(ctx context.Context, psychologistID uuid.UUID) (*schema.InviteCode, error)
	// Validate reports whether code exists and is unused. It never writes.
	Validate(ctx context.Context, code string) (bool, error)
	Consume(ctx context.Context, code string, create CreatePatientFunc) (*schema.Patient, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type inviteService struct {
	store       kv.Store
	accounts    account.Service
	maxAttempts int
	newCode     func() (string, error)
}

func New(store kv.Store, accounts account.Service, cfg *config.Config) Service {
	attempts := cfg.Invite.MaxGenerateAttempts
	if attempts < 1 {
		attempts = 5
	}
	return &inviteService{
		store:       store,
		accounts:    accounts,
		maxAttempts: attempts,
		newCode:     codes.GenerateInviteCode,
	}
}

// ---------------------------------------------------------------------------
// Generate
// ---------------------------------------------------------------------------

func (s *inviteService) Generate(ctx context.Context, psychologistID uuid.UUID) (*schema.InviteCode, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}

		inv := &schema.InviteCode{
			Code:           code,
			PsychologistID: psychologistID,
			CreatedAt:      time.Now().UTC(),
		}
		ok, err := s.store.SetNX(ctx, schema.InviteKey(code), inv)
		if err != nil {
			return nil, fmt.Errorf("store invite: %w", err)
		}
		if ok {
			observability.InvitesGenerated.Add(ctx, 1)
			return inv, nil
		}
		slog.Debug("invite: code collision, retrying", "attempt", attempt)
	}
	return nil, ErrCodeUnavailable
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func (s *inviteService) Validate(ctx context.Context, code string) (bool, error) {
	code = codes.NormalizeCode(code)
	if !codes.IsInviteCode(code) {
		return false, nil
	}
	inv, err := s.load(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidInvite) {
			return false, nil
		}
		return false, err
	}
	if inv.Used {
		return false, nil
	}

	// A claim without the used flag is a consume in flight, or one that died
	// after creating the patient. Consume rejects the code either way.
	var claimedAt time.Time
	err = s.store.Get(ctx, schema.InviteClaimKey(code), &claimedAt)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, kv.ErrNotFound):
		return true, nil
	default:
		return false, fmt.Errorf("get invite claim: %w", err)
	}
}

// ---------------------------------------------------------------------------
// Consume
// ---------------------------------------------------------------------------

func (s *inviteService) Consume(ctx context.Context, code string, create CreatePatientFunc) (*schema.Patient, error) {
	code = codes.NormalizeCode(code)
	if !codes.IsInviteCode(code) {
		return nil, ErrMalformedCode
	}

	inv, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if inv.Used {
		return nil, ErrInvalidInvite
	}

	// Only one consumer wins the claim; the invite record itself stays
	// readable as unused until the patient exists.
	claimed, err := s.store.SetNX(ctx, schema.InviteClaimKey(code), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("claim invite: %w", err)
	}
	if !claimed {
		return nil, ErrInvalidInvite
	}

	patient, err := create(ctx, inv.PsychologistID)
	if err != nil {
		// Nothing was created, so the code goes back to the pool.
		if relErr := s.store.Delete(ctx, schema.InviteClaimKey(code)); relErr != nil {
			slog.Error("invite: release claim failed", "code", code, "error", relErr)
		}
		return nil, err
	}

	if err := s.accounts.AddPatientToPsychologist(ctx, inv.PsychologistID, patient.ID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv.Used = true
	inv.UsedBy = &patient.ID
	inv.UsedAt = &now
	if err := s.store.Set(ctx, schema.InviteKey(code), inv); err != nil {
		// The claim key still blocks reuse.
		slog.Error("invite: mark used failed", "code", code, "patient_id", patient.ID, "error", err)
		return nil, fmt.Errorf("mark invite used: %w", err)
	}

	observability.InvitesConsumed.Add(ctx, 1)
	return patient, nil
}

func (s *inviteService) load(ctx context.Context, code string) (*schema.InviteCode, error) {
	inv, err := kv.GetJSON[schema.InviteCode](ctx, s.store, schema.InviteKey(code))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrInvalidInvite
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return inv, nil
}
