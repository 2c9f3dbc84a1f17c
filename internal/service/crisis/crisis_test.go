package crisis

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/pkg/events"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv/kvtest"
)

type fixture struct {
	svc     Service
	env     *kvtest.Env
	events  *events.Recorder
	psyID   uuid.UUID
	patient uuid.UUID
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	env := kvtest.New(t)
	accounts, err := account.New(env.Store, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	psyID, patID := uuid.New(), uuid.New()
	_, err = accounts.CreatePsychologist(ctx, account.CreatePsychologistRequest{ID: psyID, Name: "Dr. Silva"})
	require.NoError(t, err)
	_, err = accounts.CreatePatient(ctx, account.CreatePatientRequest{
		ID: patID, Name: "Joana", Age: 30, Phone: "+5511999990000", PsychologistID: psyID,
	})
	require.NoError(t, err)

	rec := &events.Recorder{}
	return &fixture{
		svc:     New(env.Store, accounts, rec, cfg),
		env:     env,
		events:  rec,
		psyID:   psyID,
		patient: patID,
	}
}

func ptr(s string) *string { return &s }

func TestCreateIndexesBothSides(t *testing.T) {
	f := newFixture(t, &config.Config{})
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.patient)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.ID, "crisis_"))
	assert.Equal(t, schema.CrisisPending, c.Status)
	assert.Nil(t, c.Notes)
	assert.Equal(t, "Joana", c.PatientName)
	assert.Equal(t, f.psyID, c.PsychologistID)

	mine, err := f.svc.ListForPatient(ctx, f.patient)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, c.ID, mine[0].ID)

	theirs, err := f.svc.ListForPsychologist(ctx, f.psyID)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, c.ID, theirs[0].ID)

	assert.Equal(t, []events.Event{{Subject: events.CrisisRaised(f.psyID.String()), Data: c.ID}}, f.events.Events)
}

func TestCreateRequiresPatient(t *testing.T) {
	f := newFixture(t, &config.Config{})
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.psyID)
	assert.ErrorIs(t, err, account.ErrPatientNotFound)

	_, err = f.svc.Create(ctx, uuid.New())
	assert.ErrorIs(t, err, account.ErrPatientNotFound)
}

func TestLifecycleAndNotesMerge(t *testing.T) {
	f := newFixture(t, &config.Config{})
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.patient)
	require.NoError(t, err)

	c, err = f.svc.SetStatus(ctx, f.psyID, c.ID, schema.CrisisInProgress, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.CrisisInProgress, c.Status)
	assert.Nil(t, c.Notes)

	c, err = f.svc.SetStatus(ctx, f.psyID, c.ID, schema.CrisisResolved, ptr("called the patient"))
	require.NoError(t, err)
	require.NotNil(t, c.Notes)
	assert.Equal(t, "called the patient", *c.Notes)

	// empty notes keep what is there
	c, err = f.svc.SetStatus(ctx, f.psyID, c.ID, schema.CrisisResolved, ptr(""))
	require.NoError(t, err)
	assert.Equal(t, "called the patient", *c.Notes)

	stored, err := kv.GetJSON[schema.Crisis](ctx, f.env.Store, schema.CrisisKey(c.ID))
	require.NoError(t, err)
	assert.Equal(t, schema.CrisisResolved, stored.Status)
	assert.Equal(t, "called the patient", *stored.Notes)

	// status changes never touch the indexes
	ids, err := f.env.Store.Range(ctx, schema.PatientCrisesLog(f.patient))
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	assert.Equal(t, events.CrisisStatus(c.ID), f.events.Events[len(f.events.Events)-1].Subject)
}

func TestSetStatusErrors(t *testing.T) {
	f := newFixture(t, &config.Config{})
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.patient)
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, f.psyID, "crisis_0_nope", schema.CrisisResolved, nil)
	assert.ErrorIs(t, err, ErrCrisisNotFound)

	_, err = f.svc.SetStatus(ctx, f.psyID, c.ID, schema.CrisisStatus("closed"), nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.SetStatus(ctx, uuid.New(), c.ID, schema.CrisisResolved, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	// the patient cannot update their own crisis either
	_, err = f.svc.SetStatus(ctx, f.patient, c.ID, schema.CrisisResolved, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRegressionAllowedByDefault(t *testing.T) {
	f := newFixture(t, &config.Config{})
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.patient)
	require.NoError(t, err)
	_, err = f.svc.SetStatus(ctx, f.psyID, c.ID, schema.CrisisResolved, nil)
	require.NoError(t, err)

	c, err = f.svc.SetStatus(ctx, f.psyID, c.ID, schema.CrisisPending, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.CrisisPending, c.Status)
}

func TestForwardOnlyTransitions(t *testing.T) {
	f := newFixture(t, &config.Config{Crisis: config.CrisisConfig{EnforceForwardTransitions: true}})
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.patient)
	require.NoError(t, err)
	_, err = f.svc.SetStatus(ctx, f.psyID, c.ID, schema.CrisisInProgress, nil)
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, f.psyID, c.ID, schema.CrisisPending, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// repeating the current status is not a regression
	_, err = f.svc.SetStatus(ctx, f.psyID, c.ID, schema.CrisisInProgress, ptr("still on it"))
	assert.NoError(t, err)
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t, &config.Config{})
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.patient)
	require.NoError(t, err)

	for _, who := range []uuid.UUID{f.patient, f.psyID} {
		got, err := f.svc.Get(ctx, who, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
	}

	_, err = f.svc.Get(ctx, uuid.New(), c.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListsSkipDanglingIDs(t *testing.T) {
	f := newFixture(t, &config.Config{})
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.patient)
	require.NoError(t, err)
	_, err = f.env.Store.Append(ctx, schema.PatientCrisesLog(f.patient), "crisis_0_gone")
	require.NoError(t, err)

	got, err := f.svc.ListForPatient(ctx, f.patient)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
}
