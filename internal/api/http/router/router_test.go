package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/internal/service/auth"
	"github.com/Alijeyrad/mindcare_backend/internal/service/conversation"
	"github.com/Alijeyrad/mindcare_backend/internal/service/crisis"
	"github.com/Alijeyrad/mindcare_backend/internal/service/identity"
	"github.com/Alijeyrad/mindcare_backend/internal/service/invite"
	"github.com/Alijeyrad/mindcare_backend/internal/service/notification"
	"github.com/Alijeyrad/mindcare_backend/pkg/authorize"
	"github.com/Alijeyrad/mindcare_backend/pkg/events"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv/kvtest"
	pasetotoken "github.com/Alijeyrad/mindcare_backend/pkg/paseto"
)

type testServer struct {
	app *fiber.App
	env *kvtest.Env
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	env := kvtest.New(t)

	cfg := &config.Config{
		KV:       config.KVConfig{KeyPrefix: "test:"},
		Password: config.PasswordConfig{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		Invite:   config.InviteConfig{MaxGenerateAttempts: 5},
		Patients: config.PatientsConfig{DefaultRegion: "BR", EmailDomain: "mindcare.local"},
	}
	if mutate != nil {
		mutate(cfg)
	}

	mgr, err := pasetotoken.New(pasetotoken.Config{
		Mode: pasetotoken.ModeLocal, Issuer: "mindcare", Audience: "test",
		AccessTTL: time.Minute, RefreshTTL: time.Hour,
	}, pasetotoken.NewLocalKeys())
	require.NoError(t, err)

	authz, err := authorize.NewDefault()
	require.NoError(t, err)

	gw := identity.New(env.Store, env.Redis, mgr, cfg)
	accounts, err := account.New(env.Store, cfg)
	require.NoError(t, err)
	invites := invite.New(env.Store, accounts, cfg)
	pub := events.NopPublisher{}

	r := NewRouter(Params{
		Cfg:             cfg,
		Store:           env.Store,
		Auth:            authz,
		Identity:        gw,
		AccountSvc:      accounts,
		AuthSvc:         auth.New(gw, accounts, invites, cfg),
		InviteSvc:       invites,
		CrisisSvc:       crisis.New(env.Store, accounts, pub, cfg),
		ConversationSvc: conversation.New(env.Store, accounts, pub, cfg),
		NotificationSvc: notification.New(env.Store),
	})

	app := fiber.New()
	r.Register(app)
	return &testServer{app: app, env: env}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second, FailOnTimeout: true})
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// psychologist signs up and logs in; returns their access token and id.
func (s *testServer) psychologist(t *testing.T, email string) (string, string) {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/auth/psychologist/signup", "", map[string]any{
		"email": email, "password": "long-enough", "name": "Dr. Silva", "crp": "06/123456",
	})
	require.Equal(t, http.StatusCreated, status, body)
	id := body["userId"].(string)

	status, body = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": email, "password": "long-enough"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "psychologist", body["role"])
	return body["accessToken"].(string), id
}

func (s *testServer) patient(t *testing.T, psyToken string) (string, string) {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/psychologist/invite", psyToken, nil)
	require.Equal(t, http.StatusCreated, status, body)
	code := body["code"].(string)

	status, body = s.do(t, http.MethodPost, "/auth/patient/signup", "", map[string]any{
		"inviteCode": code, "name": "Joana", "age": 30, "phone": "(11) 98765-4321",
	})
	require.Equal(t, http.StatusCreated, status, body)
	require.NotEmpty(t, body["accessToken"])
	return body["accessToken"].(string), body["userId"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestOnboardingHappyPath(t *testing.T) {
	s := newTestServer(t, nil)
	psyToken, psyID := s.psychologist(t, "dr.silva@example.com")

	status, body := s.do(t, http.MethodPost, "/psychologist/invite", psyToken, nil)
	require.Equal(t, http.StatusCreated, status)
	code := body["code"].(string)
	assert.Len(t, code, 6)

	status, body = s.do(t, http.MethodPost, "/patient/validate-invite", "", map[string]any{"code": code})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["valid"])

	status, body = s.do(t, http.MethodPost, "/auth/patient/signup", "", map[string]any{
		"inviteCode": code, "name": "Joana", "age": 30, "phone": "(11) 98765-4321",
	})
	require.Equal(t, http.StatusCreated, status, body)
	creds := body["credentials"].(map[string]any)
	assert.Len(t, creds["password"], 12)
	patientToken := body["accessToken"].(string)

	status, body = s.do(t, http.MethodPost, "/patient/validate-invite", "", map[string]any{"code": code})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["valid"])
	assert.NotEmpty(t, body["error"])

	status, body = s.do(t, http.MethodGet, "/patient/me", patientToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "+5511987654321", body["patient"].(map[string]any)["phone"])
	assert.Equal(t, psyID, body["psychologist"].(map[string]any)["id"])

	status, body = s.do(t, http.MethodGet, "/psychologist/patients", psyToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["patients"], 1)

	// the synthesized credentials log in as a patient
	status, body = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": creds["email"], "password": creds["password"]})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "patient", body["role"])
}

func TestCrisisLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	psyToken, _ := s.psychologist(t, "dr.silva@example.com")
	patientToken, _ := s.patient(t, psyToken)

	status, body := s.do(t, http.MethodPost, "/crisis/create", patientToken, nil)
	require.Equal(t, http.StatusCreated, status, body)
	cr := body["crisis"].(map[string]any)
	id := cr["id"].(string)
	assert.Equal(t, "pending", cr["status"])
	assert.Nil(t, cr["notes"])

	status, body = s.do(t, http.MethodPut, "/crisis/"+id+"/status", psyToken, map[string]any{"status": "in-progress"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Nil(t, body["crisis"].(map[string]any)["notes"])

	status, body = s.do(t, http.MethodPut, "/crisis/"+id+"/status", psyToken, map[string]any{"status": "resolved", "notes": "called"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "called", body["crisis"].(map[string]any)["notes"])

	status, _ = s.do(t, http.MethodPut, "/crisis/"+id+"/status", psyToken, map[string]any{"status": "closed"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPut, "/crisis/crisis_0_missing/status", psyToken, map[string]any{"status": "resolved"})
	assert.Equal(t, http.StatusNotFound, status)

	// patients may read but not update
	status, _ = s.do(t, http.MethodPut, "/crisis/"+id+"/status", patientToken, map[string]any{"status": "pending"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodGet, "/crisis/"+id, patientToken, nil)
	assert.Equal(t, http.StatusOK, status)

	// another psychologist cannot touch it
	otherToken, _ := s.psychologist(t, "other@example.com")
	status, _ = s.do(t, http.MethodPut, "/crisis/"+id+"/status", otherToken, map[string]any{"status": "pending"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodGet, "/psychologist/crises", psyToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["crises"], 1)
	status, body = s.do(t, http.MethodGet, "/patient/crises", patientToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["crises"], 1)
}

func TestChatRoundTrip(t *testing.T) {
	s := newTestServer(t, nil)
	psyToken, psyID := s.psychologist(t, "dr.silva@example.com")
	patientToken, patientID := s.patient(t, psyToken)

	status, body := s.do(t, http.MethodPost, "/chat/message", patientToken, map[string]any{"recipientId": psyID, "text": "hello"})
	require.Equal(t, http.StatusCreated, status, body)
	assert.EqualValues(t, 1, body["message"].(map[string]any)["seq"])

	status, _ = s.do(t, http.MethodPost, "/chat/message", psyToken, map[string]any{"recipientId": patientID, "text": "hi Joana"})
	require.Equal(t, http.StatusCreated, status)

	_, fromPatient := s.do(t, http.MethodGet, "/chat/messages/"+psyID, patientToken, nil)
	_, fromPsy := s.do(t, http.MethodGet, "/chat/messages/"+patientID, psyToken, nil)
	assert.Equal(t, fromPatient, fromPsy)
	assert.Len(t, fromPatient["messages"], 2)

	status, _ = s.do(t, http.MethodPost, "/chat/message", patientToken, map[string]any{"recipientId": psyID, "text": "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = s.do(t, http.MethodPost, "/chat/message", patientToken, map[string]any{"recipientId": "nope", "text": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAccessControl(t *testing.T) {
	s := newTestServer(t, nil)
	psyToken, _ := s.psychologist(t, "dr.silva@example.com")
	patientToken, _ := s.patient(t, psyToken)

	status, _ := s.do(t, http.MethodGet, "/psychologist/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = s.do(t, http.MethodGet, "/psychologist/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/psychologist/invite", patientToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodPost, "/crisis/create", psyToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodGet, "/patient/me", psyToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := s.do(t, http.MethodGet, "/notifications", patientToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["notifications"])

	status, _ = s.do(t, http.MethodPost, "/auth/logout", psyToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/psychologist/me", psyToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSignupErrors(t *testing.T) {
	s := newTestServer(t, nil)
	s.psychologist(t, "dr.silva@example.com")

	status, _ := s.do(t, http.MethodPost, "/auth/psychologist/signup", "", map[string]any{
		"email": "dr.silva@example.com", "password": "long-enough", "name": "Again", "crp": "1",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(t, http.MethodPost, "/auth/psychologist/signup", "", map[string]any{
		"email": "not-an-email", "password": "long-enough", "name": "X", "crp": "1",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/auth/patient/signup", "", map[string]any{
		"inviteCode": "ZZZZZZ", "name": "Joana", "age": 30, "phone": "11987654321",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "dr.silva@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPublicAPIKey(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Authentication.PublicAPIKey = "k3y" })

	status, _ := s.do(t, http.MethodPost, "/patient/validate-invite", "", map[string]any{"code": "ABC123"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := s.do(t, http.MethodPost, "/patient/validate-invite", "", map[string]any{"code": "ABC123"}, "X-API-Key", "k3y")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["valid"])
}

func TestBasePath(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Server.BasePath = "/api" })

	status, _ := s.do(t, http.MethodPost, "/api/patient/validate-invite", "", map[string]any{"code": "ABC123"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestStorageFailureIs503(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.env.Store.Ping(context.Background()))
	s.env.Server.SetError("ERR injected failure")

	status, body := s.do(t, http.MethodPost, "/patient/validate-invite", "", map[string]any{"code": "ABC123"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "storage unavailable, retry later", body["error"])
}
