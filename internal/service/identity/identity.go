// Package identity issues and checks login credentials. Accounts reference the
// user ids it hands out but never see passwords or tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
	pasetotoken "github.com/Alijeyrad/mindcare_backend/pkg/paseto"
	"github.com/Alijeyrad/mindcare_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Tokens struct {
	UserID       uuid.UUID
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until the access token expires
}

// Identity is what a verified access token proves.
type Identity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

type credential struct {
	UserID       uuid.UUID `json:"userId"`
	PasswordHash string    `json:"passwordHash"`
}

// ---------------------------------------------------------------------------
// Gateway interface
// ---------------------------------------------------------------------------

type Gateway interface {
	CreateUser(ctx context.Context, email, pass string) (uuid.UUID, error)
	SignIn(ctx context.Context, email, pass string) (*Tokens, error)
	Verify(ctx context.Context, accessToken string) (*Identity, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	SignOut(ctx context.Context, sessionID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type gateway struct {
	store      kv.Store
	rdb        *redis.Client
	tokens     *pasetotoken.Manager
	hasher     *password.Hasher
	prefix     string
	sessionTTL time.Duration
}

func New(
	store kv.Store,
	rdb *redis.Client,
	tokens *pasetotoken.Manager,
	cfg *config.Config,
) Gateway {
	ttl := time.Duration(cfg.Authentication.SessionTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = tokens.RefreshTTL()
	}

	return &gateway{
		store:      store,
		rdb:        rdb,
		tokens:     tokens,
		hasher:     password.NewHasher(password.ParamsFromConfig(cfg.Password)),
		prefix:     cfg.KV.KeyPrefix,
		sessionTTL: ttl,
	}
}

func (g *gateway) sessionKey(sid uuid.UUID) string {
	return g.prefix + "session:" + sid.String()
}

// ---------------------------------------------------------------------------
// CreateUser
// ---------------------------------------------------------------------------

func (g *gateway) CreateUser(ctx context.Context, email, pass string) (uuid.UUID, error) {
	email = normalizeEmail(email)
	if email == "" {
		return uuid.Nil, ErrInvalidEmail
	}

	hash, err := g.hasher.Hash(pass)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.Must(uuid.NewV7())
	ok, err := g.store.SetNX(ctx, schema.IdentityEmailKey(email), credential{UserID: id, PasswordHash: hash})
	if err != nil {
		return uuid.Nil, fmt.Errorf("store credential: %w", err)
	}
	if !ok {
		return uuid.Nil, ErrEmailTaken
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// SignIn
// ---------------------------------------------------------------------------

func (g *gateway) SignIn(ctx context.Context, email, pass string) (*Tokens, error) {
	key := schema.IdentityEmailKey(normalizeEmail(email))
	cred, err := kv.GetJSON[credential](ctx, g.store, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	if err := g.hasher.Verify(cred.PasswordHash, pass); err != nil {
		return nil, ErrInvalidCredentials
	}
	if g.hasher.NeedsRehash(cred.PasswordHash) {
		g.rehash(ctx, key, cred, pass)
	}

	return g.createSession(ctx, cred.UserID)
}

// rehash upgrades a credential made under older cost parameters. Failure
// only costs another attempt at the next sign-in.
func (g *gateway) rehash(ctx context.Context, key string, cred *credential, pass string) {
	hash, err := g.hasher.Hash(pass)
	if err == nil {
		err = g.store.Set(ctx, key, credential{UserID: cred.UserID, PasswordHash: hash})
	}
	if err != nil {
		slog.Warn("identity: rehash failed", "user_id", cred.UserID, "error", err)
	}
}

// ---------------------------------------------------------------------------
// Verify
// ---------------------------------------------------------------------------

func (g *gateway) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrUnauthorized
	}
	claims, err := g.tokens.Verify(accessToken, pasetotoken.TokenTypeAccess)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if err := g.requireSession(ctx, claims.SessionID); err != nil {
		return nil, err
	}

	return &Identity{UserID: claims.UserID, SessionID: claims.SessionID}, nil
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func (g *gateway) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := g.tokens.Verify(refreshToken, pasetotoken.TokenTypeRefresh)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if err := g.requireSession(ctx, claims.SessionID); err != nil {
		return nil, err
	}
	if err := g.rdb.Expire(ctx, g.sessionKey(claims.SessionID), g.sessionTTL).Err(); err != nil {
		slog.Warn("identity: extend session failed", "session_id", claims.SessionID, "error", err)
	}

	access, err := g.tokens.IssueAccess(claims.UserID, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &Tokens{
		UserID:       claims.UserID,
		AccessToken:  access,
		RefreshToken: refreshToken, // unchanged until sign-out
		ExpiresIn:    int64(g.tokens.AccessTTL().Seconds()),
	}, nil
}

// ---------------------------------------------------------------------------
// SignOut
// ---------------------------------------------------------------------------

func (g *gateway) SignOut(ctx context.Context, sessionID uuid.UUID) error {
	deleted, err := g.rdb.Del(ctx, g.sessionKey(sessionID)).Result()
	if err != nil {
		return &kv.StoreError{Op: "del", Key: "session", Err: err}
	}
	if deleted == 0 {
		slog.Debug("identity: sign-out of expired session", "session_id", sessionID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (g *gateway) createSession(ctx context.Context, userID uuid.UUID) (*Tokens, error) {
	sid := uuid.Must(uuid.NewV7())

	if err := g.rdb.Set(ctx, g.sessionKey(sid), userID.String(), g.sessionTTL).Err(); err != nil {
		return nil, &kv.StoreError{Op: "set", Key: "session", Err: err}
	}

	access, err := g.tokens.IssueAccess(userID, sid)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := g.tokens.IssueRefresh(userID, sid)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &Tokens{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(g.tokens.AccessTTL().Seconds()),
	}, nil
}

func (g *gateway) requireSession(ctx context.Context, sid uuid.UUID) error {
	n, err := g.rdb.Exists(ctx, g.sessionKey(sid)).Result()
	if err != nil {
		return &kv.StoreError{Op: "exists", Key: "session", Err: err}
	}
	if n == 0 {
		return ErrUnauthorized
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
