// Package pasetotoken issues and verifies the v4 PASETO access and refresh
// tokens handed out at sign-in. Every token is bound to a server-side
// session; revoking the session is what logs a device out.
package pasetotoken

import (
	"errors"
	"fmt"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

type configError string

func (e configError) Error() string { return "paseto config error: " + string(e) }

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

const (
	claimType    = "typ"
	claimSession = "sid"
)

// Claims is what a verified token says about its bearer.
type Claims struct {
	Type      TokenType
	UserID    uuid.UUID
	SessionID uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

type Config struct {
	Mode     Mode
	Issuer   string
	Audience string

	AccessTTL  time.Duration // default 15m
	RefreshTTL time.Duration // default 30d
}

type Manager struct {
	cfg  Config
	keys Keys
}

func New(cfg Config, keys Keys) (*Manager, error) {
	switch {
	case cfg.Mode != keys.Mode:
		return nil, configError("mode does not match keys")
	case cfg.Issuer == "":
		return nil, configError("issuer is required")
	case cfg.Audience == "":
		return nil, configError("audience is required")
	case cfg.Mode == ModeLocal && keys.Symmetric == nil:
		return nil, configError("missing symmetric key")
	case cfg.Mode == ModePublic && keys.Public == nil:
		return nil, configError("missing public key")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	return &Manager{cfg: cfg, keys: keys}, nil
}

func (m *Manager) AccessTTL() time.Duration  { return m.cfg.AccessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

func (m *Manager) IssueAccess(userID, sessionID uuid.UUID) (string, error) {
	return m.issue(TokenTypeAccess, userID, sessionID, m.cfg.AccessTTL)
}

func (m *Manager) IssueRefresh(userID, sessionID uuid.UUID) (string, error) {
	return m.issue(TokenTypeRefresh, userID, sessionID, m.cfg.RefreshTTL)
}

// Verify checks signature or encryption, issuer, audience and validity
// window, then that the token is of type want. All failures wrap
// ErrInvalidToken.
func (m *Manager) Verify(raw string, want TokenType) (*Claims, error) {
	// rules are rebuilt per call so ValidAt sees the current time
	parser := paseto.NewParser()
	parser.AddRule(paseto.IssuedBy(m.cfg.Issuer))
	parser.AddRule(paseto.ForAudience(m.cfg.Audience))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	var (
		tok *paseto.Token
		err error
	)
	if m.cfg.Mode == ModeLocal {
		tok, err = parser.ParseV4Local(*m.keys.Symmetric, raw, nil)
	} else {
		tok, err = parser.ParseV4Public(*m.keys.Public, raw, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, err := readClaims(tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrWrongTokenType)
	}
	return claims, nil
}

func (m *Manager) issue(tt TokenType, userID, sessionID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()

	tok := paseto.NewToken()
	tok.SetIssuer(m.cfg.Issuer)
	tok.SetAudience(m.cfg.Audience)
	tok.SetJti(uuid.NewString())
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(now.Add(ttl))
	tok.SetSubject(userID.String())
	tok.SetString(claimType, string(tt))
	tok.SetString(claimSession, sessionID.String())

	if m.cfg.Mode == ModeLocal {
		return tok.V4Encrypt(*m.keys.Symmetric, nil), nil
	}
	if m.keys.Secret == nil {
		return "", configError("verify-only keys cannot issue tokens")
	}
	return tok.V4Sign(*m.keys.Secret, nil), nil
}

func readClaims(tok *paseto.Token) (*Claims, error) {
	sub, err := tok.GetSubject()
	if err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	sidStr, err := tok.GetString(claimSession)
	if err != nil {
		return nil, err
	}
	sid, err := uuid.Parse(sidStr)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	typ, err := tok.GetString(claimType)
	if err != nil {
		return nil, err
	}
	jti, err := tok.GetJti()
	if err != nil {
		return nil, err
	}
	exp, err := tok.GetExpiration()
	if err != nil {
		return nil, err
	}

	return &Claims{
		Type:      TokenType(typ),
		UserID:    uid,
		SessionID: sid,
		TokenID:   jti,
		ExpiresAt: exp,
	}, nil
}
