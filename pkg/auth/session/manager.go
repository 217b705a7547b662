// Package session keeps refresh sessions in Redis, one per issued access
// token id. Refresh tokens are opaque, single-use and stored only as a
// SHA-256 digest.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/lawscheduling/lawscheduling-backend/pkg/config"
	redisclient "github.com/lawscheduling/lawscheduling-backend/pkg/redis"
)

var (
	// ErrInvalidRefreshToken covers unknown, consumed and mismatched tokens
	// alike so callers cannot tell them apart.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errBlankID             = errors.New("access id and user id are required")
)

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GetDel(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

type entry struct {
	UserID   string    `json:"uid"`
	Digest   string    `json:"digest"`
	IssuedAt time.Time `json:"iat"`
}

// Rotated is the pair issued by a successful refresh.
type Rotated struct {
	AccessID     string
	RefreshToken string
	UserID       string
}

// AccessSessionChecker is what the auth middleware needs to reject access
// tokens whose session was revoked.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type Manager struct {
	store store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager requires the refresh TTL to outlive the access token TTL,
// otherwise an access token could outlive the session that backs it.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	access := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= 0 || ttl <= access {
		return nil, fmt.Errorf("refresh token ttl (%s) must be positive and exceed access token ttl (%s)", ttl, access)
	}
	return &Manager{store: client, ttl: ttl, now: time.Now}, nil
}

// NewAccessID is the jti of an access token and the key of its session.
func NewAccessID() string {
	return uuid.NewString()
}

// Generate opens a session for accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID, userID string) (string, error) {
	if blank(accessID) || blank(userID) {
		return "", errBlankID
	}
	return m.open(ctx, accessID, userID)
}

// Rotate consumes the session under oldAccessID and, when provided is its
// refresh token, opens a new one for the same user. A wrong token still
// consumes the session.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (Rotated, error) {
	if blank(oldAccessID) || blank(provided) {
		return Rotated{}, ErrInvalidRefreshToken
	}

	raw, err := m.store.GetDel(ctx, m.store.AccessSessionKey(oldAccessID))
	if errors.Is(err, redislib.Nil) {
		return Rotated{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return Rotated{}, err
	}

	var prior entry
	if json.Unmarshal([]byte(raw), &prior) != nil || !matches(prior.Digest, provided) {
		return Rotated{}, ErrInvalidRefreshToken
	}

	next := Rotated{AccessID: NewAccessID(), UserID: prior.UserID}
	if next.RefreshToken, err = m.open(ctx, next.AccessID, prior.UserID); err != nil {
		return Rotated{}, err
	}
	return next, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if blank(accessID) {
		return errBlankID
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if blank(accessID) {
		return false, errBlankID
	}
	_, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redislib.Nil):
		return false, nil
	default:
		return false, err
	}
}

func (m *Manager) open(ctx context.Context, accessID, userID string) (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(secret)

	payload, err := json.Marshal(entry{UserID: userID, Digest: digest(token), IssuedAt: m.now().UTC()})
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}
	if err := m.store.Set(ctx, m.store.AccessSessionKey(accessID), string(payload), m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func matches(stored, provided string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(digest(provided))) == 1
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
