package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/lawscheduling/lawscheduling-backend/pkg/config"
)

type memoryStore struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *memoryStore) GetDel(ctx context.Context, key string) (string, error) {
	val, err := m.Get(ctx, key)
	_ = m.Del(ctx, key)
	return val, err
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager(s *memoryStore) *Manager {
	return &Manager{store: s, ttl: time.Hour, now: time.Now}
}

func TestGenerateStoresDigestOnly(t *testing.T) {
	s := newMemoryStore()
	token, err := newTestManager(s).Generate(context.Background(), "access-1", "user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	stored := s.data["sess:access-1"]
	if stored == "" || strings.Contains(stored, token) {
		t.Fatalf("refresh token must not be stored in the clear: %s", stored)
	}
	if !strings.Contains(stored, digest(token)) {
		t.Fatalf("expected digest in %s", stored)
	}
	if s.ttls["sess:access-1"] != time.Hour {
		t.Fatalf("session stored with ttl %s", s.ttls["sess:access-1"])
	}
}

func TestRotateIssuesFreshPair(t *testing.T) {
	s := newMemoryStore()
	m := newTestManager(s)
	ctx := context.Background()

	token, err := m.Generate(ctx, "access-123", "user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	rotated, err := m.Rotate(ctx, "access-123", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotated.UserID != "user-1" {
		t.Fatalf("expected user carried across rotation, got %q", rotated.UserID)
	}
	if rotated.AccessID == "access-123" || rotated.RefreshToken == token {
		t.Fatal("rotation must issue a fresh pair")
	}
	if _, ok := s.data["sess:access-123"]; ok {
		t.Fatal("old session left behind")
	}
	if ok, _ := m.HasSession(ctx, rotated.AccessID); !ok {
		t.Fatal("new session not stored")
	}
	if _, err := m.Rotate(ctx, "access-123", token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("replaying a rotated token must fail, got %v", err)
	}
}

func TestRotateWrongTokenEndsSession(t *testing.T) {
	m := newTestManager(newMemoryStore())
	ctx := context.Background()

	token, err := m.Generate(ctx, "access-9", "user-9")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.Rotate(ctx, "access-9", "guess"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}
	if _, err := m.Rotate(ctx, "access-9", token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("session must not survive a wrong token, got %v", err)
	}
}

func TestRotateRejectsBlankInput(t *testing.T) {
	m := newTestManager(newMemoryStore())
	for _, tc := range []struct{ id, token string }{{"", "t"}, {"a", " "}} {
		if _, err := m.Rotate(context.Background(), tc.id, tc.token); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Fatalf("Rotate(%q, %q) = %v", tc.id, tc.token, err)
		}
	}
}

func TestRevokeAndHasSession(t *testing.T) {
	s := newMemoryStore()
	m := newTestManager(s)
	ctx := context.Background()

	if _, err := m.Generate(ctx, "access-1", "user-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ok, err := m.HasSession(ctx, "access-1"); err != nil || !ok {
		t.Fatalf("expected active session, ok=%v err=%v", ok, err)
	}
	if err := m.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, err := m.HasSession(ctx, "access-1"); err != nil || ok {
		t.Fatalf("expected revoked session, ok=%v err=%v", ok, err)
	}

	s.getErr = errors.New("connection refused")
	if _, err := m.HasSession(ctx, "access-1"); err == nil {
		t.Fatal("backend errors must surface")
	}
}

func TestGenerateRequiresIDs(t *testing.T) {
	m := newTestManager(newMemoryStore())
	if _, err := m.Generate(context.Background(), "", "user"); err == nil {
		t.Fatal("expected error for empty access id")
	}
	if _, err := m.Generate(context.Background(), "access", " "); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestNewManagerValidatesTTL(t *testing.T) {
	if _, err := NewManager(nil, config.JWTConfig{}); err == nil {
		t.Fatal("expected missing client error")
	}
}
