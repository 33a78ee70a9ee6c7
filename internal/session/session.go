// Package session carries the authenticated principal through a request.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Marga-Ghale/taska-backend/internal/types"
)

// ErrNotFound is returned by a Store when the key is absent or expired.
var ErrNotFound = errors.New("session not found")

// Session is the principal resolved from a bearer token.
type Session struct {
	ID     string        `json:"id"`
	UserID string        `json:"userId"`
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Roles  types.RoleSet `json:"roles"`
}

func (s *Session) HasRole(r types.Role) bool {
	return s != nil && s.Roles.Has(r)
}

func (s *Session) HasAnyRole(roles ...types.Role) bool {
	return s != nil && s.Roles.HasAny(roles...)
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// Store caches sessions keyed by user id.
type Store interface {
	SetSession(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetSession(ctx context.Context, key string, dest interface{}) error
	DeleteSession(ctx context.Context, key string) error
}

// MemoryStore is a process-local Store used when Redis is not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) SetSession(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	s, ok := value.(*Session)
	if !ok {
		return errors.New("memory store only holds *Session values")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{session: *s, expiresAt: time.Now().Add(expiration)}
	return nil
}

func (m *MemoryStore) GetSession(ctx context.Context, key string, dest interface{}) error {
	out, ok := dest.(*Session)
	if !ok {
		return errors.New("memory store only holds *Session values")
	}
	m.mu.RLock()
	e, found := m.entries[key]
	m.mu.RUnlock()
	if !found || time.Now().After(e.expiresAt) {
		return ErrNotFound
	}
	*out = e.session
	out.Roles = append(types.RoleSet{}, e.session.Roles...)
	return nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
