package auth

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Revocations remembers logged-out token ids. A zero until keeps the entry
// forever.
type Revocations interface {
	Revoke(ctx context.Context, id string, until time.Time) error
	Revoked(ctx context.Context, id string) (bool, error)
}

// SQLRevocations keeps the list in the revoked_sessions table, so a logout
// outlives a restart.
type SQLRevocations struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLRevocations stores ids in db, which must be migrated.
func NewSQLRevocations(db *sqlx.DB) *SQLRevocations {
	return &SQLRevocations{db: db, now: time.Now}
}

// Revoke records id and prunes entries whose tokens have expired anyway.
func (s *SQLRevocations) Revoke(ctx context.Context, id string, until time.Time) error {
	var exp *time.Time
	if !until.IsZero() {
		u := until.UTC()
		exp = &u
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO revoked_sessions (id, expires_at) VALUES (?, ?)
		ON CONFLICT (id) DO NOTHING
	`), id, exp); err != nil {
		return errors.Wrap(err, "revoke session")
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM revoked_sessions WHERE expires_at IS NOT NULL AND expires_at < ?
	`), s.now().UTC())
	return errors.Wrap(err, "prune revoked sessions")
}

// Revoked looks id up.
func (s *SQLRevocations) Revoked(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM revoked_sessions WHERE id = ?`), id); err != nil {
		return false, errors.Wrap(err, "check revoked session")
	}
	return n > 0, nil
}

// MemoryRevocations keeps the list in process.
type MemoryRevocations struct {
	mu  sync.Mutex
	ids map[string]time.Time
	now func() time.Time
}

// NewMemoryRevocations creates an empty in-process list.
func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{ids: make(map[string]time.Time), now: time.Now}
}

// Revoke records id and drops entries whose tokens have expired anyway.
func (m *MemoryRevocations) Revoke(_ context.Context, id string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, exp := range m.ids {
		if !exp.IsZero() && exp.Before(now) {
			delete(m.ids, k)
		}
	}
	m.ids[id] = until
	return nil
}

// Revoked reports whether id was revoked.
func (m *MemoryRevocations) Revoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[id]
	return ok, nil
}

// RedisRevocations shares the list through redis keys.
type RedisRevocations struct {
	client *redis.Client
	prefix string
}

// NewRedisRevocations stores ids under prefix.
func NewRedisRevocations(client *redis.Client, prefix string) *RedisRevocations {
	if prefix == "" {
		prefix = "digikul:revoked:"
	}
	return &RedisRevocations{client: client, prefix: prefix}
}

// Revoke sets a key that expires with the token.
func (r *RedisRevocations) Revoke(ctx context.Context, id string, until time.Time) error {
	var ttl time.Duration
	if !until.IsZero() {
		ttl = time.Until(until)
		if ttl <= 0 {
			return nil
		}
	}
	return r.client.Set(ctx, r.prefix+id, 1, ttl).Err()
}

// Revoked checks for the key.
func (r *RedisRevocations) Revoked(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
