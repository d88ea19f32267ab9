package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digikul/internal/session"
	"digikul/internal/store"
	"digikul/internal/user"
)

var student = session.Identity{Username: "student1", Role: user.RoleStudent}

func TestIssueParseRoundTrip(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokens("digikul", "secret", 0, NewMemoryRevocations())

	tok, err := tokens.Issue(student)
	require.NoError(t, err)
	assert.Nil(t, tok.ExpiresAt)
	assert.NotEmpty(t, tok.ID)

	claims, err := tokens.Parse(ctx, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, student, claims.Identity())
	assert.Equal(t, tok.ID, claims.ID)
}

func TestParseRejects(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokens("digikul", "secret", 0, NewMemoryRevocations())
	tok, err := tokens.Issue(student)
	require.NoError(t, err)

	t.Run("other key", func(t *testing.T) {
		_, err := NewTokens("digikul", "other", 0, NewMemoryRevocations()).Parse(ctx, tok.Value)
		assert.Error(t, err)
	})
	t.Run("other issuer", func(t *testing.T) {
		_, err := NewTokens("someone", "secret", 0, NewMemoryRevocations()).Parse(ctx, tok.Value)
		assert.Error(t, err)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse(ctx, "not-a-token")
		assert.Error(t, err)
	})
	t.Run("expired", func(t *testing.T) {
		short := NewTokens("digikul", "secret", time.Minute, NewMemoryRevocations())
		short.now = func() time.Time { return time.Now().Add(-time.Hour) }
		old, err := short.Issue(student)
		require.NoError(t, err)
		short.now = time.Now
		_, err = short.Parse(ctx, old.Value)
		assert.Error(t, err)
	})
}

func TestRevokeMemory(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokens("digikul", "secret", 0, NewMemoryRevocations())
	tok, err := tokens.Issue(student)
	require.NoError(t, err)
	claims, err := tokens.Parse(ctx, tok.Value)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, claims))
	_, err = tokens.Parse(ctx, tok.Value)
	assert.EqualError(t, err, "token revoked")
}

func TestRevokeRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens := NewTokens("digikul", "secret", time.Hour, NewRedisRevocations(client, ""))
	tok, err := tokens.Issue(student)
	require.NoError(t, err)
	claims, err := tokens.Parse(ctx, tok.Value)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, claims))
	assert.True(t, mr.Exists("digikul:revoked:"+tok.ID))
	assert.Greater(t, mr.TTL("digikul:revoked:"+tok.ID), time.Duration(0))

	_, err = tokens.Parse(ctx, tok.Value)
	assert.Error(t, err)
}

func TestRevokeSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	db, err := store.NewDB(ctx, path)
	require.NoError(t, err)
	tokens := NewTokens("digikul", "secret", 0, NewSQLRevocations(db.Client))
	tok, err := tokens.Issue(student)
	require.NoError(t, err)
	claims, err := tokens.Parse(ctx, tok.Value)
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(ctx, claims))
	require.NoError(t, tokens.Revoke(ctx, claims), "revoking twice is fine")
	require.NoError(t, db.Close())

	db, err = store.NewDB(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	restarted := NewTokens("digikul", "secret", 0, NewSQLRevocations(db.Client))

	_, err = restarted.Parse(ctx, tok.Value)
	assert.EqualError(t, err, "token revoked")

	other, err := restarted.Issue(student)
	require.NoError(t, err)
	_, err = restarted.Parse(ctx, other.Value)
	assert.NoError(t, err)
}

func TestSQLRevocationsPruneExpired(t *testing.T) {
	ctx := context.Background()
	db, err := store.NewDB(ctx, filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	revoked := NewSQLRevocations(db.Client)
	require.NoError(t, revoked.Revoke(ctx, "old", time.Now().Add(-time.Hour)))
	require.NoError(t, revoked.Revoke(ctx, "forever", time.Time{}))

	ok, err := revoked.Revoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are pruned")
	ok, err = revoked.Revoked(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
}
