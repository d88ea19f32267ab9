package camera

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	ctx := context.Background()
	seq := NewSequence(Frame{Data: []byte("a")}, Frame{Data: []byte("b")})

	f, err := seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", string(f.Data))
	f, err = seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", string(f.Data))

	_, err = seq.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, seq.Consumed())
}

func TestSequenceHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSequence(Frame{Data: []byte("a")}).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	ctx := context.Background()
	sess, err := NewSnapshot(srv.URL).Open(ctx)
	require.NoError(t, err)

	_, err = sess.Next(ctx)
	assert.Error(t, err)

	f, err := sess.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(f.Data))
	assert.Equal(t, "image/jpeg", f.ContentType)

	require.NoError(t, sess.Close())
	_, err = sess.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSnapshotNotConfigured(t *testing.T) {
	_, err := NewSnapshot("").Open(context.Background())
	assert.Error(t, err)
}
