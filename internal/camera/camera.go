// Package camera supplies frames for face capture: a finite sequence of
// frames uploaded by the client, or a snapshot camera reachable over HTTP.
package camera

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Frame is one captured image.
type Frame struct {
	Data        []byte
	ContentType string
}

// Empty reports whether the frame carries no image.
func (f Frame) Empty() bool { return len(f.Data) == 0 }

// Source yields frames until io.EOF. Other errors are failed reads; the
// caller may keep pulling.
type Source interface {
	Next(ctx context.Context) (Frame, error)
}

// Sequence is a finite Source over frames already in memory.
type Sequence struct {
	frames   []Frame
	consumed int
}

// NewSequence creates a source over frames.
func NewSequence(frames ...Frame) *Sequence {
	return &Sequence{frames: frames}
}

// Next returns the next frame or io.EOF.
func (s *Sequence) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.consumed >= len(s.frames) {
		return Frame{}, io.EOF
	}
	f := s.frames[s.consumed]
	s.consumed++
	return f, nil
}

// Consumed is the number of frames handed out so far.
func (s *Sequence) Consumed() int { return s.consumed }

// Snapshot is a camera that serves a JPEG per GET request, as most IP
// cameras do.
type Snapshot struct {
	URL  string
	HTTP *http.Client
}

// NewSnapshot creates a snapshot camera.
func NewSnapshot(url string) *Snapshot {
	return &Snapshot{URL: url, HTTP: &http.Client{Timeout: 5 * time.Second}}
}

// Open acquires the camera for one capture. Close the returned session when
// the capture is over.
func (s *Snapshot) Open(ctx context.Context) (*SnapshotSession, error) {
	if s.URL == "" {
		return nil, fmt.Errorf("camera not configured")
	}
	return &SnapshotSession{cam: s}, nil
}

// SnapshotSession pulls frames from a Snapshot camera.
type SnapshotSession struct {
	cam    *Snapshot
	closed bool
}

// Next grabs one frame.
func (s *SnapshotSession) Next(ctx context.Context) (Frame, error) {
	if s.closed {
		return Frame{}, io.EOF
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cam.URL, nil)
	if err != nil {
		return Frame{}, err
	}
	resp, err := s.cam.HTTP.Do(req)
	if err != nil {
		return Frame{}, fmt.Errorf("camera read: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Frame{}, fmt.Errorf("camera read: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return Frame{}, fmt.Errorf("camera read: %w", err)
	}
	return Frame{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// Close releases the camera. Idle connections are dropped so the device is
// free for the next capture.
func (s *SnapshotSession) Close() error {
	s.closed = true
	s.cam.HTTP.CloseIdleConnections()
	return nil
}
