package attendance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digikul/internal/camera"
)

// faceIf reports a face for frames whose payload is "face".
type faceIf struct {
	calls int
	err   error
}

func (d *faceIf) HasFace(_ context.Context, f camera.Frame) (bool, error) {
	d.calls++
	if d.err != nil {
		return false, d.err
	}
	return string(f.Data) == "face", nil
}

// flakySource fails every read listed in fail, then serves frames.
type flakySource struct {
	fail   map[int]bool
	frames []camera.Frame
	reads  int
}

func (s *flakySource) Next(context.Context) (camera.Frame, error) {
	s.reads++
	if s.fail[s.reads] {
		return camera.Frame{}, errors.New("camera read failed")
	}
	return s.frames[(s.reads-1)%len(s.frames)], nil
}

func frames(payloads ...string) []camera.Frame {
	out := make([]camera.Frame, len(payloads))
	for i, p := range payloads {
		out[i] = camera.Frame{Data: []byte(p)}
	}
	return out
}

func TestScanFramesStopsAtFirstFace(t *testing.T) {
	seq := camera.NewSequence(frames("wall", "wall", "face", "face", "wall")...)
	det := &faceIf{}

	scan, err := ScanFrames(context.Background(), seq, det, 5)
	require.NoError(t, err)
	assert.True(t, scan.Detected)
	assert.Equal(t, 3, scan.Attempts)
	assert.Equal(t, 3, seq.Consumed())
	assert.Equal(t, 3, det.calls)
}

func TestScanFramesExhaustion(t *testing.T) {
	t.Run("budget", func(t *testing.T) {
		seq := camera.NewSequence(frames("wall", "wall", "wall", "face")...)
		scan, err := ScanFrames(context.Background(), seq, &faceIf{}, 3)
		require.NoError(t, err)
		assert.False(t, scan.Detected)
		assert.Equal(t, 3, seq.Consumed())
		assert.Equal(t, "wall", string(scan.Frame.Data))
	})
	t.Run("sequence ends", func(t *testing.T) {
		seq := camera.NewSequence(frames("wall")...)
		scan, err := ScanFrames(context.Background(), seq, &faceIf{}, 20)
		require.NoError(t, err)
		assert.False(t, scan.Detected)
		assert.Equal(t, 1, scan.Attempts)
	})
	t.Run("zero budget", func(t *testing.T) {
		seq := camera.NewSequence(frames("face")...)
		scan, err := ScanFrames(context.Background(), seq, &faceIf{}, 0)
		require.NoError(t, err)
		assert.False(t, scan.Detected)
		assert.Equal(t, 0, seq.Consumed())
	})
}

func TestScanFramesFailedReadsUseAttempts(t *testing.T) {
	src := &flakySource{fail: map[int]bool{1: true, 2: true}, frames: frames("face")}
	scan, err := ScanFrames(context.Background(), src, &faceIf{}, 3)
	require.NoError(t, err)
	assert.True(t, scan.Detected)
	assert.Equal(t, 3, scan.Attempts)

	src = &flakySource{fail: map[int]bool{1: true, 2: true}, frames: frames("face")}
	scan, err = ScanFrames(context.Background(), src, &faceIf{}, 2)
	require.NoError(t, err)
	assert.False(t, scan.Detected)
}

func TestScanFramesDetectorError(t *testing.T) {
	seq := camera.NewSequence(frames("face", "face")...)
	_, err := ScanFrames(context.Background(), seq, &faceIf{err: errors.New("service down")}, 5)
	require.Error(t, err)
	assert.Equal(t, 1, seq.Consumed())
}

func TestScanFramesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ScanFrames(ctx, camera.NewSequence(frames("face")...), &faceIf{}, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
