package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"

	"digikul/internal/camera"
)

// Detector is the face capability: it says whether a frame shows a face.
type Detector interface {
	HasFace(ctx context.Context, f camera.Frame) (bool, error)
}

// Scan is the outcome of polling a frame source.
type Scan struct {
	Detected bool
	// Frame is the frame with the face, or the last frame examined.
	Frame    camera.Frame
	Attempts int
}

// ScanFrames pulls at most maxAttempts frames from src and stops at the
// first one showing a face; nothing past that frame is consumed. Failed
// reads use up an attempt, io.EOF ends the sequence early. A detector error
// aborts the scan.
func ScanFrames(ctx context.Context, src camera.Source, det Detector, maxAttempts int) (Scan, error) {
	var scan Scan
	for scan.Attempts < maxAttempts {
		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		scan.Attempts++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return scan, ctxErr
			}
			continue
		}

		scan.Frame = f
		ok, err := det.HasFace(ctx, f)
		if err != nil {
			return scan, fmt.Errorf("face detection: %w", err)
		}
		if ok {
			scan.Detected = true
			return scan, nil
		}
	}
	return scan, nil
}
