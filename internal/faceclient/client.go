package faceclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"digikul/internal/camera"
)

// Region is a detected face bounding box.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// DetectResult lists the face regions found in a frame.
type DetectResult struct {
	Faces         []Region `json:"faces"`
	FacesDetected int      `json:"faces_detected"`
}

// ErrUnavailable marks failures of the face service itself, as opposed to
// a frame without a face.
var ErrUnavailable = errors.New("face service unavailable")

// Client calls the face detection microservice.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client with configurable timeout.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // detection on a cold model can take time
		},
	}
}

// HasFace reports whether the frame contains at least one face region.
func (c *Client) HasFace(ctx context.Context, f camera.Frame) (bool, error) {
	res, err := c.Detect(ctx, f)
	if err != nil {
		return false, err
	}
	return res.FacesDetected > 0, nil
}

// Detect sends a frame to the face service.
func (c *Client) Detect(ctx context.Context, f camera.Frame) (*DetectResult, error) {
	if f.Empty() {
		return &DetectResult{}, nil
	}
	if c.Skip {
		return &DetectResult{
			Faces:         []Region{{X: 0, Y: 0, W: 100, H: 100}},
			FacesDetected: 1,
		}, nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "frame.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(f.Data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/detect", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %s: %s", ErrUnavailable, resp.Status, string(bodyBytes))
	}

	var out DetectResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if out.FacesDetected == 0 {
		out.FacesDetected = len(out.Faces)
	}
	return &out, nil
}

// Health checks if the face service is available.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}

	return nil
}
