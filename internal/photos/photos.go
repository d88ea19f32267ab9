// Package photos stores captured frames: registered faces under
// registered_faces/ and attendance evidence under attendance_photos/.
package photos

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"digikul/internal/apperr"
	"digikul/internal/camera"
	"digikul/internal/cloudinary"
)

// Key layout shared by every backend.
func RegisteredFaceKey(username string) string {
	return path.Join("registered_faces", safeName(username)+".jpg")
}

func AttendanceKey(username, suffix string) string {
	return path.Join("attendance_photos", safeName(username)+"_"+suffix+".jpg")
}

// IsRemote reports whether ref points outside the local photo directory.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://")
}

// Local keeps photos in a directory tree.
type Local struct {
	Root string
}

// NewLocal creates the directory layout under root.
func NewLocal(root string) (*Local, error) {
	for _, dir := range []string{"registered_faces", "attendance_photos"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, errors.Wrap(err, "create photo dir")
		}
	}
	return &Local{Root: root}, nil
}

// Save writes the frame at key and returns the reference to store.
func (l *Local) Save(_ context.Context, key string, f camera.Frame) (string, error) {
	if err := os.WriteFile(filepath.Join(l.Root, filepath.FromSlash(key)), f.Data, 0o644); err != nil {
		return "", errors.Wrap(err, "save photo")
	}
	return key, nil
}

// Path resolves a stored reference to a file, failing with a not-found
// error when the file has gone missing.
func (l *Local) Path(ref string) (string, error) {
	clean := path.Clean("/" + ref)[1:]
	if clean == "" || clean != ref {
		return "", apperr.NotFound("photo not found")
	}
	p := filepath.Join(l.Root, filepath.FromSlash(clean))
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return "", apperr.NotFound("photo not found")
		}
		return "", errors.Wrap(err, "stat photo")
	}
	return p, nil
}

// Cloud uploads photos to Cloudinary; references are https URLs.
type Cloud struct {
	client *cloudinary.Client
}

// NewCloud wraps a Cloudinary client.
func NewCloud(client *cloudinary.Client) *Cloud {
	return &Cloud{client: client}
}

// Save uploads the frame.
func (c *Cloud) Save(ctx context.Context, key string, f camera.Frame) (string, error) {
	res, err := c.client.Upload(ctx, f.Data, strings.TrimSuffix(key, ".jpg"))
	if err != nil {
		return "", err
	}
	return res.SecureURL, nil
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, s)
}
