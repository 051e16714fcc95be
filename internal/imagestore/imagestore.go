// Package imagestore holds profile-image blobs for the registration flow.
// The service talks to it through a narrow interface: a raw byte buffer in,
// a public URL plus an opaque storage id out.
package imagestore

import (
	"context"
	"errors"
)

var (
	// ErrNotImage is returned when the buffer does not sniff as an image.
	ErrNotImage = errors.New("imagestore: only image files are allowed")
	// ErrTooLarge is returned when the buffer exceeds the configured cap.
	ErrTooLarge = errors.New("imagestore: image exceeds size limit")
)

// Image is a stored object reference.
type Image struct {
	URL      string
	PublicID string
}

// Store accepts raw image bytes and returns a public reference. A failure
// aborts the registration that triggered the upload.
type Store interface {
	Upload(ctx context.Context, data []byte) (Image, error)
}
