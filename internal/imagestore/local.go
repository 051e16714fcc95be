package imagestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"leadsyncflow.app/internal/ids"
)

// DefaultMaxBytes caps uploads at 5 MiB when no limit is configured.
const DefaultMaxBytes = 5 << 20

var _ Store = (*Local)(nil)

// Local stores images on the local filesystem and serves them under a
// public base URL. It stands in for a remote object store behind the same
// interface.
type Local struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewLocal creates the target directory if needed.
func NewLocal(dir, baseURL string, maxBytes int64) (*Local, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// Upload sniffs the buffer, rejects non-images and oversized payloads, and
// writes the blob under a fresh opaque id.
func (l *Local) Upload(ctx context.Context, data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrNotImage
	}
	if int64(len(data)) > l.maxBytes {
		return Image{}, ErrTooLarge
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return Image{}, ErrNotImage
	}

	publicID := ids.New() + mime.Extension()
	if err := os.WriteFile(filepath.Join(l.dir, publicID), data, 0o644); err != nil {
		return Image{}, err
	}
	return Image{
		URL:      l.baseURL + "/" + publicID,
		PublicID: publicID,
	}, nil
}
