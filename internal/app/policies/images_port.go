package policies

import (
	"context"
	"io"
)

// ImageStore keeps vehicle photos and hands back a public URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}
