package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageStore(t *testing.T) {
	_, err := NewImageStore(Config{Bucket: "b"}, nil)
	assert.Error(t, err)
	_, err = NewImageStore(Config{Endpoint: "http://localhost:9000"}, nil)
	assert.Error(t, err)

	store, err := NewImageStore(Config{Endpoint: "http://localhost:9000/", Bucket: "vehicle-images"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/vehicle-images/vehicles/v-1/a.jpg", store.objectURL("/vehicles/v-1/a.jpg"))

	public, err := NewImageStore(Config{Endpoint: "http://minio:9000", Bucket: "imgs", PublicBaseURL: "https://cdn.example.com/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/imgs/x.png", public.objectURL("x.png"))
}

func TestUploadRejectsBeforeNetwork(t *testing.T) {
	store, err := NewImageStore(Config{Endpoint: "http://127.0.0.1:1", Bucket: "b"}, nil)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "k.pdf", strings.NewReader("%PDF"), "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedContent)

	_, err = store.Upload(context.Background(), " / ", strings.NewReader("x"), "image/png")
	assert.Error(t, err)

	_, err = store.Upload(context.Background(), "k.png", nil, "image/png")
	assert.Error(t, err)
}

func TestNormalizeContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", normalizeContentType("Image/JPG"))
	assert.Equal(t, "image/png", normalizeContentType("image/png; charset=binary"))
	assert.Equal(t, "minio:9000", hostOf("http://minio:9000"))
	assert.Equal(t, "minio:9000", hostOf("minio:9000"))
}

func TestNoopStore(t *testing.T) {
	_, err := NoopStore{}.Upload(context.Background(), "k", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
