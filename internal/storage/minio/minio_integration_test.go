//go:build integration
// +build integration

package minio

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/imageforge/gateway/internal/config"
)

// Requires a running MinIO reachable through the usual MINIO_* env keys,
// e.g. via `docker run -p 9000:9000 minio/minio server /data`.
func integrationClient(t *testing.T) *MinioClient {
	t.Helper()

	if os.Getenv("MINIO_ENDPOINT") == "" {
		t.Skip("MINIO_ENDPOINT not set")
	}

	cfg, err := config.GetMinioConfig()
	require.NoError(t, err)

	s, err := NewMinioClient(cfg)
	require.NoError(t, err)

	client, ok := s.(*MinioClient)
	require.True(t, ok)
	return client
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	client := integrationClient(t)
	ctx := context.Background()

	key := fmt.Sprintf("%s.json", uuid.NewString())
	body := []byte(`{"id":"it","prompt":"a cat"}`)

	require.NoError(t, client.Upload(ctx, key, body, "application/json"))

	got, err := client.Download(ctx, key)
	require.NoError(t, err)
	require.Equal(t, body, got)
}

func TestDownloadMissingObject(t *testing.T) {
	client := integrationClient(t)

	_, err := client.Download(context.Background(), "does-not-exist.json")
	require.Error(t, err)
}

func TestListSeesUploadedObjects(t *testing.T) {
	client := integrationClient(t)
	ctx := context.Background()

	key := fmt.Sprintf("%s.png", uuid.NewString())
	require.NoError(t, client.Upload(ctx, key, []byte("not really a png"), "image/png"))

	objects, err := client.List(ctx)
	require.NoError(t, err)

	found := false
	for _, obj := range objects {
		if obj.Key == key {
			found = true
			require.False(t, obj.LastModified.IsZero())
		}
	}
	require.True(t, found, "uploaded object must appear in the listing")
}

func TestPresignedGetServesObject(t *testing.T) {
	client := integrationClient(t)
	ctx := context.Background()

	key := fmt.Sprintf("%s.png", uuid.NewString())
	require.NoError(t, client.Upload(ctx, key, []byte("artifact bytes"), "image/png"))

	url, err := client.PresignedGet(ctx, key, time.Minute)
	require.NoError(t, err)

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
