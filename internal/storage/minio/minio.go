package minio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/imageforge/gateway/internal/config"
	"github.com/imageforge/gateway/internal/job_tracer"
	"github.com/imageforge/gateway/internal/storage"
	"github.com/imageforge/gateway/internal/util"
)

// MinioClient wraps the MinIO SDK client for one bucket.
type MinioClient struct {
	client    *minio.Client
	bucket    string
	transport *http.Transport
}

// NewMinioClient initializes and returns a MinIO-backed storage client.
func NewMinioClient(cfg *config.MinioConfig) (storage.Storage, error) {

	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   50,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		DisableCompression: true,
		DisableKeepAlives:  false,
	}

	cli, err := minio.New(cfg.URL, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.ACCESS_KEY, cfg.SECRET_KEY, ""),
		Secure:    cfg.USE_SSL,
		Transport: transport,
	})
	if err != nil {
		return nil, err
	}

	return &MinioClient{client: cli, bucket: cfg.BUCKET, transport: transport}, nil
}

// Upload writes an object into the bucket.
func (m *MinioClient) Upload(ctx context.Context, key string, body []byte, contentType string) error {

	tracer := job_tracer.GetTracer()
	ctx, span := tracer.Start(ctx, "MinIO/Upload")
	defer span.End()

	reader := bytes.NewReader(body)

	_, err := m.client.PutObject(ctx, m.bucket, key, reader, int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		util.RecordSpanError(span, err)
		return err
	}

	return nil
}

// Download reads an object from the bucket.
func (m *MinioClient) Download(ctx context.Context, key string) ([]byte, error) {

	tracer := job_tracer.GetTracer()
	ctx, span := tracer.Start(ctx, "MinIO/Download")
	defer span.End()

	object, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		util.RecordSpanError(span, err)
		return nil, err
	}
	defer object.Close()

	// check if the object exists
	if _, err := object.Stat(); err != nil {
		util.RecordSpanError(span, err)
		return nil, err
	}

	data, err := io.ReadAll(object)
	if err != nil {
		util.RecordSpanError(span, err)
		return nil, err
	}

	return data, nil
}

// List walks the whole bucket namespace. The namespace is flat and small;
// selection and ordering happen in the listing service.
func (m *MinioClient) List(ctx context.Context) ([]storage.ObjectInfo, error) {

	tracer := job_tracer.GetTracer()
	ctx, span := tracer.Start(ctx, "MinIO/List")
	defer span.End()

	var objects []storage.ObjectInfo
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			util.RecordSpanError(span, obj.Err)
			return nil, obj.Err
		}
		objects = append(objects, storage.ObjectInfo{
			Key:          obj.Key,
			LastModified: obj.LastModified,
		})
	}

	return objects, nil
}

// PresignedGet returns a time-limited download URL for an object.
func (m *MinioClient) PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error) {

	tracer := job_tracer.GetTracer()
	ctx, span := tracer.Start(ctx, "MinIO/PresignedGet")
	defer span.End()

	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, url.Values{})
	if err != nil {
		util.RecordSpanError(span, err)
		return "", err
	}

	return u.String(), nil
}

func (m *MinioClient) Bucket() string {
	return m.bucket
}

func (m *MinioClient) Close() {
	m.transport.CloseIdleConnections()
}
