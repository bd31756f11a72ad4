package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/imageforge/gateway/internal/cache/freecache"
	"github.com/imageforge/gateway/internal/queue"
	"github.com/imageforge/gateway/internal/service/listing"
	"github.com/imageforge/gateway/internal/service/monitor"
	"github.com/imageforge/gateway/internal/service/submission"
	"github.com/imageforge/gateway/internal/storage"
	"github.com/imageforge/gateway/internal/validate"
	"github.com/imageforge/gateway/model"
)

type fakeStorage struct {
	uploads   map[string][]byte
	objects   []storage.ObjectInfo
	uploadErr error
	listErr   error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, key string, body []byte, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads[key] = body
	return nil
}

func (f *fakeStorage) Download(_ context.Context, key string) ([]byte, error) {
	raw, ok := f.uploads[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return raw, nil
}

func (f *fakeStorage) List(context.Context) ([]storage.ObjectInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects, nil
}

func (f *fakeStorage) PresignedGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeStorage) Bucket() string { return "test-bucket" }
func (f *fakeStorage) Close()         {}

type fakeQueue struct {
	published  int
	publishErr error
	depthErr   error
}

func (f *fakeQueue) Publish(context.Context, queue.Lane, string, []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published++
	return nil
}

func (f *fakeQueue) Depth(_ context.Context, lane queue.Lane) (model.QueueSnapshot, error) {
	if f.depthErr != nil {
		return model.QueueSnapshot{}, f.depthErr
	}
	return model.QueueSnapshot{QueueName: string(lane), MessagesAvailable: 2, MessagesInFlight: 1}, nil
}

func (f *fakeQueue) Shutdown() {}

func newTestServer(st *fakeStorage, q *fakeQueue, origins ...string) *Server {
	sub := submission.NewService(st, q, validate.DefaultLimits(), []string{"flux"})
	list := listing.NewService(st, freecache.NewFreeCache(1024*1024, 5), 5, ".png", time.Hour)
	mon := monitor.NewService(q, queue.Lanes())
	return NewServer(sub, list, mon, origins)
}

func postRequest(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/request", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestSubmitJobSuccess(t *testing.T) {
	t.Parallel()

	st := newFakeStorage()
	q := &fakeQueue{}
	s := newTestServer(st, q)

	rec := postRequest(t, s, `{"height":512,"width":512,"steps":20,"seed":0,"cfg":5,"prompt":"a cat","model":"flux"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string              `json:"status"`
		Data   model.JobDescriptor `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Message sent", resp.Status)
	require.Greater(t, resp.Data.Seed, int64(0))

	_, err := uuid.Parse(resp.Data.ID)
	require.NoError(t, err)

	require.Contains(t, st.uploads, resp.Data.ID+".json")
	require.Equal(t, 1, q.published)
}

func TestSubmitJobValidationFailure(t *testing.T) {
	t.Parallel()

	s := newTestServer(newFakeStorage(), &fakeQueue{})

	rec := postRequest(t, s, `{"height":2000,"width":512,"steps":20,"seed":0,"cfg":5,"prompt":"a cat","model":"flux"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Validation failed", resp.Error)
	require.Len(t, resp.Details, 1)
	require.Contains(t, resp.Details[0], "height")
}

func TestSubmitJobMalformedBody(t *testing.T) {
	t.Parallel()

	s := newTestServer(newFakeStorage(), &fakeQueue{})

	rec := postRequest(t, s, `{not json at all`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Validation failed", resp.Error)
	require.Len(t, resp.Details, 7, "every required field reported missing")
}

func TestSubmitJobStorageFailure(t *testing.T) {
	t.Parallel()

	st := newFakeStorage()
	st.uploadErr = errors.New("bucket unreachable")
	s := newTestServer(st, &fakeQueue{})

	rec := postRequest(t, s, `{"height":512,"width":512,"steps":20,"seed":0,"cfg":5,"prompt":"a cat","model":"flux"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "failed to store job request")
}

func TestSubmitJobQueueFailure(t *testing.T) {
	t.Parallel()

	st := newFakeStorage()
	q := &fakeQueue{publishErr: errors.New("stream down")}
	s := newTestServer(st, q)

	rec := postRequest(t, s, `{"height":512,"width":512,"steps":20,"seed":0,"cfg":5,"prompt":"a cat","model":"flux"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "failed to queue job request")
}

func TestListArtifacts(t *testing.T) {
	t.Parallel()

	st := newFakeStorage()
	st.objects = []storage.ObjectInfo{
		{Key: "abc.png", LastModified: time.Unix(100, 0).UTC()},
	}
	s := newTestServer(st, &fakeQueue{})

	req := httptest.NewRequest(http.MethodGet, "/s3list", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var records []model.ArtifactRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	require.Equal(t, "abc", records[0].ID)
}

func TestListArtifactsDegradesToEmpty(t *testing.T) {
	t.Parallel()

	st := newFakeStorage()
	st.listErr = errors.New("store unreachable")
	s := newTestServer(st, &fakeQueue{})

	req := httptest.NewRequest(http.MethodGet, "/s3list", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestQueueMonitor(t *testing.T) {
	t.Parallel()

	s := newTestServer(newFakeStorage(), &fakeQueue{})

	req := httptest.NewRequest(http.MethodGet, "/sqs_monitor", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snapshots []model.QueueSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshots))
	require.Len(t, snapshots, 2)
	require.Equal(t, "fast", snapshots[0].QueueName)
	require.Equal(t, "slow", snapshots[1].QueueName)
}

func TestQueueMonitorFailure(t *testing.T) {
	t.Parallel()

	q := &fakeQueue{depthErr: errors.New("consumer gone")}
	s := newTestServer(newFakeStorage(), q)

	req := httptest.NewRequest(http.MethodGet, "/sqs_monitor", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "queue monitoring failed")
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	s := newTestServer(newFakeStorage(), &fakeQueue{}, "https://ai.example.io")

	req := httptest.NewRequest(http.MethodOptions, "/request", nil)
	req.Header.Set("Origin", "https://ai.example.io")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://ai.example.io", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Body.String())
}

func TestCORSUnknownOrigin(t *testing.T) {
	t.Parallel()

	s := newTestServer(newFakeStorage(), &fakeQueue{}, "https://ai.example.io")

	req := httptest.NewRequest(http.MethodOptions, "/request", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
