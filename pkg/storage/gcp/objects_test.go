package gcp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"filedock/internal/config"
	"filedock/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// newTestStorage points the JSON API client at a fake backend
func newTestStorage(t *testing.T, handler http.HandlerFunc) *GCPStorage {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g, err := NewGCPStorage(context.Background(), "test-project", nil,
		option.WithEndpoint(server.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, isConfigured(&config.Config{}))
	assert.False(t, isConfigured(&config.Config{GCP: &config.GCPConfig{CredentialsFile: "key.json"}}))
	assert.True(t, isConfigured(&config.Config{GCP: &config.GCPConfig{Project: "p"}}))
}

func TestCheckCredentials(t *testing.T) {
	var project string
	g := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		project = r.URL.Query().Get("project")
		writeJSON(w, http.StatusOK, `{"kind":"storage#buckets"}`)
	})

	status, err := g.CheckCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "test-project", project)
}

func TestCheckCredentials_Forbidden(t *testing.T) {
	g := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"error":{"code":403,"message":"permission denied"}}`)
	})

	status, err := g.CheckCredentials(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestListObjects(t *testing.T) {
	var path, prefix string
	g := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		path, prefix = r.URL.Path, r.URL.Query().Get("prefix")
		writeJSON(w, http.StatusOK, `{
  "kind": "storage#objects",
  "items": [
    {"name": "images/cat.png", "bucket": "test-bucket", "size": "12345", "contentType": "image/png", "storageClass": "STANDARD", "updated": "2025-01-10T08:15:00.000Z"},
    {"name": "images/dog.jpg", "bucket": "test-bucket", "size": "42", "updated": "2025-01-11T08:15:00.000Z"}
  ]
}`)
	})

	page, err := g.ListObjects(context.Background(), "test-bucket", "images/")
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/b/test-bucket/o", path)
	assert.Equal(t, "images/", prefix)
	assert.False(t, page.IsTruncated)
	require.Len(t, page.Objects, 2)
	assert.Equal(t, "images/cat.png", page.Objects[0].Key)
	assert.Equal(t, int64(12345), page.Objects[0].Size)
	assert.Equal(t, "images/dog.jpg", page.Objects[1].Key)
}

func TestListObjects_Empty(t *testing.T) {
	g := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"kind":"storage#objects"}`)
	})

	page, err := g.ListObjects(context.Background(), "test-bucket", "")
	require.NoError(t, err)
	assert.Empty(t, page.Objects)
}

func TestHeadObject_NotFound(t *testing.T) {
	g := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":{"code":404,"message":"No such object: test-bucket/missing.txt"}}`)
	})

	_, err := g.HeadObject(context.Background(), "test-bucket", "missing.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrObjectNotFound))
}

func TestDeleteObject(t *testing.T) {
	var method, path string
	g := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, g.DeleteObject(context.Background(), "test-bucket", "old.txt"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/storage/v1/b/test-bucket/o/old.txt", path)
}
