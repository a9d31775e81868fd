package aws

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"filedock/internal/config"
	"filedock/pkg/storage"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStorage points an S3 client at a fake HTTP backend
func newTestStorage(t *testing.T, handler http.HandlerFunc) *AWSStorage {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		BaseEndpoint:     awssdk.String(server.URL),
		Region:           "us-east-1",
		UsePathStyle:     true,
		RetryMaxAttempts: 1,
		Credentials:      credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
	})

	return newAWSStorage(client, nil)
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, isConfigured(&config.Config{}))
	assert.False(t, isConfigured(&config.Config{AWS: &config.AWSConfig{}}))
	assert.True(t, isConfigured(&config.Config{AWS: &config.AWSConfig{Region: "eu-west-1"}}))
}

func TestCheckCredentials(t *testing.T) {
	var maxBuckets string
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		maxBuckets = r.URL.Query().Get("max-buckets")
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><ListAllMyBucketsResult><Buckets></Buckets></ListAllMyBucketsResult>`)
	})

	status, err := s.CheckCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1", maxBuckets)
}

func TestCheckCredentials_Forbidden(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `<?xml version="1.0"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
	})

	status, err := s.CheckCredentials(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, err.Error(), "error listing buckets")
}

func TestListObjects(t *testing.T) {
	var path, listType, prefix string
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		listType, prefix = r.URL.Query().Get("list-type"), r.URL.Query().Get("prefix")
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>test-bucket</Name>
  <Prefix>images/</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>true</IsTruncated>
  <NextContinuationToken>next-page</NextContinuationToken>
  <Contents>
    <Key>images/</Key>
    <LastModified>2025-01-10T08:15:00.000Z</LastModified>
    <ETag>"d41d8cd98f00b204e9800998ecf8427e"</ETag>
    <Size>0</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
  <Contents>
    <Key>images/cat.png</Key>
    <LastModified>2025-01-10T08:15:00.000Z</LastModified>
    <ETag>"abc123"</ETag>
    <Size>12345</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
</ListBucketResult>`)
	})

	page, err := s.ListObjects(context.Background(), "test-bucket", "images/")
	require.NoError(t, err)

	assert.Equal(t, "/test-bucket", path)
	assert.Equal(t, "2", listType)
	assert.Equal(t, "images/", prefix)

	require.Len(t, page.Objects, 2)
	assert.True(t, page.IsTruncated)
	assert.Equal(t, "next-page", page.NextToken)

	obj := page.Objects[1]
	assert.Equal(t, "images/cat.png", obj.Key)
	assert.Equal(t, int64(12345), obj.Size)
	assert.Equal(t, "abc123", obj.ETag)
	assert.Equal(t, "STANDARD", obj.StorageClass)
	assert.True(t, obj.LastModified.Equal(time.Date(2025, 1, 10, 8, 15, 0, 0, time.UTC)))
}

func TestListObjects_NoContents(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>test-bucket</Name><KeyCount>0</KeyCount><IsTruncated>false</IsTruncated></ListBucketResult>`)
	})

	page, err := s.ListObjects(context.Background(), "test-bucket", "")
	require.NoError(t, err)
	assert.Nil(t, page.Objects)
	assert.False(t, page.IsTruncated)
}

func TestHeadObject(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Length", "5")
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Last-Modified", "Fri, 10 Jan 2025 08:15:00 GMT")
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	})

	obj, err := s.HeadObject(context.Background(), "test-bucket", "notes/today.txt")
	require.NoError(t, err)
	assert.Equal(t, "notes/today.txt", obj.Key)
	assert.Equal(t, int64(5), obj.Size)
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.Equal(t, "abc123", obj.ETag)
	assert.True(t, obj.LastModified.Equal(time.Date(2025, 1, 10, 8, 15, 0, 0, time.UTC)))
}

func TestHeadObject_NotFound(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := s.HeadObject(context.Background(), "test-bucket", "missing.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrObjectNotFound))
}

func TestGetObject(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/test-bucket/notes/today.txt", r.URL.Path)
		io.WriteString(w, "hello")
	})

	body, err := s.GetObject(context.Background(), "test-bucket", "notes/today.txt")
	require.NoError(t, err)
	require.NotNil(t, body)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestGetObject_NoSuchKey(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
	})

	_, err := s.GetObject(context.Background(), "test-bucket", "missing.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrObjectNotFound))
}

func TestPutObject(t *testing.T) {
	var method, path, contentType string
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	})

	err := s.PutObject(context.Background(), "test-bucket", "images/cat.png", strings.NewReader("png data"), 8, "image/png")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/test-bucket/images/cat.png", path)
	assert.Equal(t, "image/png", contentType)
}

func TestPutObject_Error(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `<?xml version="1.0"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
	})

	err := s.PutObject(context.Background(), "test-bucket", "x.jpg", strings.NewReader("data"), 4, "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error uploading object")
	assert.False(t, errors.Is(err, storage.ErrObjectNotFound))
}

func TestDeleteObject(t *testing.T) {
	var method, path string
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, s.DeleteObject(context.Background(), "test-bucket", "images/old.jpg"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/test-bucket/images/old.jpg", path)
}
