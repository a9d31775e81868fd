package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"filedock/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var testFiles = []storage.File{
	{
		Name:         "cat.png",
		Key:          "images/cat.png",
		Byte:         12345,
		Type:         "image/png",
		URL:          "https://cdn.example.com/images/cat.png",
		LastModified: time.Date(2025, 1, 10, 8, 15, 0, 0, time.UTC),
	},
}

func TestFormat_Table(t *testing.T) {
	f := NewFileFormatter()

	out, err := f.Format(testFiles, "table")
	require.NoError(t, err)
	assert.Contains(t, out, "images/cat.png")
	assert.Contains(t, out, "12.1 KB")
	assert.Contains(t, out, "2025-01-10T08:15:00Z")
	assert.Contains(t, out, "https://cdn.example.com/images/cat.png")

	def, err := f.Format(testFiles, "")
	require.NoError(t, err)
	assert.Equal(t, out, def)
}

func TestFormat_JSON(t *testing.T) {
	out, err := NewFileFormatter().Format(testFiles, "JSON")
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "cat.png", decoded[0]["name"])
	assert.Equal(t, float64(12345), decoded[0]["byte"])
	assert.Equal(t, "2025-01-10T08:15:00Z", decoded[0]["lastModified"])

	empty, err := NewFileFormatter().Format(nil, "json")
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestFormat_YAML(t *testing.T) {
	out, err := NewFileFormatter().Format(testFiles, "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "key: images/cat.png")

	var decoded []storage.File
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, testFiles[0].Key, decoded[0].Key)
	assert.Equal(t, testFiles[0].Byte, decoded[0].Byte)
	assert.True(t, testFiles[0].LastModified.Equal(decoded[0].LastModified))
}

func TestFormat_Unsupported(t *testing.T) {
	_, err := NewFileFormatter().Format(testFiles, "xml")
	assert.ErrorContains(t, err, "unsupported output format: xml")
}

func TestFormatFileDetails(t *testing.T) {
	out := NewFileFormatter().FormatFileDetails(storage.FileInfo{File: testFiles[0], Bucket: "media"})
	assert.Contains(t, out, "File: cat.png")
	assert.Contains(t, out, "12.1 KB (12345 bytes)")
	assert.Contains(t, out, "image/png")

	assert.Contains(t, out, "media")
	assert.NotContains(t, out, "Storage Class")

	missing := NewFileFormatter().FormatFileDetails(storage.FileInfo{File: storage.File{Name: "x"}})
	assert.Contains(t, missing, "N/A")
}

func TestFormatInfo(t *testing.T) {
	info := storage.FileInfo{File: testFiles[0], Bucket: "media", StorageClass: "STANDARD", ETag: "abc123"}
	f := NewFileFormatter()

	out, err := f.FormatInfo(info, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Storage Class")
	assert.Contains(t, out, "STANDARD")
	assert.Contains(t, out, "abc123")

	out, err = f.FormatInfo(info, "json")
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	// File fields are flattened next to the metadata
	assert.Equal(t, "images/cat.png", decoded["key"])
	assert.Equal(t, "media", decoded["bucket"])
	assert.Equal(t, "abc123", decoded["etag"])

	out, err = f.FormatInfo(info, "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "key: images/cat.png")
	assert.Contains(t, out, "storageClass: STANDARD")

	_, err = f.FormatInfo(info, "xml")
	assert.ErrorContains(t, err, "unsupported output format: xml")
}

func TestFormatSettings(t *testing.T) {
	out := NewFileFormatter().FormatSettings(map[string]string{
		"provider":   "aws",
		"aws.region": "eu-west-1",
	})
	assert.Less(t, strings.Index(out, "aws.region"), strings.Index(out, "provider"))
}
