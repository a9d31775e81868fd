package storage

import (
	"fmt"
	"time"
)

// Object is a provider's raw descriptor for a stored object
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	StorageClass string
	// Only populated by head calls on providers that report it
	ContentType string
	ETag        string
}

// ObjectPage holds a single page of a listing. Objects is nil when the provider response carried no entry collection.
type ObjectPage struct {
	Objects     []Object
	IsTruncated bool
	NextToken   string
}

// File is the client's normalized view of a stored object
type File struct {
	Name         string    `json:"name" yaml:"name"`
	Key          string    `json:"key" yaml:"key"`
	Byte         int64     `json:"byte" yaml:"byte"`
	Type         string    `json:"type" yaml:"type"`
	URL          string    `json:"url" yaml:"url"`
	LastModified time.Time `json:"lastModified" yaml:"lastModified"`
}

// FileInfo is a File plus the provider metadata returned by a head call
type FileInfo struct {
	File         `yaml:",inline"`
	Bucket       string `json:"bucket" yaml:"bucket"`
	StorageClass string `json:"storageClass,omitempty" yaml:"storageClass,omitempty"`
	ETag         string `json:"etag,omitempty" yaml:"etag,omitempty"`
}

type ListOptions struct {
	// Key prefix, empty lists the whole bucket
	Path string
}

// UploadOptions describes an upload. Exactly one of Path and Buffer must be set.
type UploadOptions struct {
	Path        string `validate:"required_without=Buffer,excluded_with=Buffer"`
	Buffer      []byte `validate:"required_without=Path"`
	Destination string `validate:"required"`
}

type DeleteOptions struct {
	File string `validate:"required"`
}

type InfoOptions struct {
	File string `validate:"required"`
}

type DownloadOptions struct {
	File    string `validate:"required"`
	OutFile string `validate:"required"`
}

func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "N/A"
	}
	if bytes == 0 {
		return "0 B"
	}

	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	sizes := []string{"KB", "MB", "GB", "TB", "PB", "EB"}
	if exp >= len(sizes) {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), sizes[exp])
}
