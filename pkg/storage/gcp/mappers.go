package gcp

import (
	"encoding/base64"

	"filedock/pkg/storage"

	gcpstorage "cloud.google.com/go/storage"
)

// Maps GCP SDK object attributes to the domain model
func mapObjectAttributes(attrs *gcpstorage.ObjectAttrs) storage.Object {
	if attrs == nil {
		return storage.Object{}
	}

	etag := attrs.Etag
	if etag == "" {
		etag = formatMD5(attrs.MD5)
	}

	return storage.Object{
		Key:          attrs.Name,
		Size:         attrs.Size,
		LastModified: attrs.Updated,
		StorageClass: attrs.StorageClass,
		ContentType:  attrs.ContentType,
		ETag:         etag,
	}
}

// Converts the binary MD5 hash provided by GCP SDK into a standard Base64 encoded string
func formatMD5(hash []byte) string {
	if len(hash) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(hash)
}
