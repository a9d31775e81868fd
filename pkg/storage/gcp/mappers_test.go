package gcp

import (
	"testing"
	"time"

	gcpstorage "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
)

func TestMapObjectAttributes(t *testing.T) {
	updated := time.Date(2025, 1, 10, 8, 15, 0, 0, time.UTC)

	obj := mapObjectAttributes(&gcpstorage.ObjectAttrs{
		Name:         "images/cat.png",
		Size:         12345,
		Updated:      updated,
		StorageClass: "STANDARD",
		ContentType:  "image/png",
		Etag:         "CKih16GjycICEAE=",
	})

	assert.Equal(t, "images/cat.png", obj.Key)
	assert.Equal(t, int64(12345), obj.Size)
	assert.Equal(t, updated, obj.LastModified)
	assert.Equal(t, "STANDARD", obj.StorageClass)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, "CKih16GjycICEAE=", obj.ETag)
}

func TestMapObjectAttributes_MD5Fallback(t *testing.T) {
	obj := mapObjectAttributes(&gcpstorage.ObjectAttrs{
		Name: "a.txt",
		MD5:  []byte{0x01, 0x02, 0x03},
	})
	assert.Equal(t, "AQID", obj.ETag)

	assert.Equal(t, "", mapObjectAttributes(nil).Key)
}

func TestFormatMD5(t *testing.T) {
	assert.Equal(t, "", formatMD5(nil))
	assert.Equal(t, "AQID", formatMD5([]byte{0x01, 0x02, 0x03}))
}
