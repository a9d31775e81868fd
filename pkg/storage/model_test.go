package storage_test

import (
	"testing"

	"filedock/pkg/storage"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{-1, "N/A"},
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{12345, "12.1 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, storage.FormatBytes(tt.bytes))
		})
	}
}
