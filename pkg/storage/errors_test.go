package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"WithMessage", newError("delete", ErrNotFound, "File does not exist!", nil), "delete: File does not exist!"},
		{"WithCause", newError("list", ErrOperation, "failed to list files", errors.New("boom")), "list: failed to list files: boom"},
		{"KindOnly", newError("download", ErrConflict, "", nil), "download: conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := fmt.Errorf("outer: %w", newError("upload", ErrOperation, "failed to upload file", cause))

	assert.ErrorIs(t, err, ErrOperation)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	var typed *Error
	assert.ErrorAs(t, err, &typed)
	assert.Equal(t, "upload", typed.Op)
}

func TestNormalize(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, normalize("list", "failed to list files", nil))
	})

	t.Run("TypedPassesThrough", func(t *testing.T) {
		typed := newError("delete", ErrNotFound, "File does not exist!", nil)
		got := normalize("delete", "failed to delete file", typed)
		assert.Same(t, typed, got)
	})

	t.Run("UntypedBecomesOperationError", func(t *testing.T) {
		cause := errors.New("EOF")
		got := normalize("download", "failed to download file", fmt.Errorf("error writing: %w", cause))

		assert.ErrorIs(t, got, ErrOperation)
		assert.ErrorIs(t, got, cause)
		assert.Equal(t, "download: failed to download file: error writing: EOF", got.Error())
	})
}
