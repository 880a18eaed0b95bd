package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	path, err := s.Put(ctx, "abc123", "policy.pdf", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Contains(t, path, "abc123")

	rc, err := s.Get(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, s.Delete(ctx, path))
	_, err = s.Get(ctx, path)
	assert.Error(t, err)

	// Deleting a missing payload is not an error.
	assert.NoError(t, s.Delete(ctx, path))
}

func TestStoragePathSanitizesFilename(t *testing.T) {
	path := storagePathFor("deadbeef", "my file/with\\slashes.txt")

	assert.Equal(t, "de/deadbeef_my_file_with_slashes.txt", path)
}

func TestStoragePathShortDocID(t *testing.T) {
	path := storagePathFor("a", "doc.txt")

	assert.Equal(t, "a/a_doc.txt", path)
}
