package sav

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorageLocalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sav")

	w, err := OpenStorage(context.Background(), path, OpenWrite)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenStorage(context.Background(), path, OpenRead)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestSplitBucketKey(t *testing.T) {
	bucket, key, err := splitBucketKey("gs://my-bucket/path/to/file.sav", "gs://")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "path/to/file.sav", key)

	_, _, err = splitBucketKey("gs://bucket-only", "gs://")
	assert.Error(t, err)
}

func TestEnvOrDefault(t *testing.T) {
	os.Unsetenv("SAV_TEST_ENV_VAR")
	assert.Equal(t, "fallback", envOrDefault("SAV_TEST_ENV_VAR", "fallback"))

	os.Setenv("SAV_TEST_ENV_VAR", "set")
	defer os.Unsetenv("SAV_TEST_ENV_VAR")
	assert.Equal(t, "set", envOrDefault("SAV_TEST_ENV_VAR", "fallback"))
}
