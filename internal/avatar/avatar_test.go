// SPDX-License-Identifier: MIT

package avatar

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Upload(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir, "http://127.0.0.1:8000")
	require.NoError(t, err)
	assert.Equal(t, dir, local.Dir())

	url, err := local.Upload(context.Background(), strings.NewReader("image-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://127.0.0.1:8000/avatars/"), "url: %s", url)

	name := strings.TrimPrefix(url, "http://127.0.0.1:8000/avatars/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestLocal_UploadLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir, "http://127.0.0.1:8000")
	require.NoError(t, err)

	_, err = local.Upload(context.Background(), strings.NewReader("a"))
	require.NoError(t, err)
	_, err = local.Upload(context.Background(), strings.NewReader("b"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".upload-"), "temp file left behind: %s", e.Name())
	}
}

func TestLocal_UploadHonorsContext(t *testing.T) {
	local, err := NewLocal(t.TempDir(), "http://127.0.0.1:8000")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = local.Upload(ctx, strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocal_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "avatars")
	_, err := NewLocal(dir, "http://127.0.0.1:8000")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
