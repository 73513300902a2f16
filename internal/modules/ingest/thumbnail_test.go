package ingest

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempPNG(t *testing.T, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.png")
	require.NoError(t, os.WriteFile(path, makePNG(t, width, height), 0o644))
	return path
}

func decodeBounds(t *testing.T, path string) image.Rectangle {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, _, err := image.Decode(f)
	require.NoError(t, err)
	return img.Bounds()
}

func TestGenerateThumbnailDownscalesWideImages(t *testing.T) {
	src := writeTempPNG(t, 800, 600)
	dst := filepath.Join(t.TempDir(), "thumb.jpg")

	require.NoError(t, GenerateThumbnail(src, dst))

	b := decodeBounds(t, dst)
	assert.Equal(t, 400, b.Dx())
	assert.Equal(t, 300, b.Dy())
}

func TestGenerateThumbnailNeverUpscales(t *testing.T) {
	src := writeTempPNG(t, 200, 150)
	dst := filepath.Join(t.TempDir(), "thumb.jpg")

	require.NoError(t, GenerateThumbnail(src, dst))

	b := decodeBounds(t, dst)
	assert.Equal(t, 200, b.Dx())
	assert.Equal(t, 150, b.Dy())
}

func TestGenerateThumbnailRejectsGarbage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "garbage.jpg")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o644))
	dst := filepath.Join(t.TempDir(), "thumb.jpg")

	err := GenerateThumbnail(src, dst)
	require.Error(t, err)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}
