package storage

import (
	"os"
	"path/filepath"
	"testing"

	"photodrop/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativePathIsSlashForm(t *testing.T) {
	got := RelativePath("evt-1", KindOriginals, "abc.jpg")
	assert.Equal(t, "events/evt-1/originals/abc.jpg", got)
}

func TestResolveRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	rel := RelativePath("evt-1", KindThumbs, "abc.jpg")
	assert.Equal(t,
		filepath.Join(store.Base(), "events", "evt-1", "thumbs", "abc.jpg"),
		store.Resolve(rel))
}

func TestInitEventDirs(t *testing.T) {
	store := New(t.TempDir())
	require.NoError(t, store.Init())
	require.NoError(t, store.InitEventDirs("evt-1"))

	for _, kind := range []Kind{KindOriginals, KindThumbs, KindMetadata} {
		info, err := os.Stat(store.FilePath("evt-1", kind, ""))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestRemoveUploadArtifacts(t *testing.T) {
	store := New(t.TempDir())
	require.NoError(t, store.InitEventDirs("evt-1"))

	u := &domain.Upload{
		ID:           "up-1",
		EventID:      "evt-1",
		RelativePath: RelativePath("evt-1", KindOriginals, "up-1.jpg"),
	}
	for _, p := range []string{
		store.Resolve(u.RelativePath),
		store.FilePath("evt-1", KindThumbs, "up-1.jpg"),
		store.FilePath("evt-1", KindMetadata, "up-1.json"),
	} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	require.NoError(t, store.RemoveUploadArtifacts(u))

	entries := 0
	require.NoError(t, filepath.Walk(store.EventDir("evt-1"), func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			entries++
		}
		return err
	}))
	assert.Zero(t, entries)

	// a second pass must not error on the already-missing files
	assert.NoError(t, store.RemoveUploadArtifacts(u))
}

func TestRemoveEvent(t *testing.T) {
	store := New(t.TempDir())
	require.NoError(t, store.InitEventDirs("evt-1"))
	require.NoError(t, store.RemoveEvent("evt-1"))

	_, err := os.Stat(store.EventDir("evt-1"))
	assert.True(t, os.IsNotExist(err))
}
