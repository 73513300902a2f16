package ingest

import (
	"context"
	"os"
	"testing"
	"time"

	"photodrop/internal/database"
	"photodrop/internal/domain"
	"photodrop/internal/repository"
	"photodrop/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReconcile(t *testing.T) (*gorm.DB, *storage.Store, *Reconciler) {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Event{}, &domain.Upload{}))

	store := storage.New(t.TempDir())
	require.NoError(t, store.Init())

	r := NewReconciler(repository.NewUploadRepository(db), store, 30*time.Minute)
	return db, store, r
}

func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
}

func TestReconcileRemovesOrphansKeepsCommitted(t *testing.T) {
	db, store, r := setupReconcile(t)

	eventID := uuid.New().String()
	require.NoError(t, store.InitEventDirs(eventID))

	// committed upload: row plus all three artifacts
	committedID := uuid.New().String()
	up := &domain.Upload{
		ID:           committedID,
		EventID:      eventID,
		OriginalName: "keep.jpg",
		StoredName:   committedID + ".jpg",
		MimeType:     "image/jpeg",
		Size:         4,
		RelativePath: storage.RelativePath(eventID, storage.KindOriginals, committedID+".jpg"),
		CreatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(up).Error)
	writeAged(t, store.FilePath(eventID, storage.KindOriginals, committedID+".jpg"), 2*time.Hour)
	writeAged(t, store.FilePath(eventID, storage.KindThumbs, committedID+".jpg"), 2*time.Hour)
	writeAged(t, store.FilePath(eventID, storage.KindMetadata, committedID+".json"), 2*time.Hour)

	// orphan whose row insert failed, old enough to sweep
	orphanID := uuid.New().String()
	writeAged(t, store.FilePath(eventID, storage.KindOriginals, orphanID+".jpg"), 2*time.Hour)
	writeAged(t, store.FilePath(eventID, storage.KindMetadata, orphanID+".json"), 2*time.Hour)

	// fresh orphan inside the grace window, possibly still committing
	freshID := uuid.New().String()
	require.NoError(t, os.WriteFile(store.FilePath(eventID, storage.KindOriginals, freshID+".jpg"), []byte("x"), 0o644))

	// cover artifacts are event-level, never swept
	writeAged(t, store.FilePath(eventID, storage.KindMetadata, "cover.bin"), 2*time.Hour)
	writeAged(t, store.FilePath(eventID, storage.KindMetadata, "cover_meta.json"), 2*time.Hour)

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Removed)
	assert.Equal(t, 1, report.Skipped)

	_, err = os.Stat(store.FilePath(eventID, storage.KindOriginals, committedID+".jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(store.FilePath(eventID, storage.KindOriginals, orphanID+".jpg"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(store.FilePath(eventID, storage.KindMetadata, orphanID+".json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(store.FilePath(eventID, storage.KindOriginals, freshID+".jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(store.FilePath(eventID, storage.KindMetadata, "cover.bin"))
	assert.NoError(t, err)
}

func TestReconcileIsIdempotent(t *testing.T) {
	_, store, r := setupReconcile(t)

	eventID := uuid.New().String()
	require.NoError(t, store.InitEventDirs(eventID))
	writeAged(t, store.FilePath(eventID, storage.KindOriginals, uuid.New().String()+".jpg"), 2*time.Hour)

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Removed)

	second, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Removed)
	assert.Zero(t, second.Scanned)
}

func TestReconcileEmptyTree(t *testing.T) {
	_, _, r := setupReconcile(t)

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Scanned)
}
