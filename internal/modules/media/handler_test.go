package media

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"photodrop/internal/database"
	"photodrop/internal/domain"
	"photodrop/internal/repository"
	"photodrop/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mediaEnv struct {
	router *gin.Engine
	db     *gorm.DB
	store  *storage.Store
}

func setupMedia(t *testing.T) *mediaEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Event{}, &domain.Upload{}))

	store := storage.New(t.TempDir())
	require.NoError(t, store.Init())

	service := NewService(
		repository.NewUploadRepository(db),
		repository.NewEventRepository(db),
		store,
	)
	handler := NewHandler(service)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1/admin"))

	return &mediaEnv{router: router, db: db, store: store}
}

func seedEvent(t *testing.T, db *gorm.DB) *domain.Event {
	t.Helper()
	e := &domain.Event{
		ID:            uuid.New().String(),
		Name:          "Gallery",
		IsActive:      true,
		MaxFileSizeMB: 10,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(e).Error)
	return e
}

// seedUpload writes a committed upload: row, original, thumb and sidecar.
func seedUpload(t *testing.T, env *mediaEnv, eventID, originalName string, content []byte) *domain.Upload {
	t.Helper()
	require.NoError(t, env.store.InitEventDirs(eventID))

	id := uuid.New().String()
	storedName := id + ".jpg"
	u := &domain.Upload{
		ID:           id,
		EventID:      eventID,
		OriginalName: originalName,
		StoredName:   storedName,
		MimeType:     "image/jpeg",
		Size:         int64(len(content)),
		RelativePath: storage.RelativePath(eventID, storage.KindOriginals, storedName),
		CreatedAt:    time.Now(),
	}
	require.NoError(t, env.db.Create(u).Error)
	require.NoError(t, os.WriteFile(env.store.Resolve(u.RelativePath), content, 0o644))
	require.NoError(t, os.WriteFile(env.store.FilePath(eventID, storage.KindThumbs, id+".jpg"), []byte("thumb"), 0o644))
	require.NoError(t, os.WriteFile(env.store.FilePath(eventID, storage.KindMetadata, id+".json"), []byte("{}"), 0o644))
	return u
}

func do(env *mediaEnv, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	return resp
}

func TestServeOriginal(t *testing.T) {
	env := setupMedia(t)
	event := seedEvent(t, env.db)
	u := seedUpload(t, env, event.ID, "photo.jpg", []byte("jpeg-bytes"))

	resp := do(env, http.MethodGet, "/api/v1/admin/uploads/"+u.ID)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/jpeg", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Cache-Control"), "immutable")
	assert.Equal(t, "jpeg-bytes", resp.Body.String())
}

func TestServeThumbFallsBackTo404(t *testing.T) {
	env := setupMedia(t)
	event := seedEvent(t, env.db)
	u := seedUpload(t, env, event.ID, "photo.jpg", []byte("x"))

	// wipe the thumb: its absence is a valid steady state
	require.NoError(t, os.Remove(env.store.FilePath(event.ID, storage.KindThumbs, u.ID+".jpg")))

	resp := do(env, http.MethodGet, "/api/v1/admin/uploads/"+u.ID+"/thumb")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteRemovesRowAndAllArtifacts(t *testing.T) {
	env := setupMedia(t)
	event := seedEvent(t, env.db)
	u := seedUpload(t, env, event.ID, "photo.jpg", []byte("x"))

	resp := do(env, http.MethodDelete, "/api/v1/admin/uploads/"+u.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	var count int64
	require.NoError(t, env.db.Model(&domain.Upload{}).Count(&count).Error)
	assert.Zero(t, count)

	for _, p := range []string{
		env.store.Resolve(u.RelativePath),
		env.store.FilePath(event.ID, storage.KindThumbs, u.ID+".jpg"),
		env.store.FilePath(event.ID, storage.KindMetadata, u.ID+".json"),
	} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "expected %s to be gone", p)
	}

	// listings no longer include it
	list := do(env, http.MethodGet, "/api/v1/admin/events/"+event.ID+"/uploads")
	require.Equal(t, http.StatusOK, list.Code)
	assert.NotContains(t, list.Body.String(), u.ID)
}

func TestDeleteAllForEvent(t *testing.T) {
	env := setupMedia(t)
	event := seedEvent(t, env.db)
	seedUpload(t, env, event.ID, "a.jpg", []byte("a"))
	seedUpload(t, env, event.ID, "b.jpg", []byte("b"))

	resp := do(env, http.MethodDelete, "/api/v1/admin/events/"+event.ID+"/uploads")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"count":2`)

	var count int64
	require.NoError(t, env.db.Model(&domain.Upload{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestExportZipStoresOriginalsUnderOriginalNames(t *testing.T) {
	env := setupMedia(t)
	event := seedEvent(t, env.db)
	seedUpload(t, env, event.ID, "first.jpg", []byte("content-one"))
	seedUpload(t, env, event.ID, "second.jpg", []byte("content-two"))

	resp := do(env, http.MethodGet, "/api/v1/admin/events/"+event.ID+"/export")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/zip", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), fmt.Sprintf("event-%s-export.zip", event.ID))

	zr, err := zip.NewReader(bytes.NewReader(resp.Body.Bytes()), int64(resp.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	names := map[string][]byte{}
	for _, f := range zr.File {
		assert.Equal(t, zip.Store, f.Method)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		names[f.Name] = data
	}
	assert.Equal(t, []byte("content-one"), names["first.jpg"])
	assert.Equal(t, []byte("content-two"), names["second.jpg"])
}

func TestExportDeduplicatesEntryNames(t *testing.T) {
	env := setupMedia(t)
	event := seedEvent(t, env.db)
	seedUpload(t, env, event.ID, "same.jpg", []byte("one"))
	seedUpload(t, env, event.ID, "same.jpg", []byte("two"))

	resp := do(env, http.MethodGet, "/api/v1/admin/events/"+event.ID+"/export")
	require.Equal(t, http.StatusOK, resp.Code)

	zr, err := zip.NewReader(bytes.NewReader(resp.Body.Bytes()), int64(resp.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	seen := map[string]bool{}
	for _, f := range zr.File {
		assert.False(t, seen[f.Name], "duplicate entry name %s", f.Name)
		seen[f.Name] = true
	}
}

func TestListUnknownEvent(t *testing.T) {
	env := setupMedia(t)

	resp := do(env, http.MethodGet, "/api/v1/admin/events/"+uuid.New().String()+"/uploads")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
