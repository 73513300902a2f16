package media

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"photodrop/internal/domain"
	"photodrop/internal/repository"
	"photodrop/internal/storage"
)

// Service exposes committed uploads to the admin surface: listing, serving,
// deletion (single and per-event) and the zip export. Deleting an upload
// removes the row together with all its on-disk artifacts so the caller sees
// it as one operation.
type Service struct {
	uploads *repository.UploadRepository
	events  *repository.EventRepository
	store   *storage.Store
}

func NewService(uploads *repository.UploadRepository, events *repository.EventRepository, store *storage.Store) *Service {
	return &Service{uploads: uploads, events: events, store: store}
}

// EnsureEvent reports whether the event exists, so handlers can 404 before
// committing response headers.
func (s *Service) EnsureEvent(ctx context.Context, eventID string) error {
	_, err := s.events.GetByID(ctx, eventID)
	return err
}

func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]domain.Upload, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.uploads.ListByEventID(ctx, eventID)
}

// Get returns the upload row and the absolute path of its original.
func (s *Service) Get(ctx context.Context, id string) (*domain.Upload, string, error) {
	u, err := s.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return u, s.store.Resolve(u.RelativePath), nil
}

// ThumbPath returns the absolute thumbnail path of an upload, or ok=false
// when no thumbnail was ever produced for it.
func (s *Service) ThumbPath(ctx context.Context, id string) (*domain.Upload, string, bool, error) {
	u, err := s.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, "", false, err
	}
	p := s.store.FilePath(u.EventID, storage.KindThumbs, u.ID+".jpg")
	if _, err := os.Stat(p); err != nil {
		return u, "", false, nil
	}
	return u, p, true, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	u, err := s.uploads.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.RemoveUploadArtifacts(u); err != nil {
		// keep going, the row is authoritative; leftovers go to reconcile
		log.Printf("media_delete_artifacts_failed upload_id=%s error=%q", id, err)
	}

	return s.uploads.Delete(ctx, id)
}

// DeleteAllForEvent wipes every upload of an event, files first, then rows.
func (s *Service) DeleteAllForEvent(ctx context.Context, eventID string) (int64, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return 0, err
	}

	uploads, err := s.uploads.ListByEventID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	for i := range uploads {
		if err := s.store.RemoveUploadArtifacts(&uploads[i]); err != nil {
			log.Printf("media_delete_artifacts_failed upload_id=%s error=%q", uploads[i].ID, err)
		}
	}

	return s.uploads.DeleteByEventID(ctx, eventID)
}

// WriteArchive streams a zip of every original of an event. Entries are
// stored uncompressed — media is already compressed and the export should
// not burn CPU. Entry names come from the untrusted original name, flattened
// to a base name and de-duplicated.
func (s *Service) WriteArchive(ctx context.Context, eventID string, w io.Writer) error {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return err
	}
	uploads, err := s.uploads.ListByEventID(ctx, eventID)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	seen := map[string]int{}

	for i := range uploads {
		u := &uploads[i]
		src := s.store.Resolve(u.RelativePath)
		f, err := os.Open(src)
		if err != nil {
			// row without a file: skip, reconcile territory
			log.Printf("media_export_missing_file upload_id=%s path=%s", u.ID, u.RelativePath)
			continue
		}

		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:   archiveName(seen, u),
			Method: zip.Store,
		})
		if err == nil {
			_, err = io.Copy(entry, f)
		}
		_ = f.Close()
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("archive %s: %w", u.ID, err)
		}
	}

	return zw.Close()
}

func archiveName(seen map[string]int, u *domain.Upload) string {
	name := filepath.Base(u.OriginalName)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = u.StoredName
	}
	seen[name]++
	if n := seen[name]; n > 1 {
		ext := filepath.Ext(name)
		name = fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
	}
	return name
}
