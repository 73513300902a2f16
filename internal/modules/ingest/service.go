package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"photodrop/internal/domain"
	"photodrop/internal/storage"

	mimelib "github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AllowedMimeTypes is the authoritative server-side allow-list. The client
// scheduler carries an advisory copy, but this one decides.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/heic":      true,
	"image/heif":      true,
	"image/gif":       true,
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
}

// Notifier is told about every committed upload. The live admin feed hangs
// off this; a nil Notifier is fine.
type Notifier interface {
	UploadCommitted(eventID string, u *domain.Upload)
}

type Repository interface {
	Create(ctx context.Context, u *domain.Upload) error
}

// Service is the ingest stream processor. It demultiplexes multipart file
// parts, streams each one to disk under a fresh identifier while counting
// bytes against the event's ceiling, and runs the commit pipeline
// (thumbnail, sidecar, row insert) of accepted parts concurrently.
type Service struct {
	repo     Repository
	store    *storage.Store
	notifier Notifier
}

func NewService(repo Repository, store *storage.Store, notifier Notifier) *Service {
	return &Service{repo: repo, store: store, notifier: notifier}
}

// Ingest consumes every file part of one multipart request against the given
// event. It returns how many parts were committed; a non-nil error reports
// the first fatal part failure (ErrInvalidType, ErrFileTooLarge, ErrStream).
// Parts accepted before the failure still commit — partial success is normal,
// the caller reports the error status while committed counts stand.
func (s *Service) Ingest(ctx context.Context, event *domain.Event, mr *multipart.Reader) (int, error) {
	if err := s.store.InitEventDirs(event.ID); err != nil {
		return 0, fmt.Errorf("init event storage: %w", err)
	}

	maxBytes := event.MaxFileSizeBytes()

	var committed atomic.Int64
	var g errgroup.Group
	var fatal error

	for fatal == nil {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			fatal = fmt.Errorf("%w: %v", ErrStream, err)
			break
		}

		if part.FormName() != "file" || part.FileName() == "" {
			// non-file fields carry nothing we need
			_, _ = io.Copy(io.Discard, part)
			_ = part.Close()
			continue
		}

		declared := declaredMimeType(part)
		if !AllowedMimeTypes[declared] {
			_ = part.Close()
			fatal = ErrInvalidType
			break
		}

		accepted, err := s.receivePart(part, event, declared, maxBytes)
		_ = part.Close()
		if err != nil {
			fatal = err
			break
		}

		g.Go(func() error {
			if s.commit(ctx, event, accepted) {
				committed.Add(1)
			}
			return nil
		})
	}

	// already-accepted parts finish independently of any later failure
	_ = g.Wait()

	return int(committed.Load()), fatal
}

// acceptedPart is a fully written original awaiting its commit pipeline.
type acceptedPart struct {
	upload  *domain.Upload
	absPath string
}

// receivePart streams one part to its destination file, counting bytes as
// they pass. The destination is opened before the first byte and deleted
// again on any failure, so no orphan partial file remains.
func (s *Service) receivePart(part *multipart.Part, event *domain.Event, declared string, maxBytes int64) (*acceptedPart, error) {
	id := uuid.New().String()
	storedName := id + extensionFor(part.FileName(), declared)
	absPath := s.store.FilePath(event.ID, storage.KindOriginals, storedName)

	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStream, err)
	}

	// LimitReader with one spare byte makes an overrun observable without
	// reading the whole oversized stream.
	written, copyErr := io.Copy(dst, io.LimitReader(part, maxBytes+1))
	closeErr := dst.Close()

	if copyErr != nil || closeErr != nil {
		_ = os.Remove(absPath)
		if copyErr == nil {
			copyErr = closeErr
		}
		return nil, fmt.Errorf("%w: %v", ErrStream, copyErr)
	}
	if written > maxBytes {
		_ = os.Remove(absPath)
		return nil, ErrFileTooLarge
	}

	return &acceptedPart{
		upload: &domain.Upload{
			ID:           id,
			EventID:      event.ID,
			OriginalName: part.FileName(),
			StoredName:   storedName,
			MimeType:     declared,
			Size:         written,
			RelativePath: storage.RelativePath(event.ID, storage.KindOriginals, storedName),
			CreatedAt:    time.Now(),
		},
		absPath: absPath,
	}, nil
}

// commit runs the post-write pipeline of an accepted part: best-effort
// thumbnail, metadata sidecar, then the authoritative row insert. Only the
// insert decides success; its failure leaves the file on disk for the
// reconciliation sweep.
func (s *Service) commit(ctx context.Context, event *domain.Event, p *acceptedPart) bool {
	u := p.upload

	if strings.HasPrefix(u.MimeType, "image/") {
		thumbPath := s.store.FilePath(event.ID, storage.KindThumbs, u.ID+".jpg")
		if err := GenerateThumbnail(p.absPath, thumbPath); err != nil {
			log.Printf("ingest_thumbnail_failed event_id=%s upload_id=%s name=%q error=%q",
				event.ID, u.ID, u.OriginalName, err)
		}
	}

	if err := s.writeSidecar(event.ID, u); err != nil {
		log.Printf("ingest_sidecar_failed event_id=%s upload_id=%s error=%q", event.ID, u.ID, err)
	}

	if err := s.repo.Create(ctx, u); err != nil {
		// orphaned original stays on disk, cmd/reconcile picks it up
		log.Printf("ingest_record_failed event_id=%s upload_id=%s error=%q", event.ID, u.ID, err)
		return false
	}

	if s.notifier != nil {
		s.notifier.UploadCommitted(event.ID, u)
	}
	return true
}

type sidecar struct {
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
}

func (s *Service) writeSidecar(eventID string, u *domain.Upload) error {
	data, err := json.Marshal(sidecar{
		OriginalName: u.OriginalName,
		Size:         u.Size,
		MimeType:     u.MimeType,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(s.store.FilePath(eventID, storage.KindMetadata, u.ID+".json"), data, 0o644)
}

func declaredMimeType(part *multipart.Part) string {
	ct := part.Header.Get("Content-Type")
	parsed, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return parsed
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]+$`)

// extensionFor derives the stored-name extension from the client filename,
// falling back to the declared MIME type and finally to ".bin". The original
// name itself never reaches a path.
func extensionFor(filename, declared string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if extPattern.MatchString(ext) {
		return ext
	}
	if m := mimelib.Lookup(declared); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}
