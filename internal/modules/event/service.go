package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"photodrop/internal/domain"
	"photodrop/internal/repository"
	"photodrop/internal/storage"

	"github.com/google/uuid"
)

const (
	defaultLanguage      = "en"
	defaultMaxFileSizeMB = 100
)

var ErrCoverNotFound = errors.New("cover not found")

type Service struct {
	events  *repository.EventRepository
	uploads *repository.UploadRepository
	store   *storage.Store
}

func NewService(events *repository.EventRepository, uploads *repository.UploadRepository, store *storage.Store) *Service {
	return &Service{events: events, uploads: uploads, store: store}
}

// Create builds a new active event with a fresh identifier and prepares its
// storage subtree.
func (s *Service) Create(ctx context.Context, req CreateEventRequest) (*domain.Event, error) {
	e := &domain.Event{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Description:   req.Description,
		Language:      req.Language,
		IsActive:      true,
		MaxFileSizeMB: req.MaxFileSizeMB,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if e.Language == "" {
		e.Language = defaultLanguage
	}
	if e.MaxFileSizeMB <= 0 {
		e.MaxFileSizeMB = defaultMaxFileSizeMB
	}

	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	if err := s.store.InitEventDirs(e.ID); err != nil {
		log.Printf("event_storage_init_failed event_id=%s error=%q", e.ID, err)
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.events.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]repository.EventStats, error) {
	return s.events.List(ctx)
}

func (s *Service) Update(ctx context.Context, id string, req UpdateEventRequest) (*domain.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Language != nil {
		e.Language = *req.Language
	}
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	}
	if req.MaxFileSizeMB != nil && *req.MaxFileSizeMB > 0 {
		e.MaxFileSizeMB = *req.MaxFileSizeMB
	}
	e.UpdatedAt = time.Now()

	if err := s.events.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes the event row, all its upload rows and the whole storage
// subtree (originals, thumbs, sidecars, cover).
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.events.GetByID(ctx, id); err != nil {
		return err
	}
	if _, err := s.uploads.DeleteByEventID(ctx, id); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.RemoveEvent(id); err != nil {
		log.Printf("event_storage_remove_failed event_id=%s error=%q", id, err)
	}
	return nil
}

type coverMeta struct {
	MimeType string `json:"mimeType"`
}

// SetCover stores the event cover image as an opaque blob plus a tiny
// descriptor with its MIME type, so it can be served back verbatim.
func (s *Service) SetCover(ctx context.Context, id, mimeType string, data []byte) error {
	if _, err := s.events.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.InitEventDirs(id); err != nil {
		return err
	}

	coverPath := s.store.FilePath(id, storage.KindMetadata, "cover.bin")
	if err := os.WriteFile(coverPath, data, 0o644); err != nil {
		return fmt.Errorf("write cover: %w", err)
	}

	meta, err := json.Marshal(coverMeta{MimeType: mimeType})
	if err != nil {
		return err
	}
	metaPath := s.store.FilePath(id, storage.KindMetadata, "cover_meta.json")
	if err := os.WriteFile(metaPath, meta, 0o644); err != nil {
		return fmt.Errorf("write cover meta: %w", err)
	}
	return nil
}

// GetCover loads the cover blob and its MIME type. ErrCoverNotFound when the
// event has no cover (or no such event — guests cannot probe the difference).
func (s *Service) GetCover(id string) (string, []byte, error) {
	// the id comes straight from the public URL and is used to build a path;
	// only uuid-shaped values may touch the filesystem
	if _, err := uuid.Parse(id); err != nil {
		return "", nil, ErrCoverNotFound
	}

	meta, err := os.ReadFile(s.store.FilePath(id, storage.KindMetadata, "cover_meta.json"))
	if os.IsNotExist(err) {
		return "", nil, ErrCoverNotFound
	}
	if err != nil {
		return "", nil, err
	}

	var m coverMeta
	if err := json.Unmarshal(meta, &m); err != nil {
		return "", nil, err
	}

	data, err := os.ReadFile(s.store.FilePath(id, storage.KindMetadata, "cover.bin"))
	if os.IsNotExist(err) {
		return "", nil, ErrCoverNotFound
	}
	if err != nil {
		return "", nil, err
	}
	return m.MimeType, data, nil
}
