package repository

import (
	"context"
	"errors"

	"photodrop/internal/domain"

	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventStats is an event row joined with aggregate upload figures, used by
// the admin listing.
type EventStats struct {
	domain.Event
	UploadCount int64 `json:"upload_count"`
	TotalBytes  int64 `json:"total_bytes"`
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var e domain.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) List(ctx context.Context) ([]EventStats, error) {
	var out []EventStats
	err := r.db.WithContext(ctx).
		Model(&domain.Event{}).
		Select("events.*, COUNT(uploads.id) AS upload_count, COALESCE(SUM(uploads.size), 0) AS total_bytes").
		Joins("LEFT JOIN uploads ON uploads.event_id = events.id").
		Group("events.id").
		Order("events.created_at DESC").
		Scan(&out).Error
	return out, err
}

func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Event{}).Error
}
