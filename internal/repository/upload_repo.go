package repository

import (
	"context"
	"errors"

	"photodrop/internal/domain"

	"gorm.io/gorm"
)

var ErrUploadNotFound = errors.New("upload not found")

type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, u *domain.Upload) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UploadRepository) GetByID(ctx context.Context, id string) (*domain.Upload, error) {
	var u domain.Upload
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UploadRepository) ListByEventID(ctx context.Context, eventID string) ([]domain.Upload, error) {
	var uploads []domain.Upload
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&uploads).Error
	return uploads, err
}

func (r *UploadRepository) CountByEventID(ctx context.Context, eventID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Upload{}).Where("event_id = ?", eventID).Count(&n).Error
	return n, err
}

func (r *UploadRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Upload{}).Error
}

// DeleteByEventID removes all rows of an event and reports how many went away.
func (r *UploadRepository) DeleteByEventID(ctx context.Context, eventID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&domain.Upload{})
	return res.RowsAffected, res.Error
}
