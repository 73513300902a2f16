package domain

import "time"

// Event is a guest-upload session. Guests reach it through a shared link and
// upload media against its size cap while it is active.
type Event struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	Name          string    `gorm:"column:name" json:"name"`
	Description   string    `gorm:"column:description" json:"description"`
	Language      string    `gorm:"column:language" json:"language"`
	IsActive      bool      `gorm:"column:is_active" json:"is_active"`
	MaxFileSizeMB int       `gorm:"column:max_file_size_mb" json:"max_file_size_mb"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`

	Uploads []Upload `gorm:"foreignKey:EventID" json:"-"`
}

func (Event) TableName() string { return "events" }

// MaxFileSizeBytes is the streaming size ceiling enforced by ingest.
func (e *Event) MaxFileSizeBytes() int64 {
	return int64(e.MaxFileSizeMB) * 1024 * 1024
}
