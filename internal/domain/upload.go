package domain

import "time"

// Upload is one committed media asset belonging to an Event. A row exists
// only when the original file was fully written to disk; the thumbnail and
// the metadata sidecar are best-effort companions.
type Upload struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	EventID      string    `gorm:"column:event_id;index" json:"event_id"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	StoredName   string    `gorm:"column:stored_name" json:"stored_name"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	Size         int64     `gorm:"column:size" json:"size"`
	RelativePath string    `gorm:"column:relative_path" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Upload) TableName() string { return "uploads" }
