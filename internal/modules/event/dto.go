package event

type CreateEventRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	Language      string `json:"language"`
	MaxFileSizeMB int    `json:"max_file_size_mb"`
}

// UpdateEventRequest patches an event; nil fields stay untouched.
type UpdateEventRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Language      *string `json:"language"`
	IsActive      *bool   `json:"is_active"`
	MaxFileSizeMB *int    `json:"max_file_size_mb"`
}

// PublicEventInfo is what the guest page may see. No size caps, no counters.
type PublicEventInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	IsActive    bool   `json:"is_active"`
}
