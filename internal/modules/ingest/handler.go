package ingest

import (
	"context"
	"errors"
	"net/http"

	"photodrop/internal/domain"
	"photodrop/internal/pkg/response"
	"photodrop/internal/repository"

	"github.com/gin-gonic/gin"
)

type EventLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Event, error)
}

type Handler struct {
	events  EventLookup
	service *Service
}

func NewHandler(events EventLookup, service *Service) *Handler {
	return &Handler{events: events, service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/upload/:eventId", h.Upload)
}

// Upload accepts one multipart request with one or more "file" parts for the
// event in the path. Admission checks run in order and short-circuit: event
// exists (404), event active (403), part type allowed (400), streamed size
// within the event ceiling (413). The response carries the count of parts
// that committed; a part failure answers with its error status while parts
// accepted before it still commit.
func (h *Handler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	event, err := h.events.GetByID(ctx, c.Param("eventId"))
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, "Event not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to finalize upload")
		return
	}

	if !event.IsActive {
		response.Error(c, http.StatusForbidden, "Event is not active")
		return
	}

	mr, err := c.Request.MultipartReader()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	uploaded, err := h.service.Ingest(ctx, event, mr)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidType):
			response.Error(c, http.StatusBadRequest, "Invalid file type")
		case errors.Is(err, ErrFileTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, "File size limit exceeded")
		case errors.Is(err, ErrStream):
			response.Error(c, http.StatusInternalServerError, "Upload streaming failed")
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to finalize upload")
		}
		return
	}

	response.OK(c, gin.H{"uploaded": uploaded})
}
