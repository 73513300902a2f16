package media

import (
	"errors"
	"fmt"
	"net/http"

	"photodrop/internal/pkg/response"
	"photodrop/internal/repository"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the upload management routes on the admin group.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/events/:id/uploads", h.ListByEvent)
	admin.DELETE("/events/:id/uploads", h.DeleteAllForEvent)
	admin.GET("/events/:id/export", h.Export)

	uploads := admin.Group("/uploads")
	{
		uploads.GET("/:id", h.Serve)
		uploads.GET("/:id/thumb", h.ServeThumb)
		uploads.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) ListByEvent(c *gin.Context) {
	uploads, err := h.service.ListByEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, "Event not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to list uploads")
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploads": uploads})
}

// Serve streams the original asset with its recorded MIME type. Stored names
// are immutable uuids, so far-future caching is safe.
func (h *Handler) Serve(c *gin.Context) {
	u, absPath, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUploadNotFound) {
			response.Error(c, http.StatusNotFound, "File not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to serve file")
		return
	}

	c.Header("Content-Type", u.MimeType)
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(absPath)
}

// ServeThumb streams the preview jpeg. Its absence is a valid steady state
// (videos, undecodable formats) and answers 404.
func (h *Handler) ServeThumb(c *gin.Context) {
	_, thumbPath, ok, err := h.service.ThumbPath(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUploadNotFound) {
			response.Error(c, http.StatusNotFound, "File not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to serve thumbnail")
		return
	}
	if !ok {
		response.Error(c, http.StatusNotFound, "No thumbnail")
		return
	}

	c.Header("Content-Type", "image/jpeg")
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(thumbPath)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrUploadNotFound) {
			response.Error(c, http.StatusNotFound, "Not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to delete upload")
		return
	}
	response.OK(c, nil)
}

func (h *Handler) DeleteAllForEvent(c *gin.Context) {
	count, err := h.service.DeleteAllForEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, "Event not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to delete uploads")
		return
	}
	response.OK(c, gin.H{"count": count})
}

// Export streams a store-only zip of all originals of an event.
func (h *Handler) Export(c *gin.Context) {
	eventID := c.Param("id")

	if err := h.service.EnsureEvent(c.Request.Context(), eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, "Event not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to export event")
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="event-%s-export.zip"`, eventID))

	if err := h.service.WriteArchive(c.Request.Context(), eventID, c.Writer); err != nil {
		// headers are already out; logging is all that is left
		_ = c.Error(err)
	}
}
