package event

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"photodrop/internal/pkg/response"
	"photodrop/internal/repository"

	"github.com/gin-gonic/gin"
)

// Covers are buffered in memory before hitting disk; cap them well below
// what the streaming ingest path would allow.
const maxCoverBytes = 20 * 1024 * 1024

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts event management on the admin group.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	events := admin.Group("/events")
	{
		events.POST("", h.Create)
		events.GET("", h.List)
		events.GET("/:id", h.Get)
		events.PATCH("/:id", h.Update)
		events.DELETE("/:id", h.Delete)
		events.POST("/:id/cover", h.SetCover)
	}
}

// RegisterPublicRoutes mounts the guest-facing lookups.
func (h *Handler) RegisterPublicRoutes(pub *gin.RouterGroup) {
	pub.GET("/:eventId", h.PublicInfo)
	pub.GET("/:eventId/cover", h.ServeCover)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	e, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to create event")
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) List(c *gin.Context) {
	events, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) Get(c *gin.Context) {
	e, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, "Event not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to load event")
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	e, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, "Event not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to update event")
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, "Event not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to delete event")
		return
	}
	response.OK(c, nil)
}

// SetCover replaces the event cover image. Unlike guest ingest this is a
// small, trusted admin upload, so buffering it is fine.
func (h *Handler) SetCover(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No file provided")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		response.Error(c, http.StatusBadRequest, "Invalid file type. Only images are allowed.")
		return
	}
	if fileHeader.Size > maxCoverBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "Cover image too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to read cover")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxCoverBytes))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to read cover")
		return
	}

	if err := h.service.SetCover(c.Request.Context(), c.Param("id"), mimeType, data); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, "Event not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to store cover")
		return
	}
	response.OK(c, nil)
}

func (h *Handler) PublicInfo(c *gin.Context) {
	e, err := h.service.Get(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, "Event not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to load event")
		return
	}
	c.JSON(http.StatusOK, PublicEventInfo{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Language:    e.Language,
		IsActive:    e.IsActive,
	})
}

func (h *Handler) ServeCover(c *gin.Context) {
	mimeType, data, err := h.service.GetCover(c.Param("eventId"))
	if err != nil {
		if errors.Is(err, ErrCoverNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, mimeType, data)
}
