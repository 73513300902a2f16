package storagestat

import (
	"net/http"
	"os"

	"photodrop/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/sys/unix"
)

const (
	warningPercent  = 85
	criticalPercent = 95
)

// Handler reports filesystem usage of the storage root so the dashboard can
// warn before the disk fills up.
type Handler struct {
	basePath string
}

func NewHandler(basePath string) *Handler {
	return &Handler{basePath: basePath}
}

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/storage", h.Usage)
}

func (h *Handler) Usage(c *gin.Context) {
	if err := os.MkdirAll(h.basePath, 0o755); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to read disk statistics")
		return
	}

	var st unix.Statfs_t
	if err := unix.Statfs(h.basePath, &st); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to read disk statistics")
		return
	}

	const gb = 1024 * 1024 * 1024
	total := float64(st.Blocks) * float64(st.Bsize) / gb
	free := float64(st.Bavail) * float64(st.Bsize) / gb
	used := total - free

	var percentage float64
	if total > 0 {
		percentage = used / total * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"totalGB":    total,
		"usedGB":     used,
		"freeGB":     free,
		"percentage": percentage,
		"isWarning":  percentage > warningPercent,
		"isCritical": percentage > criticalPercent,
	})
}
