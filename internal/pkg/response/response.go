package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error writes the flat error shape the API speaks,
// e.g. {"error": "Event not found"}.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// OK wraps data in the success envelope used by write endpoints.
func OK(c *gin.Context, data gin.H) {
	payload := gin.H{"success": true}
	for k, v := range data {
		payload[k] = v
	}
	c.JSON(http.StatusOK, payload)
}
