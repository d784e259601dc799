package health

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles health check related endpoints
type Handler struct {
	responseHandler ResponseHandler
	db              DatabasePinger
	buckets         BucketChecker
	bucketNames     []string
}

// NewHandler creates a new health check handler
func NewHandler(responseHandler ResponseHandler, db DatabasePinger, buckets BucketChecker, bucketNames []string) *Handler {
	return &Handler{
		responseHandler: responseHandler,
		db:              db,
		buckets:         buckets,
		bucketNames:     bucketNames,
	}
}

// HandleHealthCheck verifies the database connection and the object storage
// buckets the API depends on
func (h *Handler) HandleHealthCheck(c *gin.Context) {
	checks := gin.H{}

	if err := h.db.Ping(c.Request.Context()); err != nil {
		checks["database"] = "unreachable"
		h.responseHandler.ErrorResponse(c, http.StatusServiceUnavailable, "UNHEALTHY", "database unreachable", err)
		return
	}
	checks["database"] = "ok"

	for _, bucket := range h.bucketNames {
		exists, err := h.buckets.BucketExists(c.Request.Context(), bucket)
		if err != nil || !exists {
			checks["storage"] = fmt.Sprintf("bucket %s unavailable", bucket)
			h.responseHandler.ErrorResponse(c, http.StatusServiceUnavailable, "UNHEALTHY", checks["storage"].(string), err)
			return
		}
	}
	checks["storage"] = "ok"

	h.responseHandler.SuccessResponse(c, checks, "Health check successful")
}
