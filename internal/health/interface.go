package health

import (
	"context"

	"github.com/gin-gonic/gin"
)

// ResponseHandler defines the interface for handling HTTP responses
type ResponseHandler interface {
	SuccessResponse(c *gin.Context, data interface{}, message string)
	ErrorResponse(c *gin.Context, status int, code, message string, err error)
}

// DatabasePinger reports whether the relational store is reachable
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// BucketChecker reports whether an object storage bucket exists
type BucketChecker interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
}
