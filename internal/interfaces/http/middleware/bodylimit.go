package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homeops/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("ERR_REQUEST_TOO_LARGE", "Request body exceeds maximum allowed size"))
			return
		}

		// Streaming requests without Content-Length still get capped
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
