package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKeyRequestID = "request_id"

// RequestID mints a request id for every request and echoes it back as
// X-Request-Id. The id ties the structured op logs of one request together.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// RequestIDFromContext returns the id set by RequestID, or "" if unset.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}
