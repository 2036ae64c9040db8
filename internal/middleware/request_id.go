package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the request id header propagated to collaborators.
const HeaderRequestID = "X-Request-ID"

// ContextRequestID is the gin context key carrying the request id.
const ContextRequestID = "request_id"

// RequestID assigns every request an id, reusing the inbound header when a
// gateway already set one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}
