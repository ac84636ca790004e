package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key holding the canonical request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader propagates the request ID to clients.
	RequestIDHeader = "X-Request-ID"
)

// RequestID mints a server-side UUID for every request. A client-supplied
// X-Request-ID is never trusted as the canonical ID; it is stashed under
// "client_request_id" and logged for correlation.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		if clientID := c.GetHeader(RequestIDHeader); clientID != "" {
			c.Set("client_request_id", clientID)
			log.WithFields(logrus.Fields{
				"request_id":        id,
				"client_request_id": clientID,
			}).Debug("mapped client request ID")
		}

		c.Next()
	}
}
