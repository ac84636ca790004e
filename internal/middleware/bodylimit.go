package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodySize caps the request body at maxBytes. Reads past the cap fail
// with http.ErrBodyReadAfterClose semantics from MaxBytesReader, which gin
// binding surfaces as a 400.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if body := c.Request.Body; body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, body, maxBytes)
		}
		c.Next()
	}
}
