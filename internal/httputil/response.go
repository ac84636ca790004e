// Package httputil holds HTTP response helpers shared by handlers and
// middleware.
package httputil

import "github.com/gin-gonic/gin"

// RespondError writes the standard JSON error envelope and aborts the
// handler chain. The request ID set by the request-ID middleware is echoed
// back when present.
func RespondError(c *gin.Context, status int, code, message string) {
	resp := gin.H{
		"code":    code,
		"message": message,
	}
	if requestID := c.GetString("request_id"); requestID != "" {
		resp["request_id"] = requestID
	}
	c.AbortWithStatusJSON(status, resp)
}
