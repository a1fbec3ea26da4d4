package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the shared key when API_KEY is configured.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey checks the X-API-Key header against key. An empty key
// disables the check.
func RequireAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			// If the header is absent or the value is incorrect, reject the request
			abortWithEnvelope(c, http.StatusUnauthorized, "Unauthorized", "missing or invalid API key")
			return
		}
		c.Next()
	}
}
