package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/newsletter/internal/pkg/response"
)

// AdminAuth guards admin endpoints with a static bearer token. An empty
// configured token disables the endpoints entirely.
func AdminAuth(token string) gin.HandlerFunc {
	expected := []byte(token)
	return func(c *gin.Context) {
		got := NormalizeToken(c.GetHeader("Authorization"))
		if len(expected) == 0 || got == "" || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
			response.Unauthorized(c)
			return
		}
		c.Next()
	}
}

// NormalizeToken strips an optional "Bearer " prefix and surrounding space.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
