package middlewares

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders untuk permukaan publik (QR scan + self-order berjalan
// tanpa login). Tidak ada CSP di sini: API murni JSON/websocket, tidak
// pernah menyajikan HTML.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

		c.Next()
	}
}
