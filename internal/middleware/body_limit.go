package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for boundaries and form fields around the uploaded file.
const multipartOverhead = 64 << 10

// BodyLimit caps request bodies at maxUploadBytes plus multipart framing. Reads past the
// limit fail with *http.MaxBytesError. A non-positive limit disables the cap.
func BodyLimit(maxUploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxUploadBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+multipartOverhead)
		}
		c.Next()
	}
}
