package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes 限制请求体大小；超限时由绑定层返回 413
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitBody(c, n)
	}
}

// BodyLimit multipart 上传与普通 JSON 分开限额
func BodyLimit(jsonMax, multipartMax int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		n := jsonMax
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			n = multipartMax
		}
		limitBody(c, n)
	}
}

func limitBody(c *gin.Context, n int64) {
	if c.Request.ContentLength > n {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
	c.Next()
}
