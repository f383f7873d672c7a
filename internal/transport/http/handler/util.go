// Package handler 各业务模块的 HTTP 挂载
package handler

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	mdw "realty-api/internal/transport/http/middleware"
)

var phoneJunk = regexp.MustCompile(`[^\d\s\-+()]`)

// blankToNil 可选字段传空串按未传处理
func blankToNil(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

func cleanPhone(s string) string { return strings.TrimSpace(phoneJunk.ReplaceAllString(s, "")) }

func cleanPhonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := cleanPhone(*p)
	return &s
}

func currentID(c *gin.Context) string {
	if u, ok := mdw.CurrentUser(c); ok {
		return u.ID
	}
	return ""
}
