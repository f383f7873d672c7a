package response

import "github.com/gin-gonic/gin"

// Err 统一错误体：{"error": "...", "details": {...}}
type Err struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// Error 自定义 msg 为空时用状态码默认提示
func Error(status int, customMsg string) Err {
	msg := MsgMap[status]
	if customMsg != "" {
		msg = customMsg
	}
	return Err{Error: msg}
}

func Invalid(details map[string]string) Err {
	return Err{Error: ValidationFailed, Details: details}
}

func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(status, msg))
}

func OK() gin.H { return gin.H{"ok": true} }
