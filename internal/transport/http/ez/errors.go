package ez

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"realty-api/internal/core/session"
	"realty-api/internal/domain"
	mdw "realty-api/internal/transport/http/middleware"
	resp "realty-api/internal/transport/http/response"
)

// AErr 统一错误对象，Status 即 HTTP 状态码
type AErr struct {
	Status  int
	Msg     string
	Details map[string]string
	Err     error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Status: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Status: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Status: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Status: http.StatusNotFound, Msg: msg} }
func Unavailable(msg string) error  { return &AErr{Status: http.StatusServiceUnavailable, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Status: http.StatusInternalServerError, Msg: msg, Err: err}
}

// Invalid 字段级校验失败
func Invalid(details map[string]string) error {
	return &AErr{Status: http.StatusBadRequest, Msg: resp.ValidationFailed, Details: details}
}

// domainErr 领域错误到 HTTP 的唯一映射点
func domainErr(err error, notFound string) *AErr {
	switch {
	case errors.Is(err, domain.ErrCustomerNotOwned):
		return &AErr{Status: http.StatusNotFound, Msg: "Customer not found"}
	case errors.Is(err, domain.ErrNotFound):
		return &AErr{Status: http.StatusNotFound, Msg: notFound}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return &AErr{Status: http.StatusUnauthorized, Msg: "Invalid credentials"}
	case errors.Is(err, session.ErrNoSession):
		return &AErr{Status: http.StatusUnauthorized, Msg: "Not authenticated"}
	case errors.Is(err, domain.ErrListingInactive):
		return &AErr{Status: http.StatusBadRequest, Msg: "This listing is no longer accepting inquiries"}
	case errors.Is(err, domain.ErrInvalidStatus):
		return &AErr{Status: http.StatusBadRequest, Msg: "Invalid status"}
	case errors.Is(err, domain.ErrSelfDelete):
		return &AErr{Status: http.StatusBadRequest, Msg: "You cannot delete your own account"}
	case errors.Is(err, domain.ErrEmailTaken):
		return &AErr{Status: http.StatusConflict, Msg: "Email already registered"}
	case errors.Is(err, domain.ErrAgentMissing):
		return &AErr{Status: http.StatusInternalServerError, Msg: "Agent not found", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &AErr{Status: http.StatusGatewayTimeout, Err: err}
	}
	return nil
}

// Fail 写错误响应；5xx 记录原始错误，客户端只看到通用提示
func Fail(c *gin.Context, l *zap.Logger, err error, notFound string) {
	ae := toAErr(err, notFound)
	if ae.Status >= 500 {
		l.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	body := resp.Error(ae.Status, ae.Msg)
	body.Details = ae.Details
	c.AbortWithStatusJSON(ae.Status, body)
}

func toAErr(err error, notFound string) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	if d := domainErr(err, notFound); d != nil {
		return d
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		return &AErr{Status: http.StatusBadRequest, Msg: resp.ValidationFailed, Details: fieldMessages(ves)}
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return &AErr{Status: http.StatusRequestEntityTooLarge}
	}
	return &AErr{Status: http.StatusInternalServerError, Err: err}
}

// bindErr 绑定阶段的错误都属于客户端问题
func bindErr(err error) error {
	var ves validator.ValidationErrors
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &ves), errors.As(err, &mbe):
		return err
	case errors.Is(err, io.EOF):
		return BadRequest("Request body is required")
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return Invalid(map[string]string{ute.Field: "Expected " + ute.Type.String()})
	}
	return &AErr{Status: http.StatusBadRequest, Msg: resp.ValidationFailed,
		Details: map[string]string{"body": "Malformed request"}, Err: err}
}

func fieldMessages(ves validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(ves))
	for _, fe := range ves {
		name := fe.Namespace()
		if i := strings.IndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		if _, dup := out[name]; !dup {
			out[name] = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email address"
	case "url", "http_url":
		return "Invalid URL"
	case "objectid":
		return "Invalid ID"
	case "phone":
		return "Invalid phone number format"
	case "isodate":
		return "Invalid date"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must contain at least %s item(s)", fe.Param())
		}
		if isString {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		return "Must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("Must be at most %s characters", fe.Param())
		}
		return "Must be at most " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Must be at least " + fe.Param()
	}
	return "Invalid value"
}

var setupOnce sync.Once

// Setup 给 gin 的校验器注册字段名（取 json/form tag）与自定义规则
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("objectid", validObjectID)
		_ = v.RegisterValidation("phone", validPhone)
		_ = v.RegisterValidation("isodate", validISODate)
	})
}
