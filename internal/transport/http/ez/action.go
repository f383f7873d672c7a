// Package ez 把 handler 写成 “入参 → 出参 / 错误” 的函数，绑定、鉴权与错误映射集中处理
package ez

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	mdw "realty-api/internal/transport/http/middleware"
	resp "realty-api/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	Setup()
	return EZ{g: g, log: l}
}

func (e EZ) Log() *zap.Logger { return e.log }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// Normalizer 入参在校验前做 trim / 小写等整理
type Normalizer interface{ Normalize() }

// Action 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method   string
	Path     string
	Binder   Binder
	Auth     bool     // 是否要求登录
	Roles    []string // 限定角色（可选）
	Status   int      // 成功状态码，默认 200
	NotFound string   // domain.ErrNotFound 时的提示
	Handler  func(c *gin.Context, in *I) (O, error)
}

func bind[I any](c *gin.Context, b Binder, in *I) error {
	switch b {
	case BindJSON:
		if err := json.NewDecoder(c.Request.Body).Decode(in); err != nil {
			return bindErr(err)
		}
	case BindQuery:
		if err := binding.MapFormWithTag(in, c.Request.URL.Query(), "form"); err != nil {
			return bindErr(err)
		}
	default:
		return nil
	}
	if n, ok := any(in).(Normalizer); ok {
		n.Normalize()
	}
	if err := binding.Validator.ValidateStruct(in); err != nil {
		return bindErr(err)
	}
	return nil
}

func authorize(c *gin.Context, auth bool, roles []string) error {
	if !auth && len(roles) == 0 {
		return nil
	}
	u, ok := mdw.CurrentUser(c)
	if !ok {
		return Unauthorized("Authentication required")
	}
	if len(roles) > 0 && !slices.Contains(roles, u.Role) {
		return Forbidden("")
	}
	return nil
}

// RegisterAction 在当前分组下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	notFound := a.NotFound
	if notFound == "" {
		notFound = "Not found"
	}
	h := func(c *gin.Context) {
		if err := authorize(c, a.Auth, a.Roles); err != nil {
			Fail(c, e.log, err, notFound)
			return
		}
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			Fail(c, e.log, err, notFound)
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, e.log, err, notFound)
			return
		}
		c.JSON(status, out)
	}
	e.g.Handle(strings.ToUpper(a.Method), a.Path, h)
}

// POSTFILES 处理 multipart/form-data 多文件上传
func POSTFILES(e EZ, path, fieldName string, maxFiles int, h func(c *gin.Context, files []*multipart.FileHeader) (any, error)) {
	e.g.POST(path, func(c *gin.Context) {
		if err := authorize(c, true, nil); err != nil {
			Fail(c, e.log, err, "")
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			Fail(c, e.log, bindErr(err), "")
			return
		}
		files := form.File[fieldName]
		if len(files) == 0 {
			resp.Abort(c, http.StatusBadRequest, "No files uploaded")
			return
		}
		if maxFiles > 0 && len(files) > maxFiles {
			Fail(c, e.log, Invalid(map[string]string{fieldName: "Too many files"}), "")
			return
		}
		data, err := h(c, files)
		if err != nil {
			Fail(c, e.log, err, "")
			return
		}
		c.JSON(http.StatusCreated, data)
	})
}
