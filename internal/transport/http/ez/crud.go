package ez

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mdw "realty-api/internal/transport/http/middleware"
	resp "realty-api/internal/transport/http/response"
)

// CrudConfig 归属当前登录用户的资源：列表 / 创建 / 更新 / 删除
// 所有操作都带 owner，非本人资源一律按不存在处理
type CrudConfig[T any, C any, U any] struct {
	Path     string
	Singular string // 响应包裹键，如 {"listing": ...}
	Plural   string // 如 {"listings": [...]}
	NotFound string

	List   func(c *gin.Context, owner string) ([]T, error)
	Create func(c *gin.Context, owner string, in *C) (*T, error)
	Update func(c *gin.Context, owner, id string, in *U) (*T, error)
	Delete func(c *gin.Context, owner, id string) error
}

// Crud 为 nil 的回调不注册对应路由
func Crud[T any, C any, U any](e EZ, cfg CrudConfig[T, C, U]) {
	notFound := cfg.NotFound
	if notFound == "" {
		notFound = "Not found"
	}
	owner := func(c *gin.Context) (string, bool) {
		u, ok := mdw.CurrentUser(c)
		if !ok {
			Fail(c, e.log, Unauthorized("Authentication required"), notFound)
			return "", false
		}
		return u.ID, true
	}
	item := cfg.Path + "/:id"

	if cfg.List != nil {
		e.g.GET(cfg.Path, func(c *gin.Context) {
			uid, ok := owner(c)
			if !ok {
				return
			}
			items, err := cfg.List(c, uid)
			if err != nil {
				Fail(c, e.log, err, notFound)
				return
			}
			if items == nil {
				items = []T{}
			}
			c.JSON(http.StatusOK, gin.H{cfg.Plural: items})
		})
	}

	if cfg.Create != nil {
		e.g.POST(cfg.Path, func(c *gin.Context) {
			uid, ok := owner(c)
			if !ok {
				return
			}
			var in C
			if err := bind(c, BindJSON, &in); err != nil {
				Fail(c, e.log, err, notFound)
				return
			}
			out, err := cfg.Create(c, uid, &in)
			if err != nil {
				Fail(c, e.log, err, notFound)
				return
			}
			c.JSON(http.StatusCreated, gin.H{cfg.Singular: out})
		})
	}

	if cfg.Update != nil {
		e.g.PUT(item, func(c *gin.Context) {
			uid, ok := owner(c)
			if !ok {
				return
			}
			var in U
			if err := bind(c, BindJSON, &in); err != nil {
				Fail(c, e.log, err, notFound)
				return
			}
			out, err := cfg.Update(c, uid, c.Param("id"), &in)
			if err != nil {
				Fail(c, e.log, err, notFound)
				return
			}
			c.JSON(http.StatusOK, gin.H{cfg.Singular: out})
		})
	}

	if cfg.Delete != nil {
		e.g.DELETE(item, func(c *gin.Context) {
			uid, ok := owner(c)
			if !ok {
				return
			}
			if err := cfg.Delete(c, uid, c.Param("id")); err != nil {
				Fail(c, e.log, err, notFound)
				return
			}
			c.JSON(http.StatusOK, resp.OK())
		})
	}
}
