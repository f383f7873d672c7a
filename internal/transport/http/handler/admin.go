package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"realty-api/internal/domain"
	"realty-api/internal/service"
	httpez "realty-api/internal/transport/http/ez"
)

// Users 管理端账号接口，分组已要求 admin 角色
type Users struct {
	Svc *service.UserAdmin
	Log *zap.Logger
}

func (h Users) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin, h.Log)

	// --- 用户列表 ---
	type listQ struct {
		Offset int    `form:"offset,default=0"  binding:"gte=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"` // 按 email/name 模糊搜
	}
	type row struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		Name      string    `json:"name"`
		Phone     string    `json:"phone"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}

	httpez.RegisterAction(ez, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			us, total, err := h.Svc.List(c.Request.Context(), domain.UserFilter{
				Q: strings.TrimSpace(in.Q), Offset: in.Offset, Limit: in.Limit,
			})
			if err != nil {
				return listOut{}, httpez.Internal("list users failed", err)
			}
			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, Email: u.Email, Name: u.Name, Phone: u.Phone, Role: u.Role, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	// --- 开户 ---
	httpez.RegisterAction(ez, httpez.Action[createUserIn, userOut]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createUserIn) (userOut, error) {
			u, err := h.Svc.Create(c.Request.Context(), service.NewUser{
				Email: in.Email, Password: in.Password, Name: in.Name, Phone: in.Phone, Role: in.Role,
			})
			if err != nil {
				return userOut{}, err
			}
			return userOut{User: u}, nil
		},
	})

	// --- 删除 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method:   http.MethodDelete,
		Path:     "/users/:id",
		Binder:   httpez.BindNone,
		Auth:     true,
		Roles:    []string{domain.RoleAdmin},
		NotFound: "User not found",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := h.Svc.Delete(c.Request.Context(), currentID(c), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"ok": true}, nil
		},
	})
}

type createUserIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Phone    string `json:"phone"    binding:"required,phone"`
	Role     string `json:"role"     binding:"omitempty,oneof=agent admin"`
}

func (in *createUserIn) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name, in.Phone, in.Role = strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone), strings.TrimSpace(in.Role)
}
