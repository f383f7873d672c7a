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
	mdw "realty-api/internal/transport/http/middleware"
	resp "realty-api/internal/transport/http/response"
)

type Cookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func (ck Cookie) set(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ck.Name, value, int(ck.TTL.Seconds()), "/", "", ck.Secure, true)
}

func (ck Cookie) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ck.Name, "", -1, "/", "", ck.Secure, true)
}

// Auth 登录 / 登出 / 当前用户 / 资料
type Auth struct {
	Svc          *service.AuthService
	Cookie       Cookie
	LoginLimiter gin.HandlerFunc
	Log          *zap.Logger
}

func (Auth) Priority() int { return 10 }

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (in *loginIn) Normalize() { in.Email = strings.ToLower(strings.TrimSpace(in.Email)) }

type profileIn struct {
	Name     *string `json:"name"     binding:"omitempty,min=2,max=100"`
	Phone    *string `json:"phone"    binding:"omitempty,max=30"`
	PhotoURL *string `json:"photoUrl" binding:"omitempty,url"`
	Bio      *string `json:"bio"      binding:"omitempty,max=500"`
}

func (in *profileIn) Normalize() {
	in.Name, in.Phone, in.PhotoURL, in.Bio = httpez.Trim(in.Name), httpez.Trim(in.Phone), blankToNil(in.PhotoURL), httpez.Trim(in.Bio)
}

type userOut struct {
	User *domain.User `json:"user"`
}

func (h Auth) MountAPI(api *gin.RouterGroup) {
	login := api.Group("/auth/login")
	if h.LoginLimiter != nil {
		login.Use(h.LoginLimiter)
	}
	httpez.RegisterAction(httpez.New(login, h.Log), httpez.Action[loginIn, userOut]{
		Method: http.MethodPost,
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (userOut, error) {
			u, token, err := h.Svc.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return userOut{}, err
			}
			h.Cookie.set(c, token)
			return userOut{User: u}, nil
		},
	})

	ez := httpez.New(api.Group("/auth"), h.Log)

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/logout",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			token, _ := c.Cookie(h.Cookie.Name)
			if err := h.Svc.Logout(c.Request.Context(), token); err != nil {
				return nil, httpez.Internal("Failed to logout", err)
			}
			h.Cookie.clear(c)
			return resp.OK(), nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, userOut]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (userOut, error) {
			u, ok := mdw.CurrentUser(c)
			if !ok {
				return userOut{}, httpez.Unauthorized("Not authenticated")
			}
			return userOut{User: u}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[profileIn, userOut]{
		Method:   http.MethodPut,
		Path:     "/profile",
		Binder:   httpez.BindJSON,
		Auth:     true,
		NotFound: "User not found",
		Handler: func(c *gin.Context, in *profileIn) (userOut, error) {
			me, _ := mdw.CurrentUser(c)
			u, err := h.Svc.UpdateProfile(c.Request.Context(), me.ID, domain.ProfileUpdate{
				Name: in.Name, Phone: in.Phone, PhotoURL: in.PhotoURL, Bio: in.Bio,
			})
			if err != nil {
				return userOut{}, err
			}
			return userOut{User: u}, nil
		},
	})
}
