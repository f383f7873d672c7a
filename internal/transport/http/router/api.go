package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"realty-api/internal/core/config"
	"realty-api/internal/core/server"
	"realty-api/internal/core/storage"
	"realty-api/internal/service"
	"realty-api/internal/transport/http/handler"
	mdw "realty-api/internal/transport/http/middleware"
	resp "realty-api/internal/transport/http/response"
)

const (
	maxJSONBody      = 1 << 20
	maxMultipartBody = 16 << 20
	maxInFlight      = 300
)

// Deps 组装 API 引擎所需的全部依赖
type Deps struct {
	Log    *zap.Logger
	Config *config.Config

	Auth      *service.AuthService
	Agents    *service.AgentService
	Listings  *service.ListingService
	Inquiries *service.InquiryService
	Customers *service.CustomerService
	Users     *service.UserAdmin

	// Images 为 nil 时上传接口返回 503
	Images storage.Uploader
}

func limit(l config.Limit) *mdw.Limiter {
	return mdw.NewLimiter(l.Max, time.Duration(l.WindowMin)*time.Minute)
}

func NewAPIEngine(d Deps) *gin.Engine {
	cfg := d.Config
	r := server.NewEngine(server.Options{Mode: ginMode(cfg.App.Env), ClientOrigin: cfg.App.ClientOrigin})

	reqTimeout := time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second
	if reqTimeout <= 0 {
		reqTimeout = 10 * time.Second
	}

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(d.Log),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		mdw.SecureHeaders(cfg.App.IsProduction()),
		mdw.RateLimit(limit(cfg.RateLimit.General), mdw.ByIP, ""),
		mdw.ConcurrencyLimit(maxInFlight),
		mdw.BodyLimit(maxJSONBody, maxMultipartBody),
		mdw.Timeout(reqTimeout),
		mdw.Session(d.Auth.Resolve, cfg.Session.CookieName, d.Log),
	)

	r.GET("/metrics", mdw.MetricsHandler())
	r.NoRoute(func(c *gin.Context) { resp.Abort(c, http.StatusNotFound, "Route not found") })

	cookie := handler.Cookie{
		Name:   cfg.Session.CookieName,
		TTL:    time.Duration(cfg.Session.TTLHours) * time.Hour,
		Secure: cfg.Session.Secure || cfg.App.IsProduction(),
	}

	var reg Registry
	reg.Register(
		handler.Health{},
		handler.Auth{
			Svc:          d.Auth,
			Cookie:       cookie,
			LoginLimiter: mdw.RateLimit(limit(cfg.RateLimit.Login), mdw.ByIP, "Too many login attempts, please try again later"),
			Log:          d.Log,
		},
		handler.Listings{Svc: d.Listings, Log: d.Log},
		handler.Agents{Svc: d.Agents, Log: d.Log},
		handler.Inquiries{
			Svc:     d.Inquiries,
			Limiter: mdw.RateLimit(limit(cfg.RateLimit.Inquiry), mdw.ByIPAndListing, "Too many inquiries for this listing, please try again later"),
			Log:     d.Log,
		},
		handler.Customers{Svc: d.Customers, Log: d.Log},
		handler.Uploads{Store: d.Images, Log: d.Log},
		handler.Users{Svc: d.Users, Log: d.Log},
	)

	// 前缀
	api := r.Group("/api")
	reg.MountAllAPI(api)
	mountAdmin(api, &reg)

	return r
}

func ginMode(env string) string {
	switch env {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	}
	return gin.DebugMode
}
