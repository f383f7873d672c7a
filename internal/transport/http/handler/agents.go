package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"realty-api/internal/domain"
	"realty-api/internal/service"
	httpez "realty-api/internal/transport/http/ez"
)

// Agents 公开经纪人目录
type Agents struct {
	Svc *service.AgentService
	Log *zap.Logger
}

func (Agents) Priority() int { return 25 }

func (h Agents) MountAPI(api *gin.RouterGroup) {
	httpez.RegisterAction(httpez.New(api, h.Log), httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/agents",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			agents, err := h.Svc.Directory(c.Request.Context())
			if err != nil {
				return nil, err
			}
			if agents == nil {
				agents = []domain.AgentSummary{}
			}
			return gin.H{"agents": agents}, nil
		},
	})
}

// Health 存活探针
type Health struct{ Now func() time.Time }

func (Health) Priority() int { return 0 }

func (h Health) MountAPI(api *gin.RouterGroup) {
	api.GET("/health", func(c *gin.Context) {
		now := time.Now
		if h.Now != nil {
			now = h.Now
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": now().UTC().Format(time.RFC3339Nano)})
	})
}
