package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "realty",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by route group, route, method and status",
		},
		[]string{"group", "route", "method", "status"},
	)
	apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "realty",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency by route group and route",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"group", "route"},
	)
)

func init() { prometheus.MustRegister(apiRequests, apiLatency) }

// routeGroup 按挂载前缀归类：auth / listings / agent / admin / inquiries / agents / other
func routeGroup(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return "other"
	}
	g, _, _ := strings.Cut(rest, "/")
	switch g {
	case "auth", "listings", "agent", "admin", "inquiries", "agents", "health":
		return g
	}
	return "other"
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		// 未匹配的路由不用原始 path，防止 label 基数爆炸
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		group := routeGroup(route)
		apiRequests.WithLabelValues(group, route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		apiLatency.WithLabelValues(group, route).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler 暴露 /metrics
func MetricsHandler() gin.HandlerFunc { return gin.WrapH(promhttp.Handler()) }
