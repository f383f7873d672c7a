package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	resp "realty-api/internal/transport/http/response"
)

type KeyFunc func(c *gin.Context) string

func ByIP(c *gin.Context) string { return c.ClientIP() }

// ByIPAndListing 按 IP + 请求体里的 listingId 计数，读完后把 body 放回去
func ByIPAndListing(c *gin.Context) string {
	listing := "unknown"
	if c.Request.Body != nil {
		body, err := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		var peek struct {
			ListingID string `json:"listingId"`
		}
		if err == nil && json.Unmarshal(body, &peek) == nil && peek.ListingID != "" {
			listing = peek.ListingID
		}
	}
	return c.ClientIP() + "-" + listing
}

type window struct {
	count int
	start time.Time
}

// Limiter 每个 key 一个固定窗口计数器：窗口内最多 max 次，窗口结束后清零
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	windows map[string]*window
	lastGC  time.Time
	now     func() time.Time
}

func NewLimiter(max int, win time.Duration) *Limiter {
	if max <= 0 {
		max = 1
	}
	return &Limiter{
		max:     max,
		window:  win,
		windows: map[string]*window{},
		now:     time.Now,
	}
}

// Allow 返回是否放行、剩余次数以及当前窗口还剩多久
func (l *Limiter) Allow(key string) (bool, int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastGC) > l.window {
		for k, w := range l.windows {
			if now.Sub(w.start) >= l.window {
				delete(l.windows, k)
			}
		}
		l.lastGC = now
	}
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &window{start: now}
		l.windows[key] = w
	}
	reset := l.window - now.Sub(w.start)
	if w.count >= l.max {
		return false, 0, reset
	}
	w.count++
	return true, l.max - w.count, reset
}

// RateLimit 超限返回 429 与 msg；msg 为空用默认提示
func RateLimit(l *Limiter, key KeyFunc, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, left, reset := l.Allow(key(c))
		c.Header("RateLimit-Limit", strconv.Itoa(l.max))
		c.Header("RateLimit-Remaining", strconv.Itoa(left))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(reset.Seconds()))))
			resp.Abort(c, http.StatusTooManyRequests, msg)
			return
		}
		c.Next()
	}
}
