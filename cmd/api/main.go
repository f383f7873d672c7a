package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"realty-api/internal/core/auth"
	"realty-api/internal/core/cache"
	"realty-api/internal/core/config"
	"realty-api/internal/core/database"
	"realty-api/internal/core/events"
	"realty-api/internal/core/logger"
	"realty-api/internal/core/server"
	"realty-api/internal/core/session"
	"realty-api/internal/core/storage"
	"realty-api/internal/domain"
	"realty-api/internal/mailer"
	"realty-api/internal/repo/memory"
	mongorepo "realty-api/internal/repo/mongo"
	"realty-api/internal/service"
	"realty-api/internal/transport/http/router"
)

type repos struct {
	users     domain.UserRepository
	listings  domain.ListingRepository
	inquiries domain.InquiryRepository
	customers domain.CustomerRepository
	close     func()
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	undo := logger.RedirectStdLog(log)
	defer undo()

	ctx := context.Background()

	// 数据库（失败会直接 Fatal）
	rp := mustOpenRepos(ctx, cfg, log)
	defer rp.close()
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// Redis：会话与读缓存共用
	var rdb *redis.Client
	if cfg.Session.Store == "redis" {
		c, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer func() { _ = c.Close() }()
		rdb = c
	}
	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour
	var sessions session.Store = session.NewMemoryStore(ttl)
	if rdb != nil {
		sessions = session.NewRedisStore(rdb, ttl)
	}
	dirCache := cache.New(rdb, cfg.App.Name+":")

	// 事件（未配置 NATS 时不发）
	var pub events.Publisher = events.Nop{}
	if cfg.NATS.URL != "" {
		p, err := events.NewNATS(cfg.NATS.URL, cfg.NATS.SubjectPrefix, log)
		if err != nil {
			log.Fatal("nats connect", zap.Error(err))
		}
		pub = p
	}
	defer pub.Close()

	// 图片存储（可选）
	var images storage.Uploader
	if cfg.Storage.Enabled() {
		m, err := storage.NewMinio(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("storage init", zap.Error(err))
		}
		images = m
	} else {
		log.Warn("storage not configured; image uploads disabled")
	}

	mail := mailer.New(cfg.Mail, mailer.Renderer{ClientOrigin: cfg.App.ClientOrigin}, log)

	authSvc := &service.AuthService{
		Users:    rp.users,
		Sessions: sessions,
		Tokens:   &auth.JWTer{Secret: []byte(cfg.Session.Secret), Issuer: cfg.App.Name, TTL: ttl},
		Cache:    dirCache,
		Log:      log,
	}
	r := router.NewAPIEngine(router.Deps{
		Log:    log,
		Config: cfg,
		Auth:   authSvc,
		Agents: &service.AgentService{Users: rp.users, Cache: dirCache},
		Listings: &service.ListingService{
			Listings: rp.listings, Users: rp.users, Customers: rp.customers, Cache: dirCache, Events: pub, Log: log,
		},
		Inquiries: &service.InquiryService{
			Listings: rp.listings, Users: rp.users, Inquiries: rp.inquiries,
			Mailer: mail, Events: pub, Log: log,
		},
		Customers: &service.CustomerService{Customers: rp.customers, Listings: rp.listings, Events: pub, Log: log},
		Users:     &service.UserAdmin{Users: rp.users, Cache: dirCache, Log: log},
		Images:    images,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		logger.ToStdLogger(log, zapcore.ErrorLevel),
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("realty api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("health", baseURL+"/api/health"),
		zap.String("metrics", baseURL+"/metrics"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("realty api start FAILED", zap.Error(err))
		}
	}()
	log.Info("realty api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("realty api stopped gracefully")
}

func mustOpenRepos(ctx context.Context, cfg *config.Config, l *zap.Logger) repos {
	if cfg.DB.Driver == "memory" {
		l.Warn("using in-memory repositories; data is lost on restart")
		db := memory.New()
		return repos{users: db.Users, listings: db.Listings, inquiries: db.Inquiries, customers: db.Customers, close: func() {}}
	}
	client, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	db := client.Database(cfg.Mongo.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		l.Fatal("ensure indexes", zap.Error(err))
	}
	r := mongorepo.New(db)
	return repos{
		users: r.Users, listings: r.Listings, inquiries: r.Inquiries, customers: r.Customers,
		close: func() { _ = client.Disconnect(context.Background()) },
	}
}
