package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civic-project-system/config"
	"civic-project-system/internal/global/cache"
	"civic-project-system/internal/global/container"
	"civic-project-system/internal/global/database"
	"civic-project-system/internal/global/logger"
	"civic-project-system/internal/global/middleware"
	"civic-project-system/internal/global/objectstore"
	"civic-project-system/internal/global/sentry"
	"civic-project-system/internal/model"
	"civic-project-system/internal/module"
	"civic-project-system/internal/store"
	"civic-project-system/internal/store/gormstore"
	"civic-project-system/internal/store/memstore"
	"civic-project-system/tools"

	"github.com/gin-gonic/gin"
)

var (
	log *slog.Logger
	c   *container.Container
)

const localRoute = "/uploads"

func Init() {
	config.Init()
	log = logger.New("Server")

	if err := sentry.Init(); err != nil {
		log.Error("sentry init failed", "error", err)
	}

	ctx := context.Background()
	cfg := config.Get()
	st := tools.Must(newStore())
	objects := tools.Must(newObjectStore(ctx, cfg))
	kv := tools.Must(newCache(ctx, cfg))
	tools.PanicOnErr(st.Tags().Seed(ctx, model.TagNames))

	c = container.New(cfg, st, objects, kv, logger.New("Cache"))
	log.Info("clients ready",
		"database", cfg.Storage.Database,
		"objects", cfg.Storage.Driver,
		"cache", cfg.Cache.Driver,
	)
}

func newStore() (store.Store, error) {
	switch config.Get().Storage.Database {
	case "memory":
		return memstore.New(), nil
	case "mysql", "":
		db, err := database.Init()
		if err != nil {
			return nil, err
		}
		return gormstore.New(db), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", config.Get().Storage.Database)
}

func newObjectStore(ctx context.Context, cfg *config.Config) (objectstore.Store, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return objectstore.NewS3(ctx, cfg.S3)
	case "local", "":
		if err := os.MkdirAll(cfg.Local.Dir, 0o755); err != nil {
			return nil, err
		}
		return objectstore.NewLocal(cfg.Local.Dir, cfg.Local.BaseURL, cfg.Local.Prefix), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Driver {
	case "memory":
		return cache.NewMemory(), nil
	case "redis", "":
		return cache.NewRedis(ctx, cfg.Redis)
	}
	return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
}

// Router 初始化全部模块并挂载路由
func Router(c *container.Container) *gin.Engine {
	cfg := c.Config
	gin.SetMode(string(cfg.Mode))
	r := gin.New()

	switch cfg.Mode {
	case config.ModeRelease:
		r.Use(middleware.Logger(logger.Get()))
	case config.ModeDebug:
		r.Use(gin.Logger())
	}
	r.Use(middleware.RequestID(), sentry.Middleware(), middleware.SentryEnrichIP())
	r.Use(middleware.Cors())
	r.Use(middleware.Recovery())

	if cfg.Storage.Driver == "local" {
		r.Static(localRoute, cfg.Local.Dir)
	}

	group := r.Group("/" + cfg.Prefix)
	for _, m := range module.Modules {
		m.Init(c)
		m.InitRouter(group)
	}
	return r
}

// Run 启动 HTTP 服务与媒体扫描，收到退出信号后优雅关闭
func Run() {
	cfg := c.Config
	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: Router(c),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go c.Media.RunSweeper(ctx)

	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	sentry.Flush(2 * time.Second)
}
