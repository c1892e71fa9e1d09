package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Luolin0826/bodian-gateway/config"
	"github.com/Luolin0826/bodian-gateway/internal/api/handler"
	"github.com/Luolin0826/bodian-gateway/internal/api/router"
	"github.com/Luolin0826/bodian-gateway/internal/permission"
	"github.com/Luolin0826/bodian-gateway/internal/repository"
	"github.com/Luolin0826/bodian-gateway/internal/service"
	"github.com/Luolin0826/bodian-gateway/internal/session"
	"github.com/Luolin0826/bodian-gateway/internal/upstream"
	"github.com/Luolin0826/bodian-gateway/pkg/database"
	"github.com/Luolin0826/bodian-gateway/pkg/jwt"
	applogger "github.com/Luolin0826/bodian-gateway/pkg/logger"
	"github.com/Luolin0826/bodian-gateway/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("网关启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接审计数据库（可选：未启用时审计功能降级为空操作）
	var db *gorm.DB
	if cfg.Database.Enabled {
		db, err = database.NewDB(&cfg.Database, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		logger.Info("审计数据库连接成功")

		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
	} else {
		logger.Info("审计数据库未启用，登录日志与审计查询返回空")
	}

	// 4. 连接 Redis（可选：连接失败时会话落进程内存，仅适合单实例）
	var storage session.Storage
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，会话降级为进程内存储", zap.Error(err))
		rdb = nil
		storage = session.NewMemoryStorage()
	} else {
		storage = session.NewRedisStorage(rdb)
	}

	// 5. 核心组件
	jwtMgr := jwt.NewManager(&cfg.Session)
	store := session.NewStore(storage, cfg.Session.TTL)
	resolver := permission.NewResolver(permission.DefaultMenuTree)
	client := upstream.NewClient(&cfg.Upstream, nil, logger)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, store, resolver, client, logger)
	h := handler.NewHandler(cfg, svc, resolver, jwtMgr, client, logger)

	// 会话被后台终止时的全局记录；实际清理由请求链路携带会话完成
	client.SetTerminationHook(func(ctx context.Context, reason upstream.TerminationReason) {
		logger.Info("上游终止了登录态", zap.String("reason", string(reason)))
	})

	// 7. 初始化路由
	engine := router.Setup(cfg, h, svc, resolver, jwtMgr, store, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // 需覆盖上游 30s 超时与一次重试
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 停止草稿协调器，挂起的自动保存一并取消
	svc.Draft.Close()

	if db != nil {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("网关已关闭")
}
