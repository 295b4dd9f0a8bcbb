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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/25Devmaker/coursehub/config"
	"github.com/25Devmaker/coursehub/internal/api/handler"
	"github.com/25Devmaker/coursehub/internal/api/router"
	"github.com/25Devmaker/coursehub/internal/repository"
	"github.com/25Devmaker/coursehub/internal/service"
	"github.com/25Devmaker/coursehub/pkg/certificate"
	"github.com/25Devmaker/coursehub/pkg/database"
	"github.com/25Devmaker/coursehub/pkg/jwt"
	applogger "github.com/25Devmaker/coursehub/pkg/logger"
	"github.com/25Devmaker/coursehub/pkg/mailer"
	"github.com/25Devmaker/coursehub/pkg/metrics"
	"github.com/25Devmaker/coursehub/pkg/redis"
	"github.com/25Devmaker/coursehub/pkg/scheduler"
	"github.com/25Devmaker/coursehub/pkg/tracing"
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

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Duration("auto_approve_after", cfg.Enrollment.AutoApproveAfter),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、限流与扫描锁将不可用", zap.Error(err))
		rdb = nil
	}
	// 接口变量只在 Redis 可用时赋值，避免带类型的 nil
	var (
		blacklist service.TokenBlacklist
		locker    service.Locker
	)
	if rdb != nil {
		defer rdb.Close()
		blacklist = rdb
		locker = rdb
	}

	// 5. 链路追踪与指标
	shutdownTracing, err := tracing.Setup(ctx, &cfg.Tracing, logger)
	if err != nil {
		logger.Fatal("初始化链路追踪失败", zap.Error(err))
	}
	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	// 6. 依赖注入: Repository → Service → Handler
	clock := scheduler.RealClock{}
	timers := scheduler.NewTimerRegistry(clock)
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)

	svc := service.NewService(service.Deps{
		Config:    cfg,
		Repo:      repo,
		JWT:       jwtMgr,
		Blacklist: blacklist,
		Timers:    timers,
		Clock:     clock,
		Mailer:    mailer.New(&cfg.Mail, logger),
		Renderer:  certificate.NewPDFRenderer(cfg.Certificate.Issuer, cfg.Certificate.BackgroundImage),
		Logger:    logger,
	})
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 8. HTTP 服务器与自动审批任务共享生命周期
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务器异常: %w", err)
		}
		return nil
	})

	if cfg.Enrollment.AutoApproverEnabled {
		approver := service.NewAutoApprover(&cfg.Enrollment, repo, svc.Enrollment, clock, locker, logger)
		g.Go(func() error {
			return approver.Start(gctx)
		})
	}

	// 9. 收到信号或任一任务失败时优雅关闭
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("开始优雅关闭...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("服务器关闭异常", zap.Error(err))
		}
		timers.Stop()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("链路追踪关闭异常", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("服务异常退出", zap.Error(err))
	}
	logger.Info("服务器已关闭")
}
