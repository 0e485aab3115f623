package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/studycycle/internal/config"
	"github.com/studycycle/internal/db"
	"github.com/studycycle/internal/logger"
	"github.com/studycycle/internal/router"
	"github.com/studycycle/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseDSN,
	}); err != nil {
		zlog.Fatal("failed to initialize database", zap.String("driver", cfg.DatabaseDriver), zap.Error(err))
	}

	created, err := db.EnsureUser(db.DB, cfg.SeedUserName, cfg.SeedUserPassword)
	if err != nil {
		zlog.Fatal("failed to seed user", zap.Error(err))
	}
	if created {
		zlog.Info("seed user created", zap.String("username", cfg.SeedUserName))
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(db.DB, router.Options{
		SessionSecret:   cfg.SessionSecret,
		Tokens:          service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Logger:          zlog,
		DefaultLanguage: cfg.DefaultLanguage,
	})

	zlog.Info("server starting", zap.String("addr", cfg.ListenAddr), zap.String("driver", cfg.DatabaseDriver))
	if err := r.Run(cfg.ListenAddr); err != nil {
		zlog.Fatal("failed to run server", zap.Error(err))
	}
}
