package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leadervibe/internal/config"
	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/handler"
	"github.com/leadervibe/internal/imagestore"
	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/mailer"
	"github.com/leadervibe/internal/router"
	"github.com/leadervibe/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		URL:    cfg.DatabaseURL,
		Silent: cfg.GinMode == gin.ReleaseMode,
	}); err != nil {
		logging.Error().Err(err).Msg("failed to initialize database")
		os.Exit(1)
	}

	created, err := db.EnsureAdmin(db.DB, cfg.SuperRootUserName, cfg.SuperRootEmail, cfg.SuperRootPassword)
	if err != nil {
		logging.Error().Err(err).Msg("failed to ensure admin account")
		os.Exit(1)
	}
	if created {
		logging.Info().Str("email", cfg.SuperRootEmail).Msg("admin account created")
	}

	store, err := newImageStore(cfg)
	if err != nil {
		logging.Error().Err(err).Msg("failed to configure image store")
		os.Exit(1)
	}

	api := handler.NewAPI(handler.Dependencies{
		DB:             db.DB,
		Store:          store,
		Mailer:         mailer.New(cfg.ResendAPIKey, cfg.EmailFrom),
		Tokens:         service.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		AdminEmail:     cfg.AdminEmail,
		UploadMaxBytes: cfg.UploadMaxBytes,
		PublicBaseURL:  cfg.PublicBaseURL,
	})

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, router.Options{
		SessionSecret:  cfg.SessionSecret,
		AllowedOrigins: cfg.AllowedOrigins(),
		SecureCookie:   cfg.GinMode == gin.ReleaseMode,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info().Str("addr", cfg.ListenAddr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("failed to run server")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// newImageStore 根据配置选择图片存储，Cloudinary 外层包一层熔断器
func newImageStore(cfg config.AppConfig) (imagestore.Store, error) {
	if cfg.ImageStoreDriver == "memory" {
		logging.Warn().Msg("using in-memory image store, uploads are not persisted")
		return imagestore.NewMemory(""), nil
	}

	cloud, err := imagestore.NewCloudinary(imagestore.CloudinaryConfig{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryFolder,
	})
	if err != nil {
		return nil, err
	}
	return imagestore.NewGuarded(cloud, imagestore.BreakerConfig{
		Name:             "cloudinary",
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}), nil
}
