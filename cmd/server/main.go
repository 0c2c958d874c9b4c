package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tonk-service/internal/api"
	"tonk-service/internal/config"
	"tonk-service/internal/repo"
	"tonk-service/internal/service"
	"tonk-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.LoadConfig(configPath)
	cfg := config.GlobalConfig

	logger.InitLogger(cfg.Server.Mode, cfg.Server.LogLevel)
	defer logger.Log.Sync()

	repo.InitDB()
	repo.InitRedis()

	services := service.NewContainer(repo.DB, repo.RDB, cfg.Game, cfg.Admin)
	if err := services.Start(ctx); err != nil {
		logger.Log.Fatal("failed to start services", zap.Error(err))
	}

	go func() {
		if err := services.Lobby.Run(ctx); err != nil {
			logger.Log.Error("lobby broadcaster stopped", zap.Error(err))
		}
	}()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.RegisterRoutes(r, services)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Log.Info("tonk server listening",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.Int64s("stakes", cfg.Game.Stakes))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("shutdown failed", zap.Error(err))
		}
	case err := <-serverErr:
		logger.Log.Fatal("server failed", zap.Error(err))
	}
}
