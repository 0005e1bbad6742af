package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/jeopardy-stats-backend/api"
	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/config"
	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/database"
	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/health"
	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/shutdown"
	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/startup"
	"github.com/SlpAus/jeopardy-stats-backend/pkg/lifecycle"
	"github.com/SlpAus/jeopardy-stats-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env用于本地开发时覆盖配置，不存在则忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败，无法启动: %v", err))
	}

	token.GenerateSecretKey()
	database.InitDB()
	database.InitRedis()

	// 执行应用启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 生命周期管理器协调后台服务的优雅退出
	manager := lifecycle.NewManager()

	healthHandle, err := manager.NewServiceHandle("redis-health-checker")
	if err != nil {
		panic(err)
	}
	go health.StartRedisHealthCheck(healthHandle)

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r, cfg)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 阻塞等待停机信号
	coordinator := shutdown.NewCoordinator(manager)
	coordinator.ListenForSignalsAndShutdown(server)
}
