package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"zalo_connector/internal/config"
	"zalo_connector/internal/dao/mysql"
	myredis "zalo_connector/internal/dao/redis"
	"zalo_connector/internal/gateway/websocket"
	"zalo_connector/internal/handler"
	"zalo_connector/internal/https_server"
	"zalo_connector/internal/infrastructure/logger"
	"zalo_connector/internal/platform"
	"zalo_connector/internal/service"
	"zalo_connector/pkg/util/jwt"
	"zalo_connector/pkg/util/snowflake"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	repos := mysql.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	redisClient := myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 和雪花节点
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	snowflake.Init()

	// 6. 取平台驱动
	// 驱动由协议实现包在 init 中注册，主程序只按配置的名字取用
	client, err := platform.Open(conf.ZaloConfig.Driver)
	if err != nil {
		zap.L().Fatal("平台驱动不可用", zap.Error(err))
	}

	// 7. 初始化事件推送网关和 Service 层（依赖注入）
	hub := websocket.NewHub()
	services := service.NewServices(conf, repos, redisClient, client, hub)
	zap.L().Info("Service 层初始化成功")

	// 8. 恢复已持久化的会话
	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), 30*time.Second)
	services.Login.RestoreAll(restoreCtx)
	restoreCancel()

	// 9. 初始化并启动 HTTP 服务器
	engine := https_server.Init(handler.NewHandlers(services, hub))
	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		if err := engine.Run(addr); err != nil {
			zap.L().Fatal("HTTP 服务器退出", zap.Error(err))
		}
	}()
	zap.L().Info("连接器已启动",
		zap.String("host", conf.MainConfig.Host),
		zap.Int("port", conf.MainConfig.Port))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭连接器...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	services.Login.Shutdown(shutdownCtx)
	services.Close()
	zap.L().Info("连接器已关闭")
}
