// Package service 提供服务层聚合与装配
package service

import (
	"time"

	"github.com/redis/go-redis/v9"

	"zalo_connector/internal/config"
	"zalo_connector/internal/dao/mysql"
	myredis "zalo_connector/internal/dao/redis"
	"zalo_connector/internal/infrastructure/mq"
	"zalo_connector/internal/platform"
	"zalo_connector/internal/service/command"
	"zalo_connector/internal/service/ingest"
	"zalo_connector/internal/service/label"
	"zalo_connector/internal/service/login"
	"zalo_connector/internal/service/outbound"
	"zalo_connector/internal/service/quickmsg"
	"zalo_connector/internal/service/supervisor"
	"zalo_connector/internal/service/syncer"
)

// Services 聚合所有服务实例
// 作为依赖注入容器，Handler 层通过此结构访问业务逻辑
type Services struct {
	Registry *supervisor.Registry
	Login    *login.Service
	Ingest   *ingest.Service
	Syncer   *syncer.Service
	Outbound *outbound.Service
	Command  *command.Service
	Label    *label.Service
	QuickMsg *quickmsg.Service
	Broker   mq.EventBroker
	Sessions *myredis.SessionStore
}

// NewServices 按依赖顺序装配服务层
// client 是平台客户端实现，由宿主在启动时注入；
// sink 是事件出口的进程内接收方（channel 模式下为 websocket 网关）
func NewServices(cfg *config.Config, repos *mysql.Repositories, redisClient *redis.Client,
	client platform.Client, sink mq.BroadcastSink) *Services {

	registry := supervisor.NewRegistry()
	sessions := myredis.NewSessionStore(redisClient, cfg.ZaloConfig.CredentialSecret)
	cache := myredis.NewRedisCache(redisClient, 4, 64)

	broker := mq.NewBroker(cfg.KafkaConfig, sink)
	broker.Start()

	ingestSvc := ingest.NewService(repos, registry, broker)
	outboundSvc := outbound.NewService(repos, registry)
	labelSvc := label.NewService(repos, cache)
	quickSvc := quickmsg.NewService(repos)
	commandSvc := command.NewService(labelSvc, quickSvc, outboundSvc)
	ingestSvc.SetCommandEngine(commandSvc)

	syncSvc := syncer.NewService(repos, registry, syncer.Options{
		GroupBatchSize:  cfg.ZaloConfig.GroupBatchSize,
		MemberBatchSize: cfg.ZaloConfig.MemberBatchSize,
		BatchDelay:      time.Duration(cfg.ZaloConfig.BatchDelayMs) * time.Millisecond,
	})

	loginSvc := login.NewService(client, sessions, registry, ingestSvc, syncSvc, login.Options{
		LoginTimeout: time.Duration(cfg.ZaloConfig.LoginTimeout) * time.Second,
		Supervisor: supervisor.Options{
			KeepAliveInterval: time.Duration(cfg.ZaloConfig.KeepAliveInterval) * time.Second,
			ReconnectBase:     time.Duration(cfg.ZaloConfig.ReconnectBaseDelay) * time.Second,
			MaxAttempts:       cfg.ZaloConfig.MaxReconnectAttempts,
		},
	})

	return &Services{
		Registry: registry,
		Login:    loginSvc,
		Ingest:   ingestSvc,
		Syncer:   syncSvc,
		Outbound: outboundSvc,
		Command:  commandSvc,
		Label:    labelSvc,
		QuickMsg: quickSvc,
		Broker:   broker,
		Sessions: sessions,
	}
}

// Close 释放服务层资源
func (s *Services) Close() {
	s.Ingest.Close()
	_ = s.Broker.Close()
}
