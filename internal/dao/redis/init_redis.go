// Package redis 提供 Redis 客户端初始化、缓存服务和会话凭证存储
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"strconv"

	"zalo_connector/internal/config"

	"github.com/redis/go-redis/v9"
)

// Init 根据配置创建 Redis 客户端
// 客户端由调用方持有并注入到各组件，不使用包级单例
func Init() *redis.Client {
	conf := config.GetConfig()
	addr := conf.RedisConfig.Host + ":" + strconv.Itoa(conf.RedisConfig.Port)

	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.RedisConfig.Password,
		DB:       conf.RedisConfig.Db,

		// 连接池配置
		PoolSize:     50,
		MinIdleConns: 15,
	})
}
