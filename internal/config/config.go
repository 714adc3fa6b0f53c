// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // HTTP 服务监听地址
	Port    int    `toml:"port"`    // HTTP 服务监听端口
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// RedisConfig Redis 连接配置
// Redis 承载会话凭证存储和标签/快捷语缓存
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
	Db       int    `toml:"db"`
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 事件导出配置
// messageMode 为 "kafka" 时入库后的规范化事件写入 Kafka，否则走进程内通道推给 ws 网关
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // "channel" 或 "kafka"
	HostPort    string        `toml:"hostPort"`    // Kafka 地址，如 "localhost:9092"
	EventTopic  string        `toml:"eventTopic"`  // 规范化事件主题
	Timeout     time.Duration `toml:"timeout"`     // 写入超时（秒）
}

// JWTConfig 面板接口认证配置
type JWTConfig struct {
	Secret            string `toml:"secret"`            // JWT 签名密钥
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // Access Token 有效期（分钟）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 节点 ID，范围 0-1023
}

// ZaloConfig 平台连接相关配置
type ZaloConfig struct {
	Driver               string `toml:"driver"`               // 平台驱动名，空时取唯一已注册驱动
	LoginTimeout         int    `toml:"loginTimeout"`         // 扫码登录超时（秒），默认 120
	KeepAliveInterval    int    `toml:"keepAliveInterval"`    // 保活探测间隔（秒），默认 60
	ReconnectBaseDelay   int    `toml:"reconnectBaseDelay"`   // 重连基础延迟（秒），默认 2
	MaxReconnectAttempts int    `toml:"maxReconnectAttempts"` // 最大重连次数，默认 5
	GroupBatchSize       int    `toml:"groupBatchSize"`       // 群同步每批数量，默认 20
	MemberBatchSize      int    `toml:"memberBatchSize"`      // 成员同步每批数量，默认 10
	BatchDelayMs         int    `toml:"batchDelayMs"`         // 批间隔（毫秒），默认 500
	CredentialSecret     string `toml:"credentialSecret"`     // 凭证加密密钥
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
	ZaloConfig      `toml:"zaloConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	if config == nil {
		config = new(Config)
	}
	// 候选配置文件路径（优先加载本地配置）
	paths := []string{
		"configs/config_local.toml",
		"configs/config.toml",
		"../../configs/config_local.toml",
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			applyDefaults(config)
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// applyDefaults 为未配置的平台连接参数填充默认值
func applyDefaults(c *Config) {
	if c.ZaloConfig.LoginTimeout == 0 {
		c.ZaloConfig.LoginTimeout = 120
	}
	if c.ZaloConfig.KeepAliveInterval == 0 {
		c.ZaloConfig.KeepAliveInterval = 60
	}
	if c.ZaloConfig.ReconnectBaseDelay == 0 {
		c.ZaloConfig.ReconnectBaseDelay = 2
	}
	if c.ZaloConfig.MaxReconnectAttempts == 0 {
		c.ZaloConfig.MaxReconnectAttempts = 5
	}
	if c.ZaloConfig.GroupBatchSize == 0 {
		c.ZaloConfig.GroupBatchSize = 20
	}
	if c.ZaloConfig.MemberBatchSize == 0 {
		c.ZaloConfig.MemberBatchSize = 10
	}
	if c.ZaloConfig.BatchDelayMs == 0 {
		c.ZaloConfig.BatchDelayMs = 500
	}
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
		applyDefaults(config)
	}
	return config
}
