package constants

import "time"

const (
	CHANNEL_SIZE = 100 // 事件通道大小

	// 登录流程
	LOGIN_TIMEOUT        = 120 * time.Second // 扫码登录超时时间
	ACCOUNT_ID_MIN_LEN   = 8                 // 平台账号 ID 最小长度
	ACCOUNT_ID_MAX_LEN   = 20                // 平台账号 ID 最大长度

	// 连接保活与重连
	KEEPALIVE_INTERVAL    = 60 * time.Second // 保活探测间隔
	RECONNECT_BASE_DELAY  = 2 * time.Second  // 重连基础延迟，实际延迟 = base * 次数
	MAX_RECONNECT_ATTEMPT = 5                // 最大重连次数，超过则整体重置

	// 同步引擎批处理
	GROUP_BATCH_SIZE  = 20                     // 每批并发同步的群数量
	MEMBER_BATCH_SIZE = 10                     // 每批并发同步的成员数量
	BATCH_DELAY       = 500 * time.Millisecond // 批间隔，规避平台限流

	// Redis key 前缀
	SESSION_KEY_PREFIX = "zalo:session:" // 会话凭证存储前缀
	LABEL_CACHE_PREFIX = "label_list"    // 标签列表缓存 key
)
