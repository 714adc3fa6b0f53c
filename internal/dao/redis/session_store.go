package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"zalo_connector/pkg/aes"
	"zalo_connector/pkg/constants"
)

// StoredSession 持久化的会话凭证记录
// 每个账号一条，重新登录整体覆盖；登出、监听器耗尽或校验失败时删除
type StoredSession struct {
	AccountId          string    `json:"accountId"`          // 平台账号 ID
	LoginTime          time.Time `json:"loginTime"`          // 登录时间
	IsActive           bool      `json:"isActive"`           // 是否活跃
	DeviceId           string    `json:"deviceId"`           // 设备标识（imei）
	ClientId           string    `json:"clientId"`           // 客户端标识（userAgent）
	CredentialMaterial []byte    `json:"credentialMaterial"` // 凭证数据（cookie），内存中为明文
}

// IsValid 校验会话是否可用于恢复连接
// 凭证数据、设备标识、客户端标识三者缺一不可
func (s *StoredSession) IsValid() bool {
	return s != nil && len(s.CredentialMaterial) > 0 && s.DeviceId != "" && s.ClientId != ""
}

// storedSessionRecord Redis 中的实际存储形态，凭证字段为 AES-GCM 密文
type storedSessionRecord struct {
	AccountId          string    `json:"accountId"`
	LoginTime          time.Time `json:"loginTime"`
	IsActive           bool      `json:"isActive"`
	DeviceId           string    `json:"deviceId"`
	ClientId           string    `json:"clientId"`
	CredentialMaterial string    `json:"credentialMaterial"`
}

// SessionStore 会话凭证的 Redis 存储
// 纯 CRUD，不含业务逻辑；后端不可达时所有操作降级为 no-op/空结果，
// 调用方必须把"没有会话"和"从未登录"同等对待
type SessionStore struct {
	client *redis.Client
	key    []byte // 凭证加密密钥
}

// NewSessionStore 创建会话存储
// secret 来自配置，用于派生凭证加密密钥
func NewSessionStore(client *redis.Client, secret string) *SessionStore {
	return &SessionStore{
		client: client,
		key:    aes.DeriveKey(secret),
	}
}

// Save 持久化会话，同账号整体覆盖
func (s *SessionStore) Save(ctx context.Context, sess *StoredSession) error {
	encrypted, err := aes.Encrypt(sess.CredentialMaterial, s.key)
	if err != nil {
		zap.L().Error("encrypt session credential failed", zap.Error(err))
		return err
	}
	record := storedSessionRecord{
		AccountId:          sess.AccountId,
		LoginTime:          sess.LoginTime,
		IsActive:           sess.IsActive,
		DeviceId:           sess.DeviceId,
		ClientId:           sess.ClientId,
		CredentialMaterial: encrypted,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, constants.SESSION_KEY_PREFIX+sess.AccountId, data, 0).Err(); err != nil {
		// 后端不可达降级为 no-op
		zap.L().Warn("session store unreachable, save skipped", zap.String("accountId", sess.AccountId), zap.Error(err))
	}
	return nil
}

// Load 读取会话；accountId 为空时返回第一个已知会话
// 会话不存在或后端不可达均返回 (nil, nil)
func (s *SessionStore) Load(ctx context.Context, accountId string) (*StoredSession, error) {
	if accountId == "" {
		sessions, _ := s.ListAll(ctx)
		if len(sessions) == 0 {
			return nil, nil
		}
		return sessions[0], nil
	}

	data, err := s.client.Get(ctx, constants.SESSION_KEY_PREFIX+accountId).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("session store unreachable, load skipped", zap.String("accountId", accountId), zap.Error(err))
		}
		return nil, nil
	}
	return s.decode(data)
}

// ListAll 返回所有已知会话
// 后端不可达时返回空列表
func (s *SessionStore) ListAll(ctx context.Context) ([]*StoredSession, error) {
	var cursor uint64
	var sessions []*StoredSession
	for {
		keys, next, err := s.client.Scan(ctx, cursor, constants.SESSION_KEY_PREFIX+"*", 100).Result()
		if err != nil {
			zap.L().Warn("session store unreachable, list skipped", zap.Error(err))
			return nil, nil
		}
		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}
			sess, err := s.decode(data)
			if err != nil {
				zap.L().Warn("skip undecodable session record", zap.String("key", key), zap.Error(err))
				continue
			}
			sessions = append(sessions, sess)
		}
		cursor = next
		if cursor == 0 {
			return sessions, nil
		}
	}
}

// Delete 删除会话，键不存在或后端不可达均静默
func (s *SessionStore) Delete(ctx context.Context, accountId string) error {
	if err := s.client.Del(ctx, constants.SESSION_KEY_PREFIX+accountId).Err(); err != nil {
		zap.L().Warn("session store unreachable, delete skipped", zap.String("accountId", accountId), zap.Error(err))
	}
	return nil
}

// decode 反序列化并解密存储记录
func (s *SessionStore) decode(data []byte) (*StoredSession, error) {
	var record storedSessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	material, err := aes.Decrypt(record.CredentialMaterial, s.key)
	if err != nil {
		return nil, err
	}
	return &StoredSession{
		AccountId:          record.AccountId,
		LoginTime:          record.LoginTime,
		IsActive:           record.IsActive,
		DeviceId:           record.DeviceId,
		ClientId:           record.ClientId,
		CredentialMaterial: material,
	}, nil
}
