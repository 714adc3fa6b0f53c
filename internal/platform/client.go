// Package platform 定义外部聊天平台客户端的能力边界
// 具体协议实现由宿主应用提供，连接器只依赖这里声明的窄接口，
// 不耦合任何具体的平台 SDK
package platform

import (
	"context"
	"errors"
)

// 平台调用的类型化错误
// 具体客户端实现需用 %w 包装以便 errors.Is 判定
var (
	// ErrRecipientInvalid 接收方无效或无权限，触发一次备用接收方重试
	ErrRecipientInvalid = errors.New("platform: recipient invalid")
	// ErrSessionExpired 平台拒绝当前凭证，会话需要重新登录
	ErrSessionExpired = errors.New("platform: session expired")
	// ErrConnectionClosed 连接已关闭
	ErrConnectionClosed = errors.New("platform: connection closed")
)

// Credentials 平台登录凭证
type Credentials struct {
	DeviceId string // 设备标识（imei）
	ClientId string // 客户端标识（userAgent）
	Material []byte // 凭证数据（cookie 原始内容）
}

// Client 平台客户端入口
type Client interface {
	// Login 用已有凭证建立连接，用于凭证导入和会话恢复
	Login(ctx context.Context, creds Credentials) (Conn, error)
	// LoginQR 发起扫码登录
	// 二维码生命周期事件和凭证通过 onEvent 回调上报；
	// 连接建立后调用返回，与 GotCredentials 事件的先后顺序不保证
	LoginQR(ctx context.Context, deviceId, clientId string, onEvent func(QREvent)) (Conn, error)
}

// Conn 已认证的平台连接
type Conn interface {
	// OwnId 返回当前登录账号的平台 ID
	OwnId() string
	// GetUserInfo 拉取用户资料
	GetUserInfo(ctx context.Context, id string) (*UserProfile, error)
	// GetGroupInfo 批量拉取群详情，key 为群 ID
	GetGroupInfo(ctx context.Context, ids ...string) (map[string]*GroupProfile, error)
	// GetAllGroups 拉取本账号的全部群 ID
	GetAllGroups(ctx context.Context) ([]string, error)
	// SendMessage 发送消息到指定线程
	SendMessage(ctx context.Context, payload *MessagePayload, threadId string, threadType ThreadType) (*SendResult, error)
	// Undo 撤回已发送的消息
	Undo(ctx context.Context, dest MessageDest) error
	// DeleteMessage 删除消息，onlyMe 为 true 时仅本端删除
	DeleteMessage(ctx context.Context, dest MessageDest, onlyMe bool) error
	// ForwardMessage 转发消息到多个线程
	ForwardMessage(ctx context.Context, payload *MessagePayload, threadIds []string, threadType ThreadType) error
	// Listener 返回事件监听器
	Listener() Listener
	// Logout 注销并关闭连接
	Logout(ctx context.Context) error
}

// Listener 平台事件监听器
// 单一逻辑事件流：message / reaction / error
type Listener interface {
	OnMessage(handler func(*MessageEvent))
	OnReaction(handler func(*ReactionEvent))
	OnError(handler func(error))
	// Start 开始监听，阻塞直到监听器停止或失败
	Start() error
	// Stop 停止监听
	Stop()
}
