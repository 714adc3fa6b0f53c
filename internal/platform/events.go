package platform

import "time"

// ThreadType 平台线程类型
// 单聊线程 ID 是对端用户 ID，群聊线程 ID 是群组 ID
type ThreadType int8

const (
	ThreadTypeUser  ThreadType = 0 // 单聊
	ThreadTypeGroup ThreadType = 1 // 群聊
)

// QREventType 扫码登录回调事件类型（闭集）
type QREventType int8

const (
	QRCodeGenerated  QREventType = iota // 二维码已生成
	QRCodeExpired                       // 二维码过期
	QRCodeDeclined                      // 用户拒绝登录
	QRGotCredentials                    // 平台下发凭证
)

// QREvent 扫码登录回调事件
type QREvent struct {
	Type        QREventType
	Code        string       // 二维码内容，仅 QRCodeGenerated 携带
	Credentials *Credentials // 凭证数据，仅 QRGotCredentials 携带
}

// MessageEvent 入站消息事件
type MessageEvent struct {
	MsgId       string     // 平台消息 ID，全局唯一
	ClientMsgId string     // 客户端关联 ID，本地发送回流时携带
	SenderId    string     // 发送者平台用户 ID
	ThreadId    string     // 线程 ID（单聊为对端用户 ID，群聊为群组 ID）
	ThreadType  ThreadType // 线程类型
	Content     string     // 文本内容
	Attachment  *AttachmentInfo // 结构化内容，可为空
	SentAt      time.Time  // 平台侧发送时间
	Raw         string     // 原始事件 JSON
}

// AttachmentInfo 结构化消息的附件描述
// Title/Description 在消息无纯文本时充当兜底文本
type AttachmentInfo struct {
	Url         string
	FileName    string
	MimeType    string
	Title       string
	Description string
	FileSize    int64
	Width       int
	Height      int
	Duration    int    // 毫秒
	Metadata    string // 其余字段的原始 JSON
}

// ReactionEvent 入站表态事件
type ReactionEvent struct {
	MsgId      string
	UserId     string
	Icon       string
	Type       int
	ThreadId   string
	ThreadType ThreadType
	At         time.Time
}

// UserProfile 平台用户资料
type UserProfile struct {
	Id          string
	DisplayName string
	Alias       string
	AvatarUrl   string
	Birthday    time.Time // 零值表示未知
	IsFriend    bool
	LastOnline  time.Time // 零值表示未知
	Raw         string    // 原始资料 JSON
}

// GroupProfile 平台群组详情
type GroupProfile struct {
	Id             string
	Name           string
	OwnerId        string
	TotalMembers   int
	InviteLink     string
	Settings       string // 群设置原始 JSON
	CreatedAt      time.Time
	MemberVersions []MemberVersion // 成员版本列表，增量同步据此做差集
}

// MemberVersion 群成员的 (用户ID, 资料版本) 对
type MemberVersion struct {
	UserId  string
	Version string
}

// MessagePayload 出站消息载荷
type MessagePayload struct {
	Text        string
	ClientMsgId string          // 本地生成的关联 ID
	Attachment  *AttachmentInfo // 附件消息时非空
}

// SendResult 发送结果
type SendResult struct {
	MsgId string // 平台分配的消息 ID
}

// MessageDest 撤回/删除操作的消息定位
type MessageDest struct {
	MsgId      string
	ThreadId   string
	ThreadType ThreadType
}
