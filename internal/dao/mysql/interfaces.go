// Package mysql 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package mysql

import (
	"time"

	"zalo_connector/internal/model"
)

// ==================== Repository 接口定义 ====================
// 约定：所有 FindByXxx 单行查询在记录不存在时返回 (nil, nil)，不视为错误

// UserRepository 用户镜像数据访问接口
type UserRepository interface {
	// FindByUuid 根据平台用户 ID 查找用户
	FindByUuid(uuid string) (*model.UserInfo, error)
	// ExistingUuids 返回入参中已存在本地行的用户 ID 子集
	ExistingUuids(uuids []string) ([]string, error)
	// Upsert 按 uuid 幂等写入，已存在时机会性更新资料字段
	Upsert(user *model.UserInfo) error
}

// GroupRepository 群组镜像数据访问接口
type GroupRepository interface {
	// FindByUuid 根据平台群组 ID 查找群组
	FindByUuid(uuid string) (*model.GroupInfo, error)
	// FindAll 查找所有群组
	FindAll() ([]model.GroupInfo, error)
	// Upsert 按 uuid 幂等写入群组
	Upsert(group *model.GroupInfo) error
}

// GroupMemberRepository 群成员数据访问接口
// 退群/重新入群是同一行的状态翻转，不产生新行
type GroupMemberRepository interface {
	// Upsert 按 (群, 用户) 幂等写入；已离群的行会被重新激活
	Upsert(member *model.GroupMember) error
	// MarkLeft 标记成员离群
	MarkLeft(groupUuid, userUuid string) error
	// FindUserUuidsByGroup 返回群内已知成员的用户 ID（含已离群）
	FindUserUuidsByGroup(groupUuid string) ([]string, error)
}

// ConversationRepository 会话数据访问接口
type ConversationRepository interface {
	// FindByUuid 根据推导出的会话 ID 查找会话
	FindByUuid(uuid string) (*model.Conversation, error)
	// Upsert 按 uuid 幂等写入；已存在时不覆盖置顶/归档等本地标志
	Upsert(conv *model.Conversation) error
	// UpdateLastMessage 更新会话的最新消息指针
	UpdateLastMessage(uuid, messageUuid string, at time.Time) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// FindByUuid 根据平台消息 ID 查找消息
	FindByUuid(uuid string) (*model.Message, error)
	// ExistsByUuid 平台消息 ID 是否已入库
	ExistsByUuid(uuid string) (bool, error)
	// ExistsByClientMsgId 客户端关联 ID 是否已入库（本地发送与回流事件的次级去重键）
	ExistsByClientMsgId(clientMsgId string) (bool, error)
	// Create 写入消息
	Create(msg *model.Message) error
	// MarkUndone 标记消息已撤回
	MarkUndone(uuid string) error
}

// AttachmentRepository 附件数据访问接口
type AttachmentRepository interface {
	// Create 写入附件
	Create(att *model.Attachment) error
}

// ReactionRepository 表态数据访问接口
type ReactionRepository interface {
	// Upsert 按 (消息, 用户) 幂等写入，后到覆盖 icon/type
	Upsert(reaction *model.Reaction) error
}

// LabelRepository 标签数据访问接口
type LabelRepository interface {
	FindByUuid(uuid string) (*model.Label, error)
	// FindByNameFold 按名称大小写不敏感精确匹配
	FindByNameFold(name string) (*model.Label, error)
	FindAll() ([]model.Label, error)
	Create(label *model.Label) error
	Update(label *model.Label) error
	Delete(uuid string) error
	// AddConversationLabel 建立会话-标签关联，重复调用幂等
	AddConversationLabel(conversationId, labelUuid string) error
	// RemoveConversationLabel 解除会话-标签关联
	RemoveConversationLabel(conversationId, labelUuid string) error
	// FindLabelsByConversation 查询会话已关联的标签
	FindLabelsByConversation(conversationId string) ([]model.Label, error)
}

// SyncStatusRepository 会话同步状态数据访问接口
type SyncStatusRepository interface {
	// MarkSyncing 标记会话进入同步周期，行不存在时创建
	MarkSyncing(conversationId string) error
	// MarkIdle 标记会话同步完成并记录最后入库消息
	MarkIdle(conversationId, lastMessageId string) error
	// MarkFailed 记录同步失败原因并退出 syncing 态
	MarkFailed(conversationId, errMsg string) error
	// FindByConversation 查询会话同步状态
	FindByConversation(conversationId string) (*model.SyncStatus, error)
}

// QuickMessageRepository 快捷语数据访问接口
type QuickMessageRepository interface {
	FindByUuid(uuid string) (*model.QuickMessage, error)
	// FindByShortcut 按关键字查找（大小写不敏感）
	FindByShortcut(shortcut string) (*model.QuickMessage, error)
	FindAll() ([]model.QuickMessage, error)
	Create(qm *model.QuickMessage) error
	Update(qm *model.QuickMessage) error
	Delete(uuid string) error
}
