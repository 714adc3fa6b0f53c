// Package mysql 提供 Repository 层聚合与构造
package mysql

import (
	"gorm.io/gorm"
)

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db           *gorm.DB
	User         UserRepository
	Group        GroupRepository
	GroupMember  GroupMemberRepository
	Conversation ConversationRepository
	Message      MessageRepository
	Attachment   AttachmentRepository
	Reaction     ReactionRepository
	Label        LabelRepository
	SyncStatus   SyncStatusRepository
	QuickMessage QuickMessageRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		User:         newUserRepository(db),
		Group:        newGroupRepository(db),
		GroupMember:  newGroupMemberRepository(db),
		Conversation: newConversationRepository(db),
		Message:      newMessageRepository(db),
		Attachment:   newAttachmentRepository(db),
		Reaction:     newReactionRepository(db),
		Label:        newLabelRepository(db),
		SyncStatus:   newSyncStatusRepository(db),
		QuickMessage: newQuickMessageRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
