package ingest

import (
	"context"
	"sync"
	"time"

	"zalo_connector/internal/dao/mysql"
	"zalo_connector/internal/model"
	"zalo_connector/internal/platform"
)

// 内存版 Repository 实现，只覆盖入库管线用到的行为

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.UserInfo
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.UserInfo)}
}

func (r *memUserRepo) FindByUuid(uuid string) (*model.UserInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[uuid], nil
}

func (r *memUserRepo) ExistingUuids(uuids []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []string
	for _, id := range uuids {
		if _, ok := r.users[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

func (r *memUserRepo) Upsert(user *model.UserInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.Uuid] = user
	return nil
}

type memGroupRepo struct {
	mu     sync.Mutex
	groups map[string]*model.GroupInfo
}

func newMemGroupRepo() *memGroupRepo {
	return &memGroupRepo{groups: make(map[string]*model.GroupInfo)}
}

func (r *memGroupRepo) FindByUuid(uuid string) (*model.GroupInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groups[uuid], nil
}

func (r *memGroupRepo) FindAll() ([]model.GroupInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.GroupInfo
	for _, g := range r.groups {
		all = append(all, *g)
	}
	return all, nil
}

func (r *memGroupRepo) Upsert(group *model.GroupInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[group.Uuid] = group
	return nil
}

type memConversationRepo struct {
	mu    sync.Mutex
	convs map[string]*model.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{convs: make(map[string]*model.Conversation)}
}

func (r *memConversationRepo) FindByUuid(uuid string) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.convs[uuid], nil
}

func (r *memConversationRepo) Upsert(conv *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.convs[conv.Uuid]; ok {
		existing.Type = conv.Type
		existing.ParticipantId = conv.ParticipantId
		existing.GroupUuid = conv.GroupUuid
		return nil
	}
	r.convs[conv.Uuid] = conv
	return nil
}

func (r *memConversationRepo) UpdateLastMessage(uuid, messageUuid string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.convs[uuid]; ok {
		conv.LastMessageId = messageUuid
		conv.LastMessageAt.Time = at
		conv.LastMessageAt.Valid = true
	}
	return nil
}

type memGroupMemberRepo struct {
	mu      sync.Mutex
	members map[string]*model.GroupMember // key: groupUuid + "|" + userUuid
}

func newMemGroupMemberRepo() *memGroupMemberRepo {
	return &memGroupMemberRepo{members: make(map[string]*model.GroupMember)}
}

func (r *memGroupMemberRepo) Upsert(member *model.GroupMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.GroupUuid+"|"+member.UserUuid] = member
	return nil
}

func (r *memGroupMemberRepo) MarkLeft(groupUuid, userUuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members[groupUuid+"|"+userUuid]; ok {
		m.IsActive = false
	}
	return nil
}

func (r *memGroupMemberRepo) FindUserUuidsByGroup(groupUuid string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var uuids []string
	for _, m := range r.members {
		if m.GroupUuid == groupUuid {
			uuids = append(uuids, m.UserUuid)
		}
	}
	return uuids, nil
}

func (r *memGroupMemberRepo) active(groupUuid, userUuid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[groupUuid+"|"+userUuid]
	return ok && m.IsActive
}

type memMessageRepo struct {
	mu        sync.Mutex
	byUuid    map[string]*model.Message
	byClient  map[string]*model.Message
	createErr error // 置位后 Create 直接失败
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{
		byUuid:   make(map[string]*model.Message),
		byClient: make(map[string]*model.Message),
	}
}

func (r *memMessageRepo) FindByUuid(uuid string) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byUuid[uuid], nil
}

func (r *memMessageRepo) ExistsByUuid(uuid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byUuid[uuid]
	return ok, nil
}

func (r *memMessageRepo) ExistsByClientMsgId(clientMsgId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byClient[clientMsgId]
	return ok, nil
}

func (r *memMessageRepo) Create(msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.byUuid[msg.Uuid] = msg
	if msg.ClientMsgId != "" {
		r.byClient[msg.ClientMsgId] = msg
	}
	return nil
}

func (r *memMessageRepo) MarkUndone(uuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg, ok := r.byUuid[uuid]; ok {
		msg.IsUndone = true
	}
	return nil
}

func (r *memMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUuid)
}

type memAttachmentRepo struct {
	mu   sync.Mutex
	atts []*model.Attachment
}

func (r *memAttachmentRepo) Create(att *model.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.atts = append(r.atts, att)
	return nil
}

type memReactionRepo struct {
	mu        sync.Mutex
	reactions map[string]*model.Reaction // key: msgUuid + "|" + userUuid
}

func newMemReactionRepo() *memReactionRepo {
	return &memReactionRepo{reactions: make(map[string]*model.Reaction)}
}

func (r *memReactionRepo) Upsert(reaction *model.Reaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reactions[reaction.MessageUuid+"|"+reaction.UserUuid] = reaction
	return nil
}

type memSyncStatusRepo struct {
	mu          sync.Mutex
	transitions []string // 记录状态翻转序列，便于断言
	lastSynced  map[string]string
}

func newMemSyncStatusRepo() *memSyncStatusRepo {
	return &memSyncStatusRepo{lastSynced: make(map[string]string)}
}

func (r *memSyncStatusRepo) MarkSyncing(conversationId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, "syncing:"+conversationId)
	return nil
}

func (r *memSyncStatusRepo) MarkIdle(conversationId, lastMessageId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, "idle:"+conversationId)
	r.lastSynced[conversationId] = lastMessageId
	return nil
}

func (r *memSyncStatusRepo) MarkFailed(conversationId, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, "failed:"+conversationId)
	return nil
}

func (r *memSyncStatusRepo) FindByConversation(conversationId string) (*model.SyncStatus, error) {
	return nil, nil
}

// newMemRepos 组装内存版 Repositories
func newMemRepos() (*mysql.Repositories, *memMessageRepo, *memSyncStatusRepo, *memUserRepo) {
	msgRepo := newMemMessageRepo()
	syncRepo := newMemSyncStatusRepo()
	userRepo := newMemUserRepo()
	repos := &mysql.Repositories{
		User:         userRepo,
		Group:        newMemGroupRepo(),
		GroupMember:  newMemGroupMemberRepo(),
		Conversation: newMemConversationRepo(),
		Message:      msgRepo,
		Attachment:   &memAttachmentRepo{},
		Reaction:     newMemReactionRepo(),
		SyncStatus:   syncRepo,
	}
	return repos, msgRepo, syncRepo, userRepo
}

// fakeConn 可编程的平台连接
type fakeConn struct {
	ownId       string
	userInfoErr error
	profiles    map[string]*platform.UserProfile
}

func (c *fakeConn) OwnId() string { return c.ownId }

func (c *fakeConn) GetUserInfo(_ context.Context, id string) (*platform.UserProfile, error) {
	if c.userInfoErr != nil {
		return nil, c.userInfoErr
	}
	if p, ok := c.profiles[id]; ok {
		return p, nil
	}
	return &platform.UserProfile{Id: id, DisplayName: "用户" + id}, nil
}

func (c *fakeConn) GetGroupInfo(_ context.Context, ids ...string) (map[string]*platform.GroupProfile, error) {
	result := make(map[string]*platform.GroupProfile, len(ids))
	for _, id := range ids {
		result[id] = &platform.GroupProfile{Id: id, Name: "群" + id}
	}
	return result, nil
}

func (c *fakeConn) GetAllGroups(context.Context) ([]string, error) { return nil, nil }

func (c *fakeConn) SendMessage(context.Context, *platform.MessagePayload, string, platform.ThreadType) (*platform.SendResult, error) {
	return &platform.SendResult{MsgId: "sent"}, nil
}

func (c *fakeConn) Undo(context.Context, platform.MessageDest) error { return nil }

func (c *fakeConn) DeleteMessage(context.Context, platform.MessageDest, bool) error { return nil }

func (c *fakeConn) ForwardMessage(context.Context, *platform.MessagePayload, []string, platform.ThreadType) error {
	return nil
}

func (c *fakeConn) Listener() platform.Listener { return nil }

func (c *fakeConn) Logout(context.Context) error { return nil }
