package command

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zalo_connector/internal/dao/mysql"
	"zalo_connector/internal/model"
	"zalo_connector/internal/service/label"
	"zalo_connector/internal/service/quickmsg"
)

const testConv = "direct_10000001_20000002"

// memLabelRepo 内存版标签仓库，名称匹配大小写不敏感
type memLabelRepo struct {
	mu     sync.Mutex
	labels []*model.Label
	links  map[string]bool // conversationId|labelUuid
}

func newMemLabelRepo() *memLabelRepo {
	return &memLabelRepo{links: make(map[string]bool)}
}

func (r *memLabelRepo) FindByUuid(uuid string) (*model.Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.labels {
		if l.Uuid == uuid {
			return l, nil
		}
	}
	return nil, nil
}

func (r *memLabelRepo) FindByNameFold(name string) (*model.Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.labels {
		if strings.EqualFold(l.Name, name) {
			return l, nil
		}
	}
	return nil, nil
}

func (r *memLabelRepo) FindAll() ([]model.Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]model.Label, 0, len(r.labels))
	for _, l := range r.labels {
		all = append(all, *l)
	}
	return all, nil
}

func (r *memLabelRepo) Create(l *model.Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, l)
	return nil
}

func (r *memLabelRepo) Update(l *model.Label) error { return nil }

func (r *memLabelRepo) Delete(uuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.labels {
		if l.Uuid == uuid {
			r.labels = append(r.labels[:i], r.labels[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memLabelRepo) AddConversationLabel(conversationId, labelUuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[conversationId+"|"+labelUuid] = true
	return nil
}

func (r *memLabelRepo) RemoveConversationLabel(conversationId, labelUuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, conversationId+"|"+labelUuid)
	return nil
}

func (r *memLabelRepo) FindLabelsByConversation(conversationId string) ([]model.Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Label
	for _, l := range r.labels {
		if r.links[conversationId+"|"+l.Uuid] {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *memLabelRepo) linked(conversationId, labelUuid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.links[conversationId+"|"+labelUuid]
}

// memQuickMsgRepo 内存版快捷语仓库
type memQuickMsgRepo struct {
	mu    sync.Mutex
	items []*model.QuickMessage
}

func (r *memQuickMsgRepo) FindByUuid(uuid string) (*model.QuickMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, qm := range r.items {
		if qm.Uuid == uuid {
			return qm, nil
		}
	}
	return nil, nil
}

func (r *memQuickMsgRepo) FindByShortcut(shortcut string) (*model.QuickMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, qm := range r.items {
		if strings.EqualFold(qm.Shortcut, shortcut) {
			return qm, nil
		}
	}
	return nil, nil
}

func (r *memQuickMsgRepo) FindAll() ([]model.QuickMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]model.QuickMessage, 0, len(r.items))
	for _, qm := range r.items {
		all = append(all, *qm)
	}
	return all, nil
}

func (r *memQuickMsgRepo) Create(qm *model.QuickMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, qm)
	return nil
}

func (r *memQuickMsgRepo) Update(qm *model.QuickMessage) error { return nil }
func (r *memQuickMsgRepo) Delete(uuid string) error            { return nil }

// recordingReplier 记录所有回复文本
type recordingReplier struct {
	mu      sync.Mutex
	replies []string
}

func (r *recordingReplier) ReplyWithFallback(_ context.Context, conversationId, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
	return nil
}

func (r *recordingReplier) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return ""
	}
	return r.replies[len(r.replies)-1]
}

func newTestEngine() (*Service, *memLabelRepo, *memQuickMsgRepo, *recordingReplier) {
	labelRepo := newMemLabelRepo()
	quickRepo := &memQuickMsgRepo{}
	repos := &mysql.Repositories{Label: labelRepo, QuickMessage: quickRepo}
	replier := &recordingReplier{}
	svc := NewService(label.NewService(repos, nil), quickmsg.NewService(repos), replier)
	return svc, labelRepo, quickRepo, replier
}

func TestIsCommand(t *testing.T) {
	svc, _, _, _ := newTestEngine()
	assert.True(t, svc.IsCommand("/label add VIP"))
	assert.True(t, svc.IsCommand("  /qm greet"))
	assert.False(t, svc.IsCommand("报价多少"))
	assert.False(t, svc.IsCommand(""))
	assert.False(t, svc.IsCommand("看看 /label 用法"))
}

// /label add：只关联已存在的标签，名称匹配大小写不敏感
func TestLabelAddAssociatesExisting(t *testing.T) {
	svc, labelRepo, _, replier := newTestEngine()
	require.NoError(t, labelRepo.Create(&model.Label{Uuid: "l1", Name: "VIP客户"}))

	svc.HandleCommand(context.Background(), "10000001", testConv, "20000002", "/label add vip客户")

	assert.True(t, labelRepo.linked(testConv, "l1"))
	assert.Contains(t, replier.last(), "已添加标签: VIP客户")
}

// /label add 未知标签：回复携带可用标签列表，不建标签也不关联
func TestLabelAddUnknownListsAvailable(t *testing.T) {
	svc, labelRepo, _, replier := newTestEngine()
	require.NoError(t, labelRepo.Create(&model.Label{Uuid: "l1", Name: "商机"}))

	svc.HandleCommand(context.Background(), "10000001", testConv, "20000002", "/label add VIP客户")

	created, err := labelRepo.FindByNameFold("VIP客户")
	require.NoError(t, err)
	assert.Nil(t, created, "命令不应替用户创建标签")
	assert.False(t, labelRepo.linked(testConv, "l1"))
	reply := replier.last()
	assert.Contains(t, reply, "标签 VIP客户 不存在")
	assert.Contains(t, reply, "商机")
}

// /label add 重复执行幂等，不产生重复标签
func TestLabelAddIdempotent(t *testing.T) {
	svc, labelRepo, _, _ := newTestEngine()
	require.NoError(t, labelRepo.Create(&model.Label{Uuid: "l1", Name: "VIP"}))

	svc.HandleCommand(context.Background(), "10000001", testConv, "20000002", "/label add VIP")
	svc.HandleCommand(context.Background(), "10000001", testConv, "20000002", "/label add vip")

	all, _ := labelRepo.FindAll()
	assert.Len(t, all, 1, "大小写不同视为同一标签")
	assert.True(t, labelRepo.linked(testConv, "l1"))
}

func TestLabelRemove(t *testing.T) {
	svc, labelRepo, _, replier := newTestEngine()
	require.NoError(t, labelRepo.Create(&model.Label{Uuid: "l1", Name: "VIP"}))
	svc.HandleCommand(context.Background(), "10000001", testConv, "20000002", "/label add VIP")
	require.True(t, labelRepo.linked(testConv, "l1"))

	svc.HandleCommand(context.Background(), "10000001", testConv, "20000002", "/label remove VIP")

	assert.False(t, labelRepo.linked(testConv, "l1"))
	assert.Contains(t, replier.last(), "已移除标签: VIP")
}

// 移除不存在的标签：回复携带可用标签列表
func TestLabelRemoveUnknownListsAvailable(t *testing.T) {
	svc, labelRepo, _, replier := newTestEngine()
	require.NoError(t, labelRepo.Create(&model.Label{Uuid: "l1", Name: "商机"}))
	require.NoError(t, labelRepo.Create(&model.Label{Uuid: "l2", Name: "售后"}))

	svc.HandleCommand(context.Background(), "10000001", testConv, "20000002", "/label remove 不存在的")

	reply := replier.last()
	assert.Contains(t, reply, "标签 不存在的 不存在")
	assert.Contains(t, reply, "商机")
	assert.Contains(t, reply, "售后")
}

func TestLabelUsageHint(t *testing.T) {
	svc, _, _, replier := newTestEngine()
	svc.HandleCommand(context.Background(), "10000001", testConv, "20000002", "/label add")
	assert.Contains(t, replier.last(), "用法")
}

func TestQuickMessageHit(t *testing.T) {
	svc, _, quickRepo, replier := newTestEngine()
	_ = quickRepo.Create(&model.QuickMessage{Uuid: "q1", Shortcut: "greet", Content: "您好，很高兴为您服务！"})

	svc.HandleCommand(context.Background(), "10000001", testConv, "20000002", "/qm greet")

	assert.Equal(t, "您好，很高兴为您服务！", replier.last())
}

// /qm 未命中：回复携带可用关键字列表
func TestQuickMessageMissListsShortcuts(t *testing.T) {
	svc, _, quickRepo, replier := newTestEngine()
	_ = quickRepo.Create(&model.QuickMessage{Uuid: "q1", Shortcut: "greet", Content: "您好"})
	_ = quickRepo.Create(&model.QuickMessage{Uuid: "q2", Shortcut: "price", Content: "价目表"})

	svc.HandleCommand(context.Background(), "10000001", testConv, "20000002", "/qm nothing")

	reply := replier.last()
	assert.Contains(t, reply, "快捷语 nothing 不存在")
	assert.Contains(t, reply, "greet")
	assert.Contains(t, reply, "price")
}

func TestUnknownCommand(t *testing.T) {
	svc, _, _, replier := newTestEngine()
	svc.HandleCommand(context.Background(), "10000001", testConv, "20000002", "/whatever")
	assert.Contains(t, replier.last(), "未知命令")
}

// 关键词自动打标：大小写不敏感，命中多条规则全部生效
func TestAutoLabel(t *testing.T) {
	svc, labelRepo, _, _ := newTestEngine()

	svc.AutoLabel(context.Background(), testConv, "请给我报价，URGENT")

	biz, _ := labelRepo.FindByNameFold("商机")
	require.NotNil(t, biz)
	assert.True(t, labelRepo.linked(testConv, biz.Uuid))

	urgent, _ := labelRepo.FindByNameFold("紧急")
	require.NotNil(t, urgent)
	assert.True(t, labelRepo.linked(testConv, urgent.Uuid))
}

// 自动建出的标签带完整的预置定义，而不是只有名字的空壳
func TestAutoLabelUsesPredefinedRecord(t *testing.T) {
	svc, labelRepo, _, _ := newTestEngine()

	svc.AutoLabel(context.Background(), testConv, "这个多少钱")

	l, err := labelRepo.FindByNameFold("商机")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "#fa8c16", l.ColorHex)
	assert.NotEmpty(t, l.Description)
}

// 标签已被人工调整过颜色时，自动打标不覆盖
func TestAutoLabelKeepsExistingRecord(t *testing.T) {
	svc, labelRepo, _, _ := newTestEngine()
	require.NoError(t, labelRepo.Create(&model.Label{Uuid: "l1", Name: "商机", ColorHex: "#000000"}))

	svc.AutoLabel(context.Background(), testConv, "请报价")

	l, _ := labelRepo.FindByNameFold("商机")
	require.NotNil(t, l)
	assert.Equal(t, "#000000", l.ColorHex)
	assert.True(t, labelRepo.linked(testConv, "l1"))
}

func TestAutoLabelNoMatch(t *testing.T) {
	svc, labelRepo, _, _ := newTestEngine()

	svc.AutoLabel(context.Background(), testConv, "今天天气不错")

	all, _ := labelRepo.FindAll()
	assert.Empty(t, all)
}
