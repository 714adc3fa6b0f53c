// Package login 实现登录编排器
// 管理账号的登录状态机（未登录 → 待扫码 → 已登录）：
// 扫码登录、凭证导入、启动时会话恢复，登录完成后拉起连接监管器并触发同步
package login

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	myredis "zalo_connector/internal/dao/redis"
	"zalo_connector/internal/platform"
	"zalo_connector/internal/service/supervisor"
	"zalo_connector/internal/service/syncer"
	"zalo_connector/pkg/constants"
	"zalo_connector/pkg/errorx"
)

// Status 账号登录状态
type Status int8

const (
	StatusLoggedOut Status = iota // 未登录
	StatusPendingQR               // 二维码已生成，等待扫码
	StatusLoggedIn                // 已登录，连接活跃
)

// String 状态的可读名称
func (s Status) String() string {
	switch s {
	case StatusPendingQR:
		return "pending_qr"
	case StatusLoggedIn:
		return "logged_in"
	default:
		return "logged_out"
	}
}

// Options 登录编排器参数
type Options struct {
	LoginTimeout time.Duration      // 扫码登录整体超时
	Supervisor   supervisor.Options // 透传给连接监管器
}

// SessionStore 会话凭证存储的能力边界（由 redis 存储实现）
type SessionStore interface {
	Save(ctx context.Context, sess *myredis.StoredSession) error
	Load(ctx context.Context, accountId string) (*myredis.StoredSession, error)
	ListAll(ctx context.Context) ([]*myredis.StoredSession, error)
	Delete(ctx context.Context, accountId string) error
}

// Service 登录编排器
type Service struct {
	client   platform.Client
	sessions SessionStore
	registry *supervisor.Registry
	sink     supervisor.EventSink
	syncer   *syncer.Service
	opts     Options

	mu          sync.Mutex
	statuses    map[string]Status
	supervisors map[string]*supervisor.Supervisor
	pending     *loginAttempt
	qrCode      string // 进行中扫码登录的二维码内容
}

// loginAttempt 一次进行中的扫码登录
// 连接建立和凭证下发走不同的回调路径、先后顺序不保证，
// 两者都就绪才能落定，且只能落定一次
type loginAttempt struct {
	mu        sync.Mutex
	conn      platform.Conn
	creds     *platform.Credentials
	finalized bool
	cancel    context.CancelFunc
}

// NewService 创建登录编排器
func NewService(client platform.Client, sessions SessionStore, registry *supervisor.Registry,
	sink supervisor.EventSink, sync *syncer.Service, opts Options) *Service {
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = constants.LOGIN_TIMEOUT
	}
	return &Service{
		client:      client,
		sessions:    sessions,
		registry:    registry,
		sink:        sink,
		syncer:      sync,
		opts:        opts,
		statuses:    make(map[string]Status),
		supervisors: make(map[string]*supervisor.Supervisor),
	}
}

// Status 查询账号状态；accountId 为空时返回整体状态
// 有扫码进行中报 pending_qr，有任一账号在线报 logged_in
func (s *Service) Status(accountId string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accountId != "" {
		return s.statuses[accountId]
	}
	if s.pending != nil {
		return StatusPendingQR
	}
	for _, st := range s.statuses {
		if st == StatusLoggedIn {
			return StatusLoggedIn
		}
	}
	return StatusLoggedOut
}

// AccountState 单账号的运行时状态
type AccountState struct {
	AccountId string
	Status    Status
	Listening bool
	Attempts  int
}

// AccountStates 返回所有已知账号的运行时状态
func (s *Service) AccountStates() []AccountState {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make([]AccountState, 0, len(s.statuses))
	for accountId, status := range s.statuses {
		state := AccountState{AccountId: accountId, Status: status}
		if sup, ok := s.supervisors[accountId]; ok {
			state.Listening = sup.IsListening()
			state.Attempts = sup.Attempts()
		}
		states = append(states, state)
	}
	return states
}

// InitiateLogin 发起扫码登录
// 二维码内容通过 onQRCode 回调上报；同一时间只允许一次扫码流程
func (s *Service) InitiateLogin(ctx context.Context, deviceId, clientId string, onQRCode func(code string)) error {
	if deviceId == "" || clientId == "" {
		return errorx.ErrInvalidParam
	}

	s.mu.Lock()
	if s.pending != nil {
		s.mu.Unlock()
		return errorx.New(errorx.CodeAlreadyLogin, "已有扫码登录进行中")
	}
	loginCtx, cancel := context.WithTimeout(context.Background(), s.opts.LoginTimeout)
	attempt := &loginAttempt{cancel: cancel}
	s.pending = attempt
	s.mu.Unlock()

	go s.runQRLogin(loginCtx, attempt, deviceId, clientId, onQRCode)
	return nil
}

// runQRLogin 扫码登录主流程（独立协程）
func (s *Service) runQRLogin(ctx context.Context, attempt *loginAttempt, deviceId, clientId string, onQRCode func(string)) {
	defer attempt.cancel()

	conn, err := s.client.LoginQR(ctx, deviceId, clientId, func(ev platform.QREvent) {
		switch ev.Type {
		case platform.QRCodeGenerated:
			zap.L().Info("二维码已生成")
			s.mu.Lock()
			if s.pending == attempt {
				s.qrCode = ev.Code
			}
			s.mu.Unlock()
			if onQRCode != nil {
				onQRCode(ev.Code)
			}
		case platform.QRCodeExpired:
			zap.L().Warn("二维码已过期")
			s.abortPending(attempt)
		case platform.QRCodeDeclined:
			zap.L().Warn("用户拒绝扫码登录")
			s.abortPending(attempt)
		case platform.QRGotCredentials:
			if ev.Credentials == nil {
				zap.L().Error("凭证事件缺少凭证数据")
				return
			}
			attempt.mu.Lock()
			attempt.creds = ev.Credentials
			attempt.mu.Unlock()
			s.tryFinalize(attempt)
		}
	})
	if err != nil {
		zap.L().Error("扫码登录失败", zap.Error(err))
		s.abortPending(attempt)
		return
	}

	attempt.mu.Lock()
	attempt.conn = conn
	attempt.mu.Unlock()
	s.tryFinalize(attempt)
}

// tryFinalize 连接和凭证都就绪时落定登录，重复调用幂等
func (s *Service) tryFinalize(attempt *loginAttempt) {
	attempt.mu.Lock()
	if attempt.finalized || attempt.conn == nil || attempt.creds == nil {
		attempt.mu.Unlock()
		return
	}
	attempt.finalized = true
	conn, creds := attempt.conn, attempt.creds
	attempt.mu.Unlock()

	s.clearPending(attempt)
	s.finalize(conn, creds)
}

// finalize 登录落定：校验账号、持久化会话、拉起监管器、触发同步
func (s *Service) finalize(conn platform.Conn, creds *platform.Credentials) {
	accountId := conn.OwnId()
	if !validAccountId(accountId) {
		zap.L().Error("平台返回非法账号 ID，放弃登录", zap.String("accountId", accountId))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Logout(ctx)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sess := &myredis.StoredSession{
		AccountId:          accountId,
		LoginTime:          time.Now(),
		IsActive:           true,
		DeviceId:           creds.DeviceId,
		ClientId:           creds.ClientId,
		CredentialMaterial: creds.Material,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		// 会话存不下只影响下次恢复，本次登录照常继续
		zap.L().Warn("会话持久化失败", zap.String("accountId", accountId), zap.Error(err))
	}

	sup := supervisor.New(accountId, conn, s.sink, s.registry, s.opts.Supervisor, s.onExhausted)

	s.mu.Lock()
	if old, ok := s.supervisors[accountId]; ok {
		// 同账号重复登录，旧连接整体替换
		old.Stop()
	}
	s.supervisors[accountId] = sup
	s.statuses[accountId] = StatusLoggedIn
	s.mu.Unlock()

	sup.Start()
	zap.L().Info("账号登录完成", zap.String("accountId", accountId))

	if s.syncer != nil {
		go func() {
			syncCtx, syncCancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer syncCancel()
			if err := s.syncer.SyncAll(syncCtx, accountId); err != nil {
				zap.L().Error("登录后同步失败", zap.String("accountId", accountId), zap.Error(err))
			}
		}()
	}
}

// ImportSession 用外部提供的凭证直接登录（不走扫码）
func (s *Service) ImportSession(ctx context.Context, deviceId, clientId string, material []byte) error {
	creds := platform.Credentials{DeviceId: deviceId, ClientId: clientId, Material: material}
	if creds.DeviceId == "" || creds.ClientId == "" || len(creds.Material) == 0 {
		return errorx.ErrInvalidParam
	}

	conn, err := s.client.Login(ctx, creds)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeSessionInvalid, "凭证登录失败")
	}
	s.finalize(conn, &creds)
	return nil
}

// RestoreAll 启动时恢复所有已持久化的会话
// 单个账号恢复失败不影响其余账号；凭证被平台拒绝时删除该会话
func (s *Service) RestoreAll(ctx context.Context) {
	sessions, err := s.sessions.ListAll(ctx)
	if err != nil {
		zap.L().Warn("读取持久化会话失败", zap.Error(err))
		return
	}

	for _, sess := range sessions {
		if !sess.IsValid() {
			zap.L().Warn("持久化会话不完整，删除", zap.String("accountId", sess.AccountId))
			_ = s.sessions.Delete(ctx, sess.AccountId)
			continue
		}

		creds := platform.Credentials{
			DeviceId: sess.DeviceId,
			ClientId: sess.ClientId,
			Material: sess.CredentialMaterial,
		}
		conn, err := s.client.Login(ctx, creds)
		if err != nil {
			if errors.Is(err, platform.ErrSessionExpired) {
				zap.L().Warn("持久化会话已失效，删除", zap.String("accountId", sess.AccountId))
				_ = s.sessions.Delete(ctx, sess.AccountId)
			} else {
				zap.L().Error("会话恢复失败", zap.String("accountId", sess.AccountId), zap.Error(err))
			}
			continue
		}
		s.finalize(conn, &creds)
	}
}

// Logout 登出账号；accountId 为空时登出全部在线账号
// 主动登出会删除持久化会话
func (s *Service) Logout(ctx context.Context, accountId string) error {
	s.mu.Lock()
	var targets []string
	if accountId != "" {
		if _, ok := s.supervisors[accountId]; !ok {
			s.mu.Unlock()
			return errorx.ErrNotLoggedIn
		}
		targets = []string{accountId}
	} else {
		for id := range s.supervisors {
			targets = append(targets, id)
		}
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return errorx.ErrNotLoggedIn
	}

	for _, id := range targets {
		s.logoutOne(ctx, id)
	}
	return nil
}

// logoutOne 登出单个账号
func (s *Service) logoutOne(ctx context.Context, accountId string) {
	s.mu.Lock()
	sup := s.supervisors[accountId]
	delete(s.supervisors, accountId)
	s.statuses[accountId] = StatusLoggedOut
	s.mu.Unlock()

	conn, _ := s.registry.Get(accountId)
	if sup != nil {
		sup.Stop()
	}
	if conn != nil {
		if err := conn.Logout(ctx); err != nil {
			zap.L().Warn("平台登出失败", zap.String("accountId", accountId), zap.Error(err))
		}
	}
	if err := s.sessions.Delete(ctx, accountId); err != nil {
		zap.L().Warn("删除持久化会话失败", zap.String("accountId", accountId), zap.Error(err))
	}
	zap.L().Info("账号已登出", zap.String("accountId", accountId))
}

// Shutdown 进程退出时停掉所有监听
// 与 Logout 的区别：不调用平台登出、保留持久化会话，
// 下次启动时 RestoreAll 可以用原凭证续上
func (s *Service) Shutdown(_ context.Context) {
	s.mu.Lock()
	var sups []*supervisor.Supervisor
	for id, sup := range s.supervisors {
		sups = append(sups, sup)
		s.statuses[id] = StatusLoggedOut
	}
	s.supervisors = make(map[string]*supervisor.Supervisor)
	s.mu.Unlock()

	for _, sup := range sups {
		sup.Stop()
	}
}

// onExhausted 监管器重连耗尽的回调
// 状态回到未登录，但保留持久化会话，下次启动或手动恢复时还能重试
func (s *Service) onExhausted(accountId string) {
	s.mu.Lock()
	delete(s.supervisors, accountId)
	s.statuses[accountId] = StatusLoggedOut
	s.mu.Unlock()
	zap.L().Warn("连接重连耗尽，账号回到未登录态", zap.String("accountId", accountId))
}

// abortPending 扫码失败/过期/拒绝时清理进行中的登录
func (s *Service) abortPending(attempt *loginAttempt) {
	attempt.mu.Lock()
	if attempt.finalized {
		attempt.mu.Unlock()
		return
	}
	attempt.finalized = true
	attempt.mu.Unlock()

	attempt.cancel()
	s.clearPending(attempt)
}

// clearPending 移除进行中登录的登记
func (s *Service) clearPending(attempt *loginAttempt) {
	s.mu.Lock()
	if s.pending == attempt {
		s.pending = nil
		s.qrCode = ""
	}
	s.mu.Unlock()
}

// PendingQRCode 返回进行中扫码登录的二维码内容，没有则为空
func (s *Service) PendingQRCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qrCode
}

// validAccountId 平台账号 ID 必须是长度 8-20 的纯数字
func validAccountId(id string) bool {
	if len(id) < constants.ACCOUNT_ID_MIN_LEN || len(id) > constants.ACCOUNT_ID_MAX_LEN {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
