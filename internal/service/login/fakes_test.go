package login

import (
	"context"
	"sync"

	myredis "zalo_connector/internal/dao/redis"
	"zalo_connector/internal/platform"
)

// fakeClient 可编程的平台客户端
type fakeClient struct {
	mu          sync.Mutex
	loginFunc   func(ctx context.Context, creds platform.Credentials) (platform.Conn, error)
	loginQRFunc func(ctx context.Context, deviceId, clientId string, onEvent func(platform.QREvent)) (platform.Conn, error)
	onEvent     func(platform.QREvent)
}

func (c *fakeClient) Login(ctx context.Context, creds platform.Credentials) (platform.Conn, error) {
	return c.loginFunc(ctx, creds)
}

func (c *fakeClient) LoginQR(ctx context.Context, deviceId, clientId string, onEvent func(platform.QREvent)) (platform.Conn, error) {
	c.mu.Lock()
	c.onEvent = onEvent
	c.mu.Unlock()
	return c.loginQRFunc(ctx, deviceId, clientId, onEvent)
}

// emit 从测试侧触发扫码回调
func (c *fakeClient) emit(ev platform.QREvent) {
	c.mu.Lock()
	handler := c.onEvent
	c.mu.Unlock()
	if handler != nil {
		handler(ev)
	}
}

func (c *fakeClient) hasHandler() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onEvent != nil
}

// fakeListener 空监听器，Start 立即返回
type fakeListener struct{}

func (l *fakeListener) OnMessage(func(*platform.MessageEvent))   {}
func (l *fakeListener) OnReaction(func(*platform.ReactionEvent)) {}
func (l *fakeListener) OnError(func(error))                      {}
func (l *fakeListener) Start() error                             { return nil }
func (l *fakeListener) Stop()                                    {}

// fakeConn 固定账号 ID 的平台连接
type fakeConn struct {
	ownId    string
	mu       sync.Mutex
	logouts  int
	listener *fakeListener
}

func newFakeConn(ownId string) *fakeConn {
	return &fakeConn{ownId: ownId, listener: &fakeListener{}}
}

func (c *fakeConn) OwnId() string { return c.ownId }

func (c *fakeConn) GetUserInfo(context.Context, string) (*platform.UserProfile, error) {
	return &platform.UserProfile{Id: c.ownId}, nil
}

func (c *fakeConn) GetGroupInfo(context.Context, ...string) (map[string]*platform.GroupProfile, error) {
	return nil, nil
}

func (c *fakeConn) GetAllGroups(context.Context) ([]string, error) { return nil, nil }

func (c *fakeConn) SendMessage(context.Context, *platform.MessagePayload, string, platform.ThreadType) (*platform.SendResult, error) {
	return nil, nil
}

func (c *fakeConn) Undo(context.Context, platform.MessageDest) error { return nil }

func (c *fakeConn) DeleteMessage(context.Context, platform.MessageDest, bool) error { return nil }

func (c *fakeConn) ForwardMessage(context.Context, *platform.MessagePayload, []string, platform.ThreadType) error {
	return nil
}

func (c *fakeConn) Listener() platform.Listener { return c.listener }

func (c *fakeConn) Logout(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logouts++
	return nil
}

func (c *fakeConn) logoutCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logouts
}

// memSessionStore 内存版会话存储
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*myredis.StoredSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*myredis.StoredSession)}
}

func (s *memSessionStore) Save(_ context.Context, sess *myredis.StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.AccountId] = sess
	return nil
}

func (s *memSessionStore) Load(_ context.Context, accountId string) (*myredis.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if accountId == "" {
		for _, sess := range s.sessions {
			return sess, nil
		}
		return nil, nil
	}
	return s.sessions[accountId], nil
}

func (s *memSessionStore) ListAll(_ context.Context) ([]*myredis.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*myredis.StoredSession
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	return all, nil
}

func (s *memSessionStore) Delete(_ context.Context, accountId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, accountId)
	return nil
}

func (s *memSessionStore) has(accountId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[accountId]
	return ok
}

// noopSink 丢弃所有事件
type noopSink struct{}

func (noopSink) HandleMessage(string, *platform.MessageEvent)   {}
func (noopSink) HandleReaction(string, *platform.ReactionEvent) {}
