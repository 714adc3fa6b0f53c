package supervisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zalo_connector/internal/platform"
)

const testAccount = "10000001"

type fakeListener struct {
	mu        sync.Mutex
	onMessage func(*platform.MessageEvent)
	onError   func(error)
	started   int
	stopped   int
}

func (l *fakeListener) OnMessage(h func(*platform.MessageEvent)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onMessage = h
}

func (l *fakeListener) OnReaction(func(*platform.ReactionEvent)) {}

func (l *fakeListener) OnError(h func(error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onError = h
}

func (l *fakeListener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started++
	return nil
}

func (l *fakeListener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped++
}

type fakeConn struct {
	listener *fakeListener
}

func (c *fakeConn) OwnId() string { return testAccount }

func (c *fakeConn) GetUserInfo(context.Context, string) (*platform.UserProfile, error) {
	return &platform.UserProfile{Id: testAccount}, nil
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

func (c *fakeConn) Logout(context.Context) error { return nil }

type recordingSink struct {
	mu       sync.Mutex
	messages int
}

func (s *recordingSink) HandleMessage(string, *platform.MessageEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages++
}

func (s *recordingSink) HandleReaction(string, *platform.ReactionEvent) {}

func newTestSupervisor(opts Options, onExhausted func(string)) (*Supervisor, *fakeConn, *Registry, *[]time.Duration) {
	conn := &fakeConn{listener: &fakeListener{}}
	registry := NewRegistry()
	sup := New(testAccount, conn, &recordingSink{}, registry, opts, onExhausted)

	var delays []time.Duration
	var mu sync.Mutex
	sup.sleep = func(d time.Duration) {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
	}
	return sup, conn, registry, &delays
}

func TestStartIdempotent(t *testing.T) {
	sup, conn, registry, _ := newTestSupervisor(Options{ReconnectBase: time.Second, MaxAttempts: 5}, nil)
	defer sup.Stop()

	sup.Start()
	sup.Start()

	_, ok := registry.Get(testAccount)
	assert.True(t, ok)
	assert.True(t, sup.IsListening())

	// 等监听协程调度
	assert.Eventually(t, func() bool {
		conn.listener.mu.Lock()
		defer conn.listener.mu.Unlock()
		return conn.listener.started == 1
	}, time.Second, 10*time.Millisecond)
}

func TestReconnectDelayGrowsLinearly(t *testing.T) {
	sup, _, _, delays := newTestSupervisor(Options{ReconnectBase: 2 * time.Second, MaxAttempts: 10}, nil)
	sup.Start()
	defer sup.Stop()

	sup.handleError(errors.New("listener down"))
	sup.handleError(errors.New("listener down"))
	sup.handleError(errors.New("listener down"))

	// 退避在错误处理内同步完成，记录顺序即调用顺序
	require.Len(t, *delays, 3)
	assert.Equal(t, 2*time.Second, (*delays)[0])
	assert.Equal(t, 4*time.Second, (*delays)[1])
	assert.Equal(t, 6*time.Second, (*delays)[2])
	assert.Equal(t, 3, sup.Attempts())
}

func TestErrorsDuringReconnectCoalesce(t *testing.T) {
	sup, _, _, _ := newTestSupervisor(Options{ReconnectBase: time.Second, MaxAttempts: 10}, nil)
	sup.Start()
	defer sup.Stop()

	// 退避等待期间再次出错：并入在途周期，不另起重连也不递增计数
	sleeps := 0
	sup.sleep = func(time.Duration) {
		sleeps++
		if sleeps == 1 {
			sup.handleError(errors.New("second failure"))
		}
	}

	sup.handleError(errors.New("listener down"))
	assert.Equal(t, 1, sleeps)
	assert.Equal(t, 1, sup.Attempts())
}

func TestBusinessEventResetsAttempts(t *testing.T) {
	sup, _, _, _ := newTestSupervisor(Options{ReconnectBase: time.Second, MaxAttempts: 10}, nil)
	sup.Start()
	defer sup.Stop()

	sup.handleError(errors.New("listener down"))
	sup.handleError(errors.New("listener down"))
	assert.Equal(t, 2, sup.Attempts())

	sup.resetAttempts()
	assert.Equal(t, 0, sup.Attempts())

	// 再次出错从第 1 次重新数
	sup.handleError(errors.New("listener down"))
	assert.Equal(t, 1, sup.Attempts())
}

func TestExhaustionResetsToLoggedOut(t *testing.T) {
	var exhausted []string
	var mu sync.Mutex
	sup, _, registry, delays := newTestSupervisor(Options{ReconnectBase: time.Second, MaxAttempts: 3},
		func(accountId string) {
			mu.Lock()
			exhausted = append(exhausted, accountId)
			mu.Unlock()
		})
	sup.Start()

	sup.handleError(errors.New("listener down"))
	sup.handleError(errors.New("listener down"))
	sup.handleError(errors.New("listener down")) // 第 3 次到达上限

	mu.Lock()
	assert.Equal(t, []string{testAccount}, exhausted)
	mu.Unlock()

	// 整体重置：连接从注册表移除，监听停止，前两次各退避一次
	_, ok := registry.Get(testAccount)
	assert.False(t, ok)
	assert.False(t, sup.IsListening())
	assert.Len(t, *delays, 2)

	// 重置后的错误不再处理
	sup.handleError(errors.New("listener down"))
	mu.Lock()
	assert.Len(t, exhausted, 1)
	mu.Unlock()
}

func TestStopRemovesFromRegistry(t *testing.T) {
	sup, _, registry, _ := newTestSupervisor(Options{ReconnectBase: time.Second, MaxAttempts: 5}, nil)
	sup.Start()

	_, ok := registry.Get(testAccount)
	require.True(t, ok)

	sup.Stop()
	_, ok = registry.Get(testAccount)
	assert.False(t, ok)
	assert.False(t, sup.IsListening())
}
