// Package supervisor 实现连接监管器
// 每个账号一个实例，独占该账号的活跃连接：
// 挂载事件监听器、周期保活、监听失败时按线性退避重连，
// 重连次数耗尽后整体重置（持久化会话保留，供下次恢复重试）
package supervisor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"zalo_connector/internal/platform"
)

// EventSink 入站事件的消费方（由入库管线实现）
// 监管器只负责把监听器回调转交给 sink，不关心处理语义
type EventSink interface {
	HandleMessage(accountId string, ev *platform.MessageEvent)
	HandleReaction(accountId string, ev *platform.ReactionEvent)
}

// Options 监管器参数
type Options struct {
	KeepAliveInterval time.Duration // 保活探测间隔
	ReconnectBase     time.Duration // 重连基础延迟，实际延迟 = base * 次数
	MaxAttempts       int           // 最大重连次数，超过则整体重置
}

// Supervisor 连接监管器
// 重连计数是单写者状态：只有错误处理路径修改它，
// 但状态查询可能与监听器回调并发，所以仍加锁保护
type Supervisor struct {
	accountId string
	conn      platform.Conn
	sink      EventSink
	registry  *Registry
	opts      Options

	// onExhausted 重连耗尽回调，由登录编排器注入：
	// 将账号状态重置为 LoggedOut，但不删除持久化会话
	onExhausted func(accountId string)

	mu           sync.Mutex
	started      bool
	stopped      bool
	attempts     int
	reconnecting bool
	keepAlive    *time.Ticker
	stopCh       chan struct{}

	// sleep 可注入，测试时替换以免真实等待
	sleep func(time.Duration)
}

// New 创建监管器
func New(accountId string, conn platform.Conn, sink EventSink, registry *Registry, opts Options, onExhausted func(string)) *Supervisor {
	return &Supervisor{
		accountId:   accountId,
		conn:        conn,
		sink:        sink,
		registry:    registry,
		opts:        opts,
		onExhausted: onExhausted,
		stopCh:      make(chan struct{}),
		sleep:       time.Sleep,
	}
}

// Start 挂载事件处理器并开始监听
// 幂等：已启动时再次调用是 no-op
func (s *Supervisor) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.registry.Put(s.accountId, s.conn)
	s.attachAndListen()
	s.startKeepAlive()

	zap.L().Info("connection supervisor started", zap.String("accountId", s.accountId))
}

// IsListening 当前是否在监听
func (s *Supervisor) IsListening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.stopped
}

// Attempts 当前重连计数（状态查询用）
func (s *Supervisor) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Stop 主动停止监管器（登出路径）
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	if s.keepAlive != nil {
		s.keepAlive.Stop()
	}
	close(s.stopCh)
	s.mu.Unlock()

	s.conn.Listener().Stop()
	s.registry.Remove(s.accountId)
}

// attachAndListen 挂载三类事件处理器并启动监听协程
func (s *Supervisor) attachAndListen() {
	listener := s.conn.Listener()
	listener.OnMessage(func(ev *platform.MessageEvent) {
		// 收到业务事件说明连接健康，清零重连计数
		s.resetAttempts()
		s.sink.HandleMessage(s.accountId, ev)
	})
	listener.OnReaction(func(ev *platform.ReactionEvent) {
		s.resetAttempts()
		s.sink.HandleReaction(s.accountId, ev)
	})
	listener.OnError(func(err error) {
		s.handleError(err)
	})

	go func() {
		if err := listener.Start(); err != nil {
			s.handleError(err)
		}
	}()
}

// startKeepAlive 启动保活定时器
// 周期性拉取本账号资料，仅为保持连接活跃；失败汇入统一错误处理
func (s *Supervisor) startKeepAlive() {
	if s.opts.KeepAliveInterval <= 0 {
		return
	}
	s.mu.Lock()
	s.keepAlive = time.NewTicker(s.opts.KeepAliveInterval)
	ticker := s.keepAlive
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				_, err := s.conn.GetUserInfo(ctx, s.conn.OwnId())
				cancel()
				if err != nil {
					zap.L().Warn("keepalive probe failed", zap.String("accountId", s.accountId), zap.Error(err))
					s.handleError(err)
				}
			}
		}
	}()
}

// resetAttempts 清零重连计数
func (s *Supervisor) resetAttempts() {
	s.mu.Lock()
	s.attempts = 0
	s.mu.Unlock()
}

// handleError 统一错误处理：线性退避重连，耗尽后整体重置
// 同一时间只允许一个重连周期在途，周期内到达的错误并入当前故障
func (s *Supervisor) handleError(err error) {
	s.mu.Lock()
	if s.stopped || s.reconnecting {
		s.mu.Unlock()
		return
	}
	s.attempts++
	attempt := s.attempts
	if attempt < s.opts.MaxAttempts {
		s.reconnecting = true
	}
	s.mu.Unlock()

	if attempt >= s.opts.MaxAttempts {
		// 耗尽：撤掉监听器和连接，状态回到 LoggedOut；
		// 持久化会话保留，后续恢复流程可以从头重试
		zap.L().Error("reconnect attempts exhausted, resetting",
			zap.String("accountId", s.accountId),
			zap.Int("attempts", attempt),
			zap.Error(err))
		s.Stop()
		if s.onExhausted != nil {
			s.onExhausted(s.accountId)
		}
		return
	}

	delay := s.opts.ReconnectBase * time.Duration(attempt)
	zap.L().Warn("listener error, scheduling reconnect",
		zap.String("accountId", s.accountId),
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay),
		zap.Error(err))

	s.sleep(delay)

	s.mu.Lock()
	s.reconnecting = false
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	listener := s.conn.Listener()
	listener.Stop()
	go func() {
		if err := listener.Start(); err != nil {
			s.handleError(err)
		}
	}()
}
