package supervisor

import (
	"sync"

	"zalo_connector/internal/platform"
)

// Registry 按账号维护当前的活跃平台连接
// 连接由连接监管器写入/移除，出站分发器和入库管线只读，
// 读写都可能发生在监听器回调并发期间，因此用读写锁保护
type Registry struct {
	mu    sync.RWMutex
	conns map[string]platform.Conn
}

// NewRegistry 创建连接注册表
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]platform.Conn),
	}
}

// Put 登记账号的活跃连接，重复登记整体覆盖
func (r *Registry) Put(accountId string, conn platform.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[accountId] = conn
}

// Remove 移除账号连接
func (r *Registry) Remove(accountId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, accountId)
}

// Get 按账号取连接
func (r *Registry) Get(accountId string) (platform.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[accountId]
	return conn, ok
}

// First 返回任意一个活跃连接
// 出站接口不携带账号参数，单账号部署时即当前唯一连接
func (r *Registry) First() (platform.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, conn := range r.conns {
		return conn, true
	}
	return nil, false
}

// Accounts 返回当前有活跃连接的账号列表
func (r *Registry) Accounts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}
