package platform

import (
	"sort"
	"sync"

	"zalo_connector/pkg/errorx"
)

// 驱动注册表
// 平台协议实现作为驱动在 init 中注册（类似 database/sql 的用法），
// 连接器主程序按名字取用，不在编译期耦合任何具体实现
var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Client)
)

// Register 注册平台驱动，重名注册 panic
func Register(name string, client Client) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if client == nil {
		panic("platform: Register client is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("platform: Register called twice for driver " + name)
	}
	drivers[name] = client
}

// Open 按名字取驱动；name 为空且只注册了一个驱动时返回它
func Open(name string) (Client, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()

	if name == "" && len(drivers) == 1 {
		for _, client := range drivers {
			return client, nil
		}
	}
	if client, ok := drivers[name]; ok {
		return client, nil
	}
	return nil, errorx.Newf(errorx.CodePlatformError, "平台驱动 %q 未注册，可用: %v", name, driverNames())
}

// Drivers 返回已注册的驱动名列表
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	return driverNames()
}

func driverNames() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
