package ingest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 同一会话键的任务必须按提交顺序执行
func TestDispatcherPreservesPerKeyOrder(t *testing.T) {
	d := newDispatcher(4)
	defer d.close()

	const n = 200
	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		i := i
		d.submit("direct_a_b", func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.Equal(t, i, got[i])
	}
}

// 不同会话键分散到多个 Worker 后全部执行完
func TestDispatcherRunsAllKeys(t *testing.T) {
	d := newDispatcher(4)
	defer d.close()

	keys := []string{"direct_a_b", "group_g1", "group_g2", "direct_c_d"}
	var mu sync.Mutex
	counts := make(map[string]int)
	var wg sync.WaitGroup
	wg.Add(len(keys) * 10)

	for _, key := range keys {
		key := key
		for i := 0; i < 10; i++ {
			d.submit(key, func() {
				mu.Lock()
				counts[key]++
				mu.Unlock()
				wg.Done()
			})
		}
	}
	wg.Wait()

	for _, key := range keys {
		assert.Equal(t, 10, counts[key])
	}
}
