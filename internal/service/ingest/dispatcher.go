package ingest

import (
	"hash/fnv"

	"go.uber.org/zap"

	"zalo_connector/pkg/constants"
)

// dispatcher 有界事件队列
// 按会话键哈希固定分配 Worker，同一会话的事件始终进同一条队列，
// 在不加全局锁的前提下保证会话内的处理顺序
type dispatcher struct {
	queues []chan func()
}

// newDispatcher 创建并启动 workerNum 个 Worker
func newDispatcher(workerNum int) *dispatcher {
	if workerNum <= 0 {
		workerNum = 4
	}
	d := &dispatcher{
		queues: make([]chan func(), workerNum),
	}
	for i := range d.queues {
		d.queues[i] = make(chan func(), constants.CHANNEL_SIZE)
		go d.runWorker(i)
	}
	return d
}

// runWorker 单个 Worker 消费循环，panic 后自动重启
func (d *dispatcher) runWorker(i int) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("ingest worker panic", zap.Int("worker", i), zap.Any("recover", rec))
			go d.runWorker(i)
		}
	}()

	for task := range d.queues[i] {
		task()
	}
}

// submit 按会话键入队，队列满时阻塞（对监听器形成背压）
func (d *dispatcher) submit(conversationKey string, task func()) {
	h := fnv.New32a()
	h.Write([]byte(conversationKey))
	d.queues[int(h.Sum32())%len(d.queues)] <- task
}

// close 关闭所有队列
func (d *dispatcher) close() {
	for _, q := range d.queues {
		close(q)
	}
}
