package eventbus

import (
	"sync"
	"sync/atomic"
	"time"

	evbus "github.com/asaskevich/EventBus"

	"audioclassify-server-go/internal/utils"
)

// AsyncEventBus 异步事件总线：发布方不等待订阅者，事件经固定 worker 协程分发。
// 缓冲队列满时直接丢弃事件（分类结果事件只用于日志与统计，可丢）。
type AsyncEventBus struct {
	bus       evbus.Bus
	workerNum int
	workChan  chan asyncEvent
	stopChan  chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Int64
}

type asyncEvent struct {
	topic   string
	args    []interface{}
	handler func(args ...interface{})
}

// NewAsyncEventBus 创建异步事件总线
func NewAsyncEventBus(workerNum int) *AsyncEventBus {
	if workerNum <= 0 {
		workerNum = 4
	}

	return &AsyncEventBus{
		bus:       evbus.New(),
		workerNum: workerNum,
		workChan:  make(chan asyncEvent, 1000),
		stopChan:  make(chan struct{}),
	}
}

// Start 启动异步处理
func (aeb *AsyncEventBus) Start() {
	for i := 0; i < aeb.workerNum; i++ {
		aeb.wg.Add(1)
		go aeb.worker()
	}
}

// Stop 停止异步处理
func (aeb *AsyncEventBus) Stop() {
	close(aeb.stopChan)
	aeb.wg.Wait()
}

// worker 异步工作协程
func (aeb *AsyncEventBus) worker() {
	defer aeb.wg.Done()

	for {
		select {
		case <-aeb.stopChan:
			return
		case event := <-aeb.workChan:
			func() {
				defer func() {
					if r := recover(); r != nil {
						utils.DefaultLogger.WarnTag("事件", "事件处理 panic: topic=%s %v", event.topic, r)
					}
				}()
				event.handler(event.args...)
			}()
		}
	}
}

// Publish 发布事件（同步）
func (aeb *AsyncEventBus) Publish(topic string, args ...interface{}) {
	aeb.bus.Publish(topic, args...)
}

// PublishAsync 异步发布事件，队列满时丢弃并计数。
func (aeb *AsyncEventBus) PublishAsync(topic string, args ...interface{}) {
	select {
	case aeb.workChan <- asyncEvent{
		topic: topic,
		args:  args,
		handler: func(args ...interface{}) {
			aeb.bus.Publish(topic, args...)
		},
	}:
	default:
		aeb.dropped.Add(1)
	}
}

// Dropped 返回因队列满而丢弃的事件数
func (aeb *AsyncEventBus) Dropped() int64 {
	return aeb.dropped.Load()
}

// Subscribe 订阅事件
func (aeb *AsyncEventBus) Subscribe(topic string, fn interface{}) error {
	return aeb.bus.Subscribe(topic, fn)
}

// SubscribeAsync 订阅异步事件
func (aeb *AsyncEventBus) SubscribeAsync(topic string, fn interface{}) error {
	return aeb.bus.Subscribe(topic, fn)
}

// Unsubscribe 取消订阅
func (aeb *AsyncEventBus) Unsubscribe(topic string, handler interface{}) error {
	return aeb.bus.Unsubscribe(topic, handler)
}

// HasCallback 检查是否有订阅者
func (aeb *AsyncEventBus) HasCallback(topic string) bool {
	return aeb.bus.HasCallback(topic)
}

// WaitAsync 等待异步事件处理完成（用于测试）
func (aeb *AsyncEventBus) WaitAsync() {
	time.Sleep(100 * time.Millisecond)
}
