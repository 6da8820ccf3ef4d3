// Package inference 提供有界的推理工作池。
// 模型推理是同步重计算，必须挪出请求处理协程，且并发上限要可配置，
// 否则请求洪峰会把引擎和内存直接打爆。
package inference

import (
	"context"
	"sync"
	"sync/atomic"

	platformerrors "audioclassify-server-go/internal/platform/errors"
	"audioclassify-server-go/internal/platform/metrics"
)

// Config 工作池配置
type Config struct {
	Workers   int // 并发执行任务的协程数
	QueueSize int // 等待队列长度，0 表示无缓冲
}

// DefaultConfig 默认池配置
func DefaultConfig() Config {
	return Config{Workers: 2, QueueSize: 64}
}

type task struct {
	fn   func()
	done chan struct{}
}

// Pool 固定大小的推理工作池。任务一旦开始执行就不会被取消，
// 只有排队等待的任务遵循调用方的 context。
type Pool struct {
	tasks  chan task
	stopCh chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool

	submitted atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
	busy      atomic.Int64
}

// New 创建并启动工作池
func New(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}

	p := &Pool{
		tasks:  make(chan task, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case t := <-p.tasks:
			metrics.PoolQueued.Set(float64(len(p.tasks)))
			p.busy.Add(1)
			metrics.PoolBusy.Inc()
			t.fn()
			p.busy.Add(-1)
			metrics.PoolBusy.Dec()
			p.completed.Add(1)
			close(t.done)
		}
	}
}

// Do 提交任务并等待其执行完毕。
// 入队等待阶段遵循 ctx 取消，任务开始执行后则一直等到结束。
func (p *Pool) Do(ctx context.Context, fn func()) error {
	if p.closed.Load() {
		p.rejected.Add(1)
		return platformerrors.New(platformerrors.KindClassify, "inference.do", "推理工作池已关闭")
	}

	t := task{fn: fn, done: make(chan struct{})}

	select {
	case p.tasks <- t:
		p.submitted.Add(1)
		metrics.PoolQueued.Set(float64(len(p.tasks)))
	case <-ctx.Done():
		p.rejected.Add(1)
		return platformerrors.Wrap(platformerrors.KindClassify, "inference.do", "等待推理工作池超时", ctx.Err())
	case <-p.stopCh:
		p.rejected.Add(1)
		return platformerrors.New(platformerrors.KindClassify, "inference.do", "推理工作池已关闭")
	}

	<-t.done
	return nil
}

// Stats 池的运行统计
type Stats struct {
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Rejected  int64 `json:"rejected"`
	Busy      int64 `json:"busy"`
	Queued    int   `json:"queued"`
}

// Stats 返回当前统计快照
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Rejected:  p.rejected.Load(),
		Busy:      p.busy.Load(),
		Queued:    len(p.tasks),
	}
}

// Close 停止接收新任务并等待工作协程退出。已在执行的任务会跑完。
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	close(p.stopCh)
	p.wg.Wait()
}
