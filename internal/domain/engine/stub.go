package engine

import (
	"context"
	"sync/atomic"
	"time"
)

func init() {
	Register("stub", func(cfg Config) (Engine, error) {
		return NewStub(&Output{
			Labels: []string{"neutral"},
			Scores: []float32{1.0},
		}), nil
	})
}

// Stub 确定性的测试/冒烟引擎：每次 Infer 返回固定输出。
type Stub struct {
	Out   *Output
	Err   error
	Delay time.Duration

	calls atomic.Int64
}

// NewStub 创建返回固定输出的引擎
func NewStub(out *Output) *Stub {
	return &Stub{Out: out}
}

// Infer 返回预设的输出。Delay 非零时先阻塞等待，用于并发行为测试。
func (s *Stub) Infer(ctx context.Context, samples []float32) (*Output, error) {
	s.calls.Add(1)
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Out, nil
}

// Calls 返回 Infer 的调用次数
func (s *Stub) Calls() int64 {
	return s.calls.Load()
}

func (s *Stub) Close() error {
	return nil
}
