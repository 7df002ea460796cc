package scheduler

import (
	"context"
	"sync/atomic"

	"actr/pkg/lib"
	"actr/pkg/lib/stopper"
)

var _ IScheduler = (*BlockingScheduler)(nil)

// BlockingScheduler 由调用方提供协程的调度器
// 在希望承载 actor 的协程（例如已有的事件循环）中调用 Start，它会一直处理消息直到 Close
// Start 之前提交的任务保留在队列中
type BlockingScheduler struct {
	queue   *lib.Mpsc[Task]
	signal  chan struct{}
	started atomic.Bool
	stopper stopper.Stopper
}

func NewBlockingScheduler() *BlockingScheduler {
	return &BlockingScheduler{
		queue:  lib.NewMpsc[Task](),
		signal: make(chan struct{}, 1),
	}
}

func (s *BlockingScheduler) Schedule(task Task, _ IActor) error {
	if s.stopper.IsStop() {
		return ErrClosed
	}
	s.queue.Push(task)
	select {
	case s.signal <- struct{}{}:
	default:
	}
	return nil
}

func (s *BlockingScheduler) ActorCreated(IActor) error {
	if s.stopper.IsStop() {
		return ErrClosed
	}
	return nil
}

func (s *BlockingScheduler) ActorDisposed(IActor) {}

// Start 在当前协程中处理消息，Close 之后返回
func (s *BlockingScheduler) Start() error {
	return s.Run(context.Background())
}

// Run 与 Start 相同，ctx 结束时也会返回
func (s *BlockingScheduler) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	for {
		for !s.stopper.IsStop() {
			task, ok := s.queue.Pop()
			if !ok {
				break
			}
			run(task)
		}
		if s.stopper.IsStop() {
			return nil
		}
		select {
		case <-s.signal:
		case <-s.stopper.C():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *BlockingScheduler) Close() {
	s.stopper.Stop()
}
