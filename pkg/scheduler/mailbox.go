/**
 * @Author: dingQingHui
 * @Description:
 * @File: mailbox
 * @Version: 1.0.0
 * @Date: 2024/10/15 14:27
 */

package scheduler

import (
	"runtime"
	"sync/atomic"

	"actr/pkg/glog"
	"actr/pkg/lib"
	"actr/pkg/lib/stopper"
	"actr/pkg/lib/workers"

	"github.com/duke-git/lancet/v2/maputil"
	"go.uber.org/zap"
)

// mailbox actor 的邮箱：无锁队列 + 待处理计数
// 计数从 0 变为 1 的那次入队负责提交处理任务，因此同一时刻只有一个处理任务在运行
type mailbox struct {
	queue   *lib.Mpsc[Task]
	pending atomic.Int64
}

func newMailbox() *mailbox {
	return &mailbox{queue: lib.NewMpsc[Task]()}
}

var _ IScheduler = (*MailboxScheduler)(nil)

// MailboxScheduler 基于执行器的邮箱调度器
type MailboxScheduler struct {
	executor   IExecutor
	owned      bool
	throughput int
	boxes      *maputil.ConcurrentMap[uint64, *mailbox]
	stopper    stopper.Stopper
}

// NewExecutorScheduler 基于外部提供的执行器创建调度器，Close 时一并关闭执行器
func NewExecutorScheduler(executor IExecutor, throughput int) *MailboxScheduler {
	return newMailboxScheduler(executor, true, throughput)
}

// NewSharedPoolScheduler 基于进程级共享协程池创建调度器，Close 不会关闭共享池
func NewSharedPoolScheduler(throughput int) *MailboxScheduler {
	return newMailboxScheduler(workers.Shared(), false, throughput)
}

// NewFixedPoolScheduler 基于固定数量协程的协程池创建调度器
func NewFixedPoolScheduler(threads, throughput int) (*MailboxScheduler, error) {
	return NewPoolScheduler("actr:fixed", threads, throughput)
}

// NewPoolScheduler 创建独占一个命名协程池的调度器，threads <= 0 时使用 GOMAXPROCS
func NewPoolScheduler(name string, threads, throughput int) (*MailboxScheduler, error) {
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	pool, err := workers.NewPool(name, threads)
	if err != nil {
		return nil, err
	}
	return newMailboxScheduler(pool, true, throughput), nil
}

func newMailboxScheduler(executor IExecutor, owned bool, throughput int) *MailboxScheduler {
	if throughput <= 0 {
		throughput = DefaultThroughput
	}
	return &MailboxScheduler{
		executor:   executor,
		owned:      owned,
		throughput: throughput,
		boxes:      maputil.NewConcurrentMap[uint64, *mailbox](32),
	}
}

func (s *MailboxScheduler) Throughput() int {
	return s.throughput
}

func (s *MailboxScheduler) ActorCreated(actor IActor) error {
	if s.stopper.IsStop() {
		return ErrClosed
	}
	s.boxes.Set(actor.ID(), newMailbox())
	return nil
}

func (s *MailboxScheduler) ActorDisposed(actor IActor) {
	s.boxes.Delete(actor.ID())
}

// Schedule 入队并在邮箱空闲时提交处理任务
func (s *MailboxScheduler) Schedule(task Task, actor IActor) error {
	if s.stopper.IsStop() {
		return ErrClosed
	}
	mb, ok := s.boxes.Get(actor.ID())
	if !ok {
		return ErrActorNotCreated
	}
	mb.queue.Push(task)
	if mb.pending.Add(1) == 1 {
		return s.submit(mb)
	}
	return nil
}

func (s *MailboxScheduler) submit(mb *mailbox) error {
	if err := s.executor.Execute(func() { s.process(mb) }); err != nil {
		glog.Debug("mailbox submit failed", zap.Error(err))
		return err
	}
	return nil
}

// process 最多处理 throughput 条消息，还有剩余时重新提交自己而不是占住当前协程
func (s *MailboxScheduler) process(mb *mailbox) {
	var processed int64
	for processed < int64(s.throughput) {
		task, ok := mb.queue.Pop()
		if !ok {
			break
		}
		run(task)
		processed++
	}
	if remaining := mb.pending.Add(-processed); remaining > 0 {
		_ = s.submit(mb)
	}
}

// Close 拒绝新任务，独占的执行器一并关闭
func (s *MailboxScheduler) Close() {
	if !s.stopper.Stop() {
		return
	}
	if s.owned {
		s.executor.Close()
	}
}
