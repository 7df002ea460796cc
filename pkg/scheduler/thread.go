package scheduler

import (
	"fmt"

	"actr/pkg/glog"
	"actr/pkg/lib/stopper"
	"actr/pkg/lib/workers"

	"github.com/duke-git/lancet/v2/maputil"
	"go.uber.org/zap"
)

var _ IScheduler = (*ThreadScheduler)(nil)

// ThreadScheduler 单协程调度器，所有注册到它的 actor 的消息按全局顺序依次执行
type ThreadScheduler struct {
	pool *workers.Pool
}

// NewSingleThreadScheduler 所有 actor 共用一个协程
func NewSingleThreadScheduler() (*ThreadScheduler, error) {
	return newThreadScheduler("actr:single")
}

// NewDedicatedThreadScheduler 为单个 actor 准备的独占协程，通常配合 OwnedScheduler 使用
func NewDedicatedThreadScheduler(name string) (*ThreadScheduler, error) {
	return newThreadScheduler("actr:" + name)
}

func newThreadScheduler(name string) (*ThreadScheduler, error) {
	pool, err := workers.NewPool(name, 1)
	if err != nil {
		return nil, err
	}
	return &ThreadScheduler{pool: pool}, nil
}

func (s *ThreadScheduler) Schedule(task Task, _ IActor) error {
	if s.pool.IsClosed() {
		return ErrClosed
	}
	return s.pool.Execute(func() { run(task) })
}

func (s *ThreadScheduler) ActorCreated(IActor) error {
	if s.pool.IsClosed() {
		return ErrClosed
	}
	return nil
}

func (s *ThreadScheduler) ActorDisposed(IActor) {}

func (s *ThreadScheduler) Close() {
	s.pool.Close()
}

var _ IScheduler = (*ThreadPerActorScheduler)(nil)

// ThreadPerActorScheduler 每个 actor 一个独占协程，隔离性最好，开销随 actor 数量线性增长
type ThreadPerActorScheduler struct {
	name      string
	executors *maputil.ConcurrentMap[uint64, *workers.Pool]
	stopper   stopper.Stopper
}

func NewThreadPerActorScheduler(name string) *ThreadPerActorScheduler {
	if name == "" {
		name = "actr"
	}
	return &ThreadPerActorScheduler{
		name:      name,
		executors: maputil.NewConcurrentMap[uint64, *workers.Pool](32),
	}
}

func (s *ThreadPerActorScheduler) ActorCreated(actor IActor) error {
	if s.stopper.IsStop() {
		return ErrClosed
	}
	pool, err := workers.NewPool(fmt.Sprintf("actr:%s:%s", s.name, actor.Name()), 1)
	if err != nil {
		glog.Error("create actor thread failed", zap.String("actor", actor.Name()), zap.Error(err))
		return err
	}
	s.executors.Set(actor.ID(), pool)
	// Close 可能在 Set 之前遍历完毕
	if s.stopper.IsStop() {
		s.executors.Delete(actor.ID())
		pool.Close()
		return ErrClosed
	}
	return nil
}

func (s *ThreadPerActorScheduler) ActorDisposed(actor IActor) {
	pool, ok := s.executors.Get(actor.ID())
	if !ok {
		return
	}
	s.executors.Delete(actor.ID())
	pool.Close()
}

func (s *ThreadPerActorScheduler) Schedule(task Task, actor IActor) error {
	if s.stopper.IsStop() {
		return ErrClosed
	}
	pool, ok := s.executors.Get(actor.ID())
	if !ok {
		return ErrActorNotCreated
	}
	return pool.Execute(func() { run(task) })
}

// Live 当前持有独占协程的 actor 数量
func (s *ThreadPerActorScheduler) Live() int {
	var n int
	s.executors.Range(func(uint64, *workers.Pool) bool {
		n++
		return true
	})
	return n
}

func (s *ThreadPerActorScheduler) Close() {
	if !s.stopper.Stop() {
		return
	}
	s.executors.Range(func(id uint64, pool *workers.Pool) bool {
		pool.Close()
		return true
	})
}
