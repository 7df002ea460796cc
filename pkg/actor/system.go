/**
 * @Author: dingQingHui
 * @Description:
 * @File: system
 * @Version: 1.0.0
 * @Date: 2023/12/7 14:54
 */

package actor

import (
	"sync/atomic"
	"time"

	"actr/internal/errs"
	"actr/pkg/glog"
	"actr/pkg/lib/timex"
	"actr/pkg/regset"
	"actr/pkg/scheduler"

	"go.uber.org/zap"
)

const (
	stateActive int32 = iota
	stateShuttingDown
	stateFinalizing
	stateShutDown
)

// TerminationReason 关闭完成时 Future 携带的值
const TerminationReason = "shutdown"

// System actor 系统：默认调度器、定时器和存活 actor 的注册表
type System struct {
	name      string
	uniqId    atomic.Uint64
	actors    *regset.Set[IRef]
	scheduler scheduler.IScheduler

	timer *timex.Wheel

	state      atomic.Int32
	terminated *Future[string]
	metrics    *metrics
}

// NewSystem 创建 actor 系统，name 为空时使用配置中的名字
func NewSystem(name string, options ...Option) (*System, error) {
	opts := loadOptions(options...)
	if name != "" {
		opts.Name = name
	}
	if opts.Name == "" {
		opts.Name = DefaultConfig().Name
	}

	s := opts.Scheduler
	if s == nil {
		var err error
		s, err = scheduler.NewPoolScheduler("actr:"+opts.Name, opts.PoolSize, opts.Throughput)
		if err != nil {
			return nil, errs.ErrCreateScheduler(opts.Name, err)
		}
	}

	sys := &System{
		name:       opts.Name,
		actors:     regset.New[IRef](),
		scheduler:  s,
		timer:      timex.NewWheel(opts.TimerTick, opts.TimerWheelSize),
		terminated: newFuture[string](),
		metrics:    newMetrics(opts.Registerer, opts.Name),
	}
	glog.Info("actor system started", zap.String("system", sys.name),
		zap.Int("poolSize", opts.PoolSize), zap.Int("throughput", opts.Throughput))
	return sys, nil
}

func (s *System) Name() string { return s.name }

func (s *System) String() string { return s.name }

// Scheduler 系统默认调度器
func (s *System) Scheduler() scheduler.IScheduler { return s.scheduler }

// Len 当前注册的 actor 数量
func (s *System) Len() int { return s.actors.Len() }

func (s *System) nextID() uint64 {
	return s.uniqId.Add(1)
}

func (s *System) checkActive() error {
	switch s.state.Load() {
	case stateActive:
		return nil
	case stateShutDown:
		return errs.ErrSystemShutDown
	default:
		return errs.ErrSystemShuttingDown
	}
}

// register 先加入注册表再复查状态，保证关闭开始后加入的 actor 一定被拒绝
// 关闭流程取快照之前加入的 actor 一定在快照中
func (s *System) register(ref IRef) (regset.IRegistration, error) {
	if err := s.checkActive(); err != nil {
		return nil, err
	}
	registration := s.actors.Add(ref)
	if err := s.checkActive(); err != nil {
		registration.Remove()
		return nil, err
	}
	return registration, nil
}

// later 在 delay 之后执行 task，系统已经停止定时器时丢弃
func (s *System) later(task func(), delay time.Duration) bool {
	return s.timer.AfterFunc(delay, task)
}

// Shutdown 开始有序关闭并返回完成信号，可以重复调用
// 每个存活 actor 先处理完已经投递的动作再析构，全部析构之后停止定时器并关闭默认调度器
func (s *System) Shutdown() *Future[string] {
	if !s.state.CompareAndSwap(stateActive, stateShuttingDown) {
		return s.terminated
	}
	actors := s.actors.Copy()
	glog.Info("actor system shutting down", zap.String("system", s.name), zap.Int("actors", len(actors)))
	if len(actors) == 0 {
		s.finalize()
		return s.terminated
	}

	var remaining atomic.Int64
	remaining.Store(int64(len(actors)))
	for _, ref := range actors {
		ref.dispose(func() {
			if remaining.Add(-1) == 0 {
				s.finalize()
			}
		})
	}
	return s.terminated
}

// Terminated 关闭完成信号
func (s *System) Terminated() *Future[string] {
	return s.terminated
}

func (s *System) IsShutdown() bool {
	return s.state.Load() != stateActive
}

func (s *System) finalize() {
	s.state.Store(stateFinalizing)
	s.timer.Stop()
	s.scheduler.Close()
	s.metrics.unregister()
	s.state.Store(stateShutDown)
	glog.Info("actor system shut down", zap.String("system", s.name))
	s.terminated.complete(TerminationReason, nil)
}
