// Package scheduler 提供 actor 调度策略
// 所有策略对同一个 actor 保证 FIFO 且互斥执行，不同 actor 之间的并行度由策略自身的线程容量决定
package scheduler

import (
	"actr/internal/errs"
	"actr/pkg/glog"
	"actr/pkg/lib/workers"

	"go.uber.org/zap"
)

var (
	ErrClosed          = errs.ErrSchedulerClosed
	ErrStarted         = errs.ErrSchedulerStarted
	ErrActorNotCreated = errs.ErrActorNotScheduled
)

// DefaultThroughput 一次调度最多连续处理的消息数
const DefaultThroughput = 10

type (
	// Task 调度单元
	Task func()

	// IActor 调度器看到的 actor 身份
	IActor interface {
		ID() uint64
		Name() string
	}

	// IScheduler 调度器
	IScheduler interface {
		// Schedule 提交 actor 的一个任务
		Schedule(task Task, actor IActor) error
		// ActorCreated actor 创建时调用，用于分配 actor 独占的资源
		// 返回错误时 actor 创建失败，调度器已经关闭时返回 ErrClosed
		ActorCreated(actor IActor) error
		// ActorDisposed actor 销毁时调用，在 actor 自己的上下文中执行
		ActorDisposed(actor IActor)
		// Close 释放调度器资源
		Close()
	}

	// IExecutor 任务执行器
	IExecutor interface {
		Execute(task func()) error
		Close()
	}
)

var _ IExecutor = (*workers.Pool)(nil)

// run 执行任务并吞掉 panic，保证调度器内部计数不被破坏
func run(task Task) {
	workers.Try(task, func(err interface{}) {
		glog.Error("scheduler task panic", zap.Any("err", err), zap.Stack("stack"))
	})
}
