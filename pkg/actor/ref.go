/**
 * @Author: dingQingHui
 * @Description: actor 句柄
 * @File: ref
 * @Version: 1.0.0
 * @Date: 2023/12/7 14:54
 */

package actor

import (
	"fmt"
	"sync/atomic"
	"time"

	"actr/internal/errs"
	"actr/pkg/glog"
	"actr/pkg/regset"
	"actr/pkg/scheduler"

	"go.uber.org/zap"
)

var _ IRef = (*Ref[int])(nil)

type box[T any] struct {
	state T
}

// registrationHandle 在 Build 和析构之间交接注册令牌
type registrationHandle struct {
	regset.IRegistration
}

// released 析构已经完成的标记，之后交上来的令牌直接删除
var released = &registrationHandle{}

// Ref actor 句柄，状态只能通过投递到邮箱的动作访问
// 同一个 actor 的动作互斥执行，同一发送者投递的动作按投递顺序执行
type Ref[T any] struct {
	id     uint64
	name   string
	system *System

	scheduler        scheduler.IScheduler
	ownsScheduler    bool
	exceptionHandler ExceptionHandler[T]
	destructor       Destructor[T]

	state        atomic.Pointer[box[T]]
	registration atomic.Pointer[registrationHandle]
	disposing    atomic.Bool
	disposed     chan struct{}
}

func (r *Ref[T]) ID() uint64 { return r.id }

func (r *Ref[T]) Name() string { return r.name }

func (r *Ref[T]) System() *System { return r.system }

func (r *Ref[T]) String() string {
	return fmt.Sprintf("[Actor: %s]", r.name)
}

// Tell 异步投递动作，立即返回
// from 为发送方所在的上下文，actor 之外传 nil；actor 已销毁时静默丢弃
func (r *Ref[T]) Tell(from IContext, action Action[T]) {
	if action == nil {
		return
	}
	r.schedule(currentOf(from), action, r.handleError)
}

// Later 延迟 delay 之后投递动作，发送方在调用时确定
// 系统关闭后或到期时 actor 已销毁则丢弃
func (r *Ref[T]) Later(from IContext, action Action[T], delay time.Duration) {
	if action == nil {
		return
	}
	caller := currentOf(from)
	r.system.later(func() {
		if r.state.Load() == nil {
			return
		}
		r.schedule(caller, action, r.handleError)
	}, delay)
}

// Close 销毁 actor：之前投递的动作处理完后执行析构，之后的投递被丢弃
// 可以重复调用
func (r *Ref[T]) Close() {
	r.dispose(nil)
}

// Done actor 完全销毁后关闭
func (r *Ref[T]) Done() <-chan struct{} {
	return r.disposed
}

func (r *Ref[T]) post(caller IRef, task func(ctx IContext) error) {
	r.schedule(caller, func(ctx IContext, _ T) error {
		return task(ctx)
	}, r.handleError)
}

// schedule 包装动作并提交给调度器，onError 在 actor 自己的上下文中处理动作的错误
func (r *Ref[T]) schedule(caller IRef, action Action[T], onError ExceptionHandler[T]) {
	err := r.scheduler.Schedule(func() {
		b := r.state.Load()
		if b == nil {
			return
		}
		ctx := newActorContext(r, caller)
		defer ctx.finish()
		if err := r.invoke(ctx, b.state, action); err != nil {
			r.system.metrics.exception()
			r.handle(ctx, b.state, err, onError)
		}
	}, r)
	if err != nil {
		glog.Debug("actor message dropped", zap.Stringer("actor", r), zap.Error(err))
		return
	}
	r.system.metrics.message()
}

func (r *Ref[T]) invoke(ctx IContext, state T, action Action[T]) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errs.ErrActionPanic(r.name, rec)
		}
	}()
	return action(ctx, state)
}

func (r *Ref[T]) handle(ctx IContext, state T, err error, onError ExceptionHandler[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			glog.Error("actor exception handler panic", zap.Stringer("actor", r),
				zap.Error(err), zap.Any("panic", rec), zap.Stack("stack"))
		}
	}()
	onError(ctx, state, err)
}

func (r *Ref[T]) handleError(ctx IContext, state T, err error) {
	r.exceptionHandler(ctx, state, err)
}

func (r *Ref[T]) dispose(whenFinished func()) {
	if !r.disposing.CompareAndSwap(false, true) {
		if whenFinished != nil {
			go func() {
				<-r.disposed
				whenFinished()
			}()
		}
		return
	}

	terminate := func() {
		if b := r.state.Load(); b != nil && r.destructor != nil {
			ctx := newActorContext(r, nil)
			r.destroy(ctx, b.state)
			ctx.finish()
		}
		r.release()
		if whenFinished != nil {
			whenFinished()
		}
	}
	if err := r.scheduler.Schedule(terminate, r); err != nil {
		// 调度器已经不接受任务，直接在当前协程完成清理
		glog.Warn("actor disposed outside its scheduler", zap.Stringer("actor", r), zap.Error(err))
		terminate()
	}
}

func (r *Ref[T]) destroy(ctx IContext, state T) {
	defer func() {
		if rec := recover(); rec != nil {
			glog.Error("actor destructor panic", zap.Stringer("actor", r), zap.Any("panic", rec), zap.Stack("stack"))
		}
	}()
	if err := r.destructor(ctx, state); err != nil {
		glog.Error("actor destructor failed", zap.Stringer("actor", r), zap.Error(err))
	}
}

// release 析构之后释放 actor 持有的一切资源
func (r *Ref[T]) release() {
	if old := r.registration.Swap(released); old != nil && old != released {
		old.Remove()
	}
	r.scheduler.ActorDisposed(r)
	if r.ownsScheduler {
		r.scheduler.Close()
	}
	r.state.Store(nil)
	r.system.metrics.disposed()
	close(r.disposed)
	glog.Debug("actor disposed", zap.Stringer("actor", r))
}

// attach 保存注册令牌，actor 已经析构时立即删除
func (r *Ref[T]) attach(registration regset.IRegistration) {
	if old := r.registration.Swap(&registrationHandle{registration}); old == released {
		registration.Remove()
	}
}

// defaultExceptionHandler 只记录日志
func defaultExceptionHandler[T any](ctx IContext, _ T, err error) {
	glog.Error("actor action failed", zap.Stringer("actor", ctx.Current()), zap.Error(err))
}
