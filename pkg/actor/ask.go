package actor

import (
	"sync/atomic"

	"actr/internal/errs"
	"actr/pkg/glog"

	"go.uber.org/zap"
)

// Ask 在目标 actor 中执行 call，返回值投递回发起方 actor 交给 onResult
// 必须在 actor 上下文中调用；call 出错时交给目标 actor 的异常处理器，onResult 不会被调用
func Ask[T, R any](from IContext, target *Ref[T],
	call func(ctx IContext, state T) (R, error),
	onResult func(ctx IContext, result R)) error {
	if call == nil || onResult == nil {
		return errs.ErrActionIsNil
	}
	return AskAsync(from, target, func(ctx IContext, state T, reply func(R)) error {
		result, err := call(ctx, state)
		if err != nil {
			return err
		}
		reply(result)
		return nil
	}, onResult)
}

// AskAsync 与 Ask 相同，但结果通过 reply 给出，可以在之后的任意任务中调用
// reply 只有第一次调用生效
func AskAsync[T, R any](from IContext, target *Ref[T],
	call func(ctx IContext, state T, reply func(R)) error,
	onResult func(ctx IContext, result R)) error {
	if call == nil || onResult == nil {
		return errs.ErrActionIsNil
	}
	caller, err := callerOf(from)
	if err != nil {
		return err
	}
	reply := replyOnce(target, func(result R) {
		caller.post(target, func(ctx IContext) error {
			onResult(ctx, result)
			return nil
		})
	})
	target.schedule(caller, func(ctx IContext, state T) error {
		return call(ctx, state, reply)
	}, target.handleError)
	return nil
}

// AskFuture 与 Ask 相同，结果以 Future 形式返回
// call 出错时 Future 以该错误完成，目标 actor 的异常处理器不会被调用
func AskFuture[T, R any](from IContext, target *Ref[T],
	call func(ctx IContext, state T) (R, error)) (*Future[R], error) {
	if call == nil {
		return nil, errs.ErrActionIsNil
	}
	return AskAsyncFuture(from, target, func(ctx IContext, state T, reply func(R)) error {
		result, err := call(ctx, state)
		if err != nil {
			return err
		}
		reply(result)
		return nil
	})
}

// AskAsyncFuture AskAsync 的 Future 形式
func AskAsyncFuture[T, R any](from IContext, target *Ref[T],
	call func(ctx IContext, state T, reply func(R)) error) (*Future[R], error) {
	if call == nil {
		return nil, errs.ErrActionIsNil
	}
	caller, err := callerOf(from)
	if err != nil {
		return nil, err
	}
	future := newFuture[R]()
	settle := func(result R, err error) {
		caller.post(target, func(IContext) error {
			future.complete(result, err)
			return nil
		})
	}
	reply := replyOnce(target, func(result R) {
		settle(result, nil)
	})
	target.schedule(caller, func(ctx IContext, state T) error {
		return call(ctx, state, reply)
	}, func(_ IContext, _ T, err error) {
		var zero R
		settle(zero, err)
	})
	return future, nil
}

func replyOnce[R any](target IRef, deliver func(R)) func(R) {
	var replied atomic.Bool
	return func(result R) {
		if !replied.CompareAndSwap(false, true) {
			glog.Warn("ask replied more than once", zap.Stringer("actor", target))
			return
		}
		deliver(result)
	}
}
