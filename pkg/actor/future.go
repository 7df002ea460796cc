package actor

import (
	"context"
	"sync"
	"sync/atomic"
)

// Future 只完成一次的结果
// 通过 ask 得到的 Future 总是在发起方 actor 的上下文中完成
type Future[R any] struct {
	resolved  atomic.Bool
	done      chan struct{}
	value     R
	err       error
	mu        sync.Mutex
	callbacks []func(R, error)
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// complete 只有第一次调用生效
func (f *Future[R]) complete(value R, err error) bool {
	if !f.resolved.CompareAndSwap(false, true) {
		return false
	}
	f.value, f.err = value, err
	close(f.done)

	f.mu.Lock()
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()
	for _, cb := range callbacks {
		cb(value, err)
	}
	return true
}

// Done 完成后关闭
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[R]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait 阻塞直到完成或 ctx 结束，不要在 actor 任务中调用
func (f *Future[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// OnComplete 注册完成回调
// from 为 actor 上下文时回调投递到该 actor 执行，否则在完成方的协程中直接执行
func (f *Future[R]) OnComplete(from IContext, fn func(ctx IContext, value R, err error)) {
	if fn == nil {
		return
	}
	owner := currentOf(from)
	cb := func(value R, err error) {
		if owner == nil {
			fn(nil, value, err)
			return
		}
		owner.post(nil, func(ctx IContext) error {
			fn(ctx, value, err)
			return nil
		})
	}

	f.mu.Lock()
	if !f.IsDone() {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	cb(f.value, f.err)
}
