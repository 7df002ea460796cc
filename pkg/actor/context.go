// Package actor
// @Description: 执行上下文，随任务闭包传递，不依赖任何协程局部存储

package actor

import (
	"sync/atomic"

	"actr/internal/errs"
)

var _ IContext = (*actorContext)(nil)

type actorContext struct {
	current  IRef
	caller   IRef
	finished atomic.Bool
}

func newActorContext(current, caller IRef) *actorContext {
	return &actorContext{current: current, caller: caller}
}

func (a *actorContext) Current() IRef {
	if a == nil || a.finished.Load() {
		return nil
	}
	return a.current
}

func (a *actorContext) Caller() IRef {
	if a == nil || a.finished.Load() {
		return nil
	}
	return a.caller
}

func (a *actorContext) System() *System {
	if current := a.Current(); current != nil {
		return current.System()
	}
	return nil
}

// finish 任务体返回（包括 panic）后调用，之后上下文不再暴露 current / caller
func (a *actorContext) finish() {
	a.finished.Store(true)
}

// Self 返回上下文中的当前 actor，类型不匹配或不在 actor 中时返回 nil
func Self[T any](ctx IContext) *Ref[T] {
	current := currentOf(ctx)
	if current == nil {
		return nil
	}
	ref, _ := current.(*Ref[T])
	return ref
}

func currentOf(ctx IContext) IRef {
	if ctx == nil {
		return nil
	}
	return ctx.Current()
}

// callerOf ask 必须在 actor 上下文中调用，当前 actor 就是接收回复的一方
func callerOf(ctx IContext) (IRef, error) {
	caller := currentOf(ctx)
	if caller == nil {
		return nil, errs.ErrAskOutsideActor
	}
	return caller, nil
}
