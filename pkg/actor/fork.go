package actor

import (
	"actr/internal/errs"
	"actr/pkg/scheduler"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/duke-git/lancet/v2/slice"
)

// ForkBuilder 为每个 id 创建一个临时 actor 并行执行同一个动作，全部返回后在发起方汇总结果
// 每个临时 actor 在交回结果后销毁
type ForkBuilder[I comparable, T, R any] struct {
	system      *System
	ids         []I
	constructor func(id I) T
	scheduler   func(id I) scheduler.IScheduler
	owned       bool
}

// Fork 重复的 id 只保留第一个
func Fork[I comparable, T, R any](system *System, ids []I) *ForkBuilder[I, T, R] {
	return &ForkBuilder[I, T, R]{
		system: system,
		ids:    slice.Unique(ids),
	}
}

func (f *ForkBuilder[I, T, R]) Constructor(constructor func(id I) T) *ForkBuilder[I, T, R] {
	f.constructor = constructor
	return f
}

// Scheduler 为每个 id 指定调度器，返回 nil 时使用系统默认调度器，调度器由调用方关闭
func (f *ForkBuilder[I, T, R]) Scheduler(s func(id I) scheduler.IScheduler) *ForkBuilder[I, T, R] {
	f.scheduler = s
	f.owned = false
	return f
}

// OwnedScheduler 与 Scheduler 相同，但调度器随对应的临时 actor 一起关闭
func (f *ForkBuilder[I, T, R]) OwnedScheduler(s func(id I) scheduler.IScheduler) *ForkBuilder[I, T, R] {
	f.scheduler = s
	f.owned = true
	return f
}

// Ask 在每个临时 actor 中执行 action，全部完成后在发起方上下文中调用 join
// 某个 action 出错时记录日志并销毁对应的临时 actor，该 id 没有结果，join 不会被调用
func (f *ForkBuilder[I, T, R]) Ask(from IContext,
	action func(ctx IContext, id I, state T) (R, error),
	join func(ctx IContext, results map[I]R)) error {
	if action == nil {
		return errs.ErrActionIsNil
	}
	return f.AskAsync(from, func(ctx IContext, id I, state T, reply func(R)) error {
		result, err := action(ctx, id, state)
		if err != nil {
			return err
		}
		reply(result)
		return nil
	}, join)
}

// AskAsync 结果通过 reply 给出的 Ask
func (f *ForkBuilder[I, T, R]) AskAsync(from IContext,
	action func(ctx IContext, id I, state T, reply func(R)) error,
	join func(ctx IContext, results map[I]R)) error {
	if action == nil || join == nil {
		return errs.ErrActionIsNil
	}
	if f.constructor == nil {
		return errs.ErrNoObjectOrConstructor
	}
	caller, err := callerOf(from)
	if err != nil {
		return err
	}
	if len(f.ids) == 0 {
		caller.post(nil, func(ctx IContext) error {
			join(ctx, map[I]R{})
			return nil
		})
		return nil
	}

	refs, err := f.spawn()
	if err != nil {
		return err
	}

	total := len(f.ids)
	results := maputil.NewConcurrentMap[I, R](16)
	collected := 0
	for i, ref := range refs {
		id, ref := f.ids[i], ref
		err := AskAsync(from, ref, func(ctx IContext, state T, reply func(R)) error {
			return action(ctx, id, state, reply)
		}, func(ctx IContext, result R) {
			ref.Close()
			results.Set(id, result)
			// 回调都在发起方 actor 中串行执行
			if collected++; collected == total {
				join(ctx, snapshot(results))
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// spawn 为每个 id 创建临时 actor，任何一个失败时销毁已经创建的
func (f *ForkBuilder[I, T, R]) spawn() ([]*Ref[T], error) {
	refs := make([]*Ref[T], 0, len(f.ids))
	for _, id := range f.ids {
		id := id
		b := NewBuilder[T](f.system).
			Constructor(func() T { return f.constructor(id) }).
			ExceptionHandler(forkExceptionHandler[T])
		if f.scheduler != nil {
			if s := f.scheduler(id); s != nil {
				if f.owned {
					b.OwnedScheduler(s)
				} else {
					b.Scheduler(s)
				}
			}
		}
		ref, err := b.Build()
		if err != nil {
			for _, created := range refs {
				created.Close()
			}
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func forkExceptionHandler[T any](ctx IContext, state T, err error) {
	defaultExceptionHandler(ctx, state, err)
	ctx.Current().Close()
}

func snapshot[I comparable, R any](results *maputil.ConcurrentMap[I, R]) map[I]R {
	collected := make(map[I]R)
	results.Range(func(id I, result R) bool {
		collected[id] = result
		return true
	})
	return collected
}
