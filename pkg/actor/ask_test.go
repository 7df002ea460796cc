package actor

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observed struct {
	current IRef
	caller  IRef
	system  *System
}

func observe(ctx IContext) observed {
	return observed{current: ctx.Current(), caller: ctx.Caller(), system: ctx.System()}
}

func TestContext_TellFromOutside(t *testing.T) {
	sys := newTestSystem(t)
	c, err := ActorOf(sys, newCounter)
	require.NoError(t, err)

	got := make(chan observed, 1)
	leaked := make(chan IContext, 1)
	c.Tell(nil, func(ctx IContext, _ *counter) error {
		got <- observe(ctx)
		leaked <- ctx
		return nil
	})
	o := recv(t, got)
	require.Same(t, c, o.current)
	require.Nil(t, o.caller)
	require.Same(t, sys, o.system)

	// 任务结束后上下文失效
	ctx := recv(t, leaked)
	require.Eventually(t, func() bool { return ctx.Current() == nil }, time.Second, time.Millisecond)
	require.Nil(t, ctx.Caller())
	require.Nil(t, ctx.System())
	require.Nil(t, Self[*counter](ctx))
}

func TestContext_TellBetweenActors(t *testing.T) {
	sys := newTestSystem(t)
	c, err := ActorOf(sys, newCounter)
	require.NoError(t, err)

	got := make(chan observed, 1)
	self := make(chan bool, 1)
	host := within(t, sys, func(ctx IContext) {
		c.Tell(ctx, func(ctx IContext, _ *counter) error {
			got <- observe(ctx)
			self <- Self[*counter](ctx) == c && Self[string](ctx) == nil
			return nil
		})
	})
	o := recv(t, got)
	require.Same(t, c, o.current)
	require.Same(t, host, o.caller)
	require.True(t, recv(t, self))
}

func TestAsk_ContextOnBothSides(t *testing.T) {
	sys := newTestSystem(t)
	c, err := ActorOf(sys, newCounter, "target")
	require.NoError(t, err)

	inCall := make(chan observed, 1)
	inReply := make(chan observed, 1)
	host := within(t, sys, func(ctx IContext) {
		assert.NoError(t, Ask(ctx, c, func(ctx IContext, s *counter) (int, error) {
			inCall <- observe(ctx)
			return s.value, nil
		}, func(ctx IContext, _ int) {
			inReply <- observe(ctx)
		}))
	})

	call := recv(t, inCall)
	require.Same(t, c, call.current)
	require.Same(t, host, call.caller)

	reply := recv(t, inReply)
	require.Same(t, host, reply.current)
	require.Same(t, c, reply.caller)
}

func TestAsk_OutsideActor(t *testing.T) {
	sys := newTestSystem(t)
	c, err := ActorOf(sys, newCounter)
	require.NoError(t, err)

	query := func(_ IContext, s *counter) (int, error) { return s.value, nil }
	require.ErrorIs(t, Ask(nil, c, query, func(IContext, int) {}), ErrAskOutsideActor)
	_, err = AskFuture(nil, c, query)
	require.ErrorIs(t, err, ErrAskOutsideActor)
	require.ErrorIs(t, Ask[*counter, int](nil, c, nil, nil), ErrActionIsNil)
}

// TestAskAsync_DeferredReply 目标 actor 先保存 reply，在之后的消息中才回复
func TestAskAsync_DeferredReply(t *testing.T) {
	sys := newTestSystem(t)
	type waiter struct{ pending []func(int) }
	w, err := ActorOf(sys, func() *waiter { return &waiter{} })
	require.NoError(t, err)

	replies := make(chan int, 4)
	asked := make(chan struct{})
	within(t, sys, func(ctx IContext) {
		assert.NoError(t, AskAsync(ctx, w, func(_ IContext, s *waiter, reply func(int)) error {
			s.pending = append(s.pending, reply)
			return nil
		}, func(_ IContext, v int) {
			replies <- v
		}))
		close(asked)
	})
	recv(t, asked)
	w.Tell(nil, func(_ IContext, s *waiter) error {
		for _, reply := range s.pending {
			reply(42)
			reply(43)
		}
		return nil
	})

	require.Equal(t, 42, recv(t, replies))
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, replies)
}

func TestAsk_ErrorGoesToTargetHandler(t *testing.T) {
	sys := newTestSystem(t)
	handled := make(chan error, 1)
	c, err := NewBuilder[*counter](sys).
		Constructor(newCounter).
		ExceptionHandler(func(_ IContext, _ *counter, err error) { handled <- err }).
		Build()
	require.NoError(t, err)

	within(t, sys, func(ctx IContext) {
		assert.NoError(t, Ask(ctx, c, func(IContext, *counter) (int, error) {
			return 0, errors.New("no answer")
		}, func(IContext, int) {
			t.Error("reply after failed call")
		}))
	})
	require.EqualError(t, recv(t, handled), "no answer")
}

func TestAskFuture(t *testing.T) {
	sys := newTestSystem(t)
	handled := make(chan error, 1)
	c, err := NewBuilder[*counter](sys).
		Object(&counter{value: 7}).
		ExceptionHandler(func(_ IContext, _ *counter, err error) { handled <- err }).
		Build()
	require.NoError(t, err)

	futures := make(chan [2]*Future[int], 1)
	completed := make(chan observed, 1)
	host := within(t, sys, func(ctx IContext) {
		ok, err := AskFuture(ctx, c, func(_ IContext, s *counter) (int, error) {
			return s.value, nil
		})
		assert.NoError(t, err)
		bad, err := AskFuture(ctx, c, func(IContext, *counter) (int, error) {
			return 0, errors.New("bad")
		})
		assert.NoError(t, err)
		ok.OnComplete(ctx, func(ctx IContext, _ int, _ error) {
			completed <- observe(ctx)
		})
		futures <- [2]*Future[int]{ok, bad}
	})

	pair := recv(t, futures)
	wait, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	value, err := pair[0].Wait(wait)
	require.NoError(t, err)
	require.Equal(t, 7, value)
	_, err = pair[1].Wait(wait)
	require.EqualError(t, err, "bad")

	require.Same(t, host, recv(t, completed).current)
	require.Empty(t, handled)

	// 已完成的 Future 在 actor 之外注册回调时立即执行
	called := false
	pair[0].OnComplete(nil, func(ctx IContext, v int, err error) {
		called = ctx == nil && v == 7 && err == nil
	})
	require.True(t, called)
}

func TestAskAsyncFuture_PanicRejects(t *testing.T) {
	sys := newTestSystem(t)
	c, err := ActorOf(sys, newCounter)
	require.NoError(t, err)

	futures := make(chan *Future[string], 1)
	within(t, sys, func(ctx IContext) {
		f, err := AskAsyncFuture(ctx, c, func(IContext, *counter, func(string)) error {
			panic("lost")
		})
		assert.NoError(t, err)
		futures <- f
	})
	f := recv(t, futures)
	wait, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = f.Wait(wait)
	require.ErrorContains(t, err, "lost")
}

func TestFuture_WaitTimeout(t *testing.T) {
	f := newFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.True(t, f.complete(1, nil))
	require.False(t, f.complete(2, nil))
	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, v)
}
