package actor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("github.com/panjf2000/ants/v2.(*poolCommon).purgeStaleWorkers"),
		goleak.IgnoreAnyFunction("github.com/panjf2000/ants/v2.(*poolCommon).ticktock"),
	)
}

type counter struct {
	value int
}

func newCounter() *counter { return &counter{} }

func increment(_ IContext, c *counter) error {
	c.value++
	return nil
}

func newTestSystem(t *testing.T, options ...Option) *System {
	t.Helper()
	sys, err := NewSystem(t.Name(), append([]Option{WithPoolSize(4)}, options...)...)
	require.NoError(t, err)
	t.Cleanup(func() { shutdown(t, sys) })
	return sys
}

func shutdown(t *testing.T, sys *System) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	reason, err := sys.Shutdown().Wait(ctx)
	require.NoError(t, err)
	return reason
}

// within 在一个临时 actor 中执行 fn，用于需要 actor 上下文的调用
func within(t *testing.T, sys *System, fn func(ctx IContext)) *Ref[struct{}] {
	t.Helper()
	host, err := NewBuilder[struct{}](sys).Object(struct{}{}).Name("host").Build()
	require.NoError(t, err)
	host.Tell(nil, func(ctx IContext, _ struct{}) error {
		fn(ctx)
		return nil
	})
	return host
}

func recv[V any](t *testing.T, ch <-chan V) V {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for actor")
	}
	var zero V
	return zero
}

func TestSystem_TellThenAsk(t *testing.T) {
	sys := newTestSystem(t)
	c, err := ActorOf(sys, newCounter)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		c.Tell(nil, increment)
	}
	got := make(chan int, 1)
	within(t, sys, func(ctx IContext) {
		assert.NoError(t, Ask(ctx, c, func(_ IContext, s *counter) (int, error) {
			return s.value, nil
		}, func(_ IContext, value int) {
			got <- value
		}))
	})
	require.Equal(t, 1000, recv(t, got))
}

func TestSystem_LaterOrdering(t *testing.T) {
	sys := newTestSystem(t)
	type recorder struct{ events []string }
	r, err := ActorOf(sys, func() *recorder { return &recorder{} })
	require.NoError(t, err)

	done := make(chan []string, 1)
	record := func(event string) Action[*recorder] {
		return func(_ IContext, s *recorder) error {
			s.events = append(s.events, event)
			if len(s.events) == 3 {
				done <- append([]string(nil), s.events...)
			}
			return nil
		}
	}

	start := time.Now()
	r.Later(nil, record("B"), 200*time.Millisecond)
	r.Later(nil, record("A"), 100*time.Millisecond)
	r.Tell(nil, record("C"))

	require.Equal(t, []string{"C", "A", "B"}, recv(t, done))
	require.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestSystem_LaterCapturesCaller(t *testing.T) {
	sys := newTestSystem(t)
	c, err := ActorOf(sys, newCounter)
	require.NoError(t, err)

	type seen struct{ current, caller IRef }
	got := make(chan seen, 1)
	host := within(t, sys, func(ctx IContext) {
		c.Later(ctx, func(ctx IContext, _ *counter) error {
			got <- seen{ctx.Current(), ctx.Caller()}
			return nil
		}, 10*time.Millisecond)
	})
	s := recv(t, got)
	require.Same(t, c, s.current)
	require.Same(t, host, s.caller)
}

func TestSystem_ShutdownDrainsMailboxes(t *testing.T) {
	sys := newTestSystem(t)
	destroyed := make(chan int, 1)
	ref, err := NewBuilder[*counter](sys).
		Constructor(newCounter).
		Destructor(func(ctx IContext, s *counter) error {
			assert.Same(t, Self[*counter](ctx), ctx.Current())
			destroyed <- s.value
			return nil
		}).
		Build()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		ref.Tell(nil, func(ctx IContext, s *counter) error {
			time.Sleep(time.Millisecond)
			return increment(ctx, s)
		})
	}
	require.Equal(t, TerminationReason, shutdown(t, sys))
	require.Equal(t, 10, recv(t, destroyed))
	require.Zero(t, sys.Len())
	require.True(t, sys.IsShutdown())
	require.True(t, sys.Terminated().IsDone())

	_, err = ActorOf(sys, newCounter)
	require.ErrorIs(t, err, ErrSystemShutDown)

	// 销毁后的投递静默丢弃
	ref.Tell(nil, func(IContext, *counter) error {
		t.Error("action delivered to disposed actor")
		return nil
	})
	ref.Later(nil, increment, time.Millisecond)
	require.Same(t, sys.Terminated(), sys.Shutdown())
}

func TestSystem_ShutdownEmpty(t *testing.T) {
	sys, err := NewSystem("empty")
	require.NoError(t, err)
	require.Equal(t, TerminationReason, shutdown(t, sys))
	require.Equal(t, TerminationReason, shutdown(t, sys))
}

func TestSystem_ExceptionHandlerShutsDown(t *testing.T) {
	sys := newTestSystem(t)
	got := make(chan error, 1)
	ref, err := NewBuilder[*counter](sys).
		Constructor(newCounter).
		ExceptionHandler(func(ctx IContext, _ *counter, err error) {
			got <- err
			ctx.System().Shutdown()
		}).
		Build()
	require.NoError(t, err)

	ref.Tell(nil, func(IContext, *counter) error {
		return errors.New("oops")
	})
	require.EqualError(t, recv(t, got), "oops")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reason, err := sys.Terminated().Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, TerminationReason, reason)
}

func TestSystem_PanicIsRoutedToHandler(t *testing.T) {
	sys := newTestSystem(t)
	got := make(chan error, 1)
	ref, err := NewBuilder[*counter](sys).
		Constructor(newCounter).
		ExceptionHandler(func(_ IContext, _ *counter, err error) { got <- err }).
		Build()
	require.NoError(t, err)

	ref.Tell(nil, func(IContext, *counter) error { panic("boom") })
	require.ErrorContains(t, recv(t, got), "boom")

	value := make(chan int, 1)
	ref.Tell(nil, func(ctx IContext, s *counter) error {
		value <- s.value + 1
		return nil
	})
	require.Equal(t, 1, recv(t, value))
}

func TestSystem_ManyActors(t *testing.T) {
	if testing.Short() {
		t.Skip("creates 100k actors")
	}
	const n = 100_000
	sys := newTestSystem(t, WithPoolSize(8))
	refs := make([]*Ref[*counter], n)
	for i := range refs {
		var err error
		refs[i], err = ActorOf(sys, newCounter)
		require.NoError(t, err)
	}
	require.Equal(t, n, sys.Len())

	var wg sync.WaitGroup
	wg.Add(n)
	for _, ref := range refs {
		ref.Tell(nil, func(ctx IContext, s *counter) error {
			defer wg.Done()
			return increment(ctx, s)
		})
	}
	wg.Wait()

	require.Equal(t, TerminationReason, shutdown(t, sys))
	require.Zero(t, sys.Len())
	for _, ref := range refs[:100] {
		<-ref.Done()
	}
}

// TestSystem_RegisterDuringShutdown 注册成功的 actor 一定在关闭完成前被销毁
func TestSystem_RegisterDuringShutdown(t *testing.T) {
	sys, err := NewSystem("racing", WithPoolSize(4))
	require.NoError(t, err)

	var (
		mu      sync.Mutex
		created []*Ref[*counter]
		wg      sync.WaitGroup
		started = make(chan struct{})
		once    sync.Once
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				ref, err := ActorOf(sys, newCounter)
				once.Do(func() { close(started) })
				if err != nil {
					assert.True(t, errors.Is(err, ErrSystemShuttingDown) || errors.Is(err, ErrSystemShutDown), err)
					return
				}
				mu.Lock()
				created = append(created, ref)
				mu.Unlock()
			}
		}()
	}
	<-started
	require.Equal(t, TerminationReason, shutdown(t, sys))
	wg.Wait()

	for _, ref := range created {
		select {
		case <-ref.Done():
		default:
			t.Fatalf("%s registered but not disposed", ref)
		}
	}
	require.Zero(t, sys.Len())
}

func TestSystem_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sys, err := NewSystem("metered", WithPoolSize(2), WithRegisterer(reg))
	require.NoError(t, err)

	failed := make(chan struct{})
	refs := make([]*Ref[*counter], 3)
	for i := range refs {
		refs[i], err = NewBuilder[*counter](sys).
			Constructor(newCounter).
			ExceptionHandler(func(IContext, *counter, error) { close(failed) }).
			Build()
		require.NoError(t, err)
	}
	require.Equal(t, float64(3), testutil.ToFloat64(sys.metrics.live))

	refs[0].Tell(nil, func(IContext, *counter) error { return errors.New("bad") })
	<-failed
	require.Equal(t, float64(1), testutil.ToFloat64(sys.metrics.exceptions))
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(sys.metrics.messages) == 1
	}, time.Second, time.Millisecond)

	refs[1].Close()
	<-refs[1].Done()
	require.Equal(t, float64(2), testutil.ToFloat64(sys.metrics.live))

	shutdown(t, sys)
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Empty(t, families)
}

func TestSystem_Config(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "configured"
	cfg.Throughput = 0
	opts := loadOptions(WithConfig(cfg))
	require.Equal(t, "configured", opts.Name)
	require.Equal(t, DefaultConfig().Throughput, opts.Throughput)
	require.Equal(t, time.Millisecond, opts.TimerTick)

	sys, err := NewSystem("", WithConfig(cfg))
	require.NoError(t, err)
	require.Equal(t, "configured", sys.Name())
	shutdown(t, sys)
}

func TestSystem_LaterAfterShutdown(t *testing.T) {
	sys, err := NewSystem("late")
	require.NoError(t, err)
	shutdown(t, sys)

	var fired atomic.Bool
	require.False(t, sys.later(func() { fired.Store(true) }, 0))
	time.Sleep(10 * time.Millisecond)
	require.False(t, fired.Load())
}
