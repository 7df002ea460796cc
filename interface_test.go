package actr

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"actr/pkg/actor"
	"actr/pkg/scheduler"

	"github.com/stretchr/testify/require"
)

func waitShutdown(t *testing.T, sys *actor.System) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reason, err := sys.Shutdown().Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, actor.TerminationReason, reason)
}

func TestCreate(t *testing.T) {
	sys, err := Create("facade", actor.WithPoolSize(2))
	require.NoError(t, err)
	require.Equal(t, "facade", sys.Name())
	waitShutdown(t, sys)
}

func TestCreateWithScheduler(t *testing.T) {
	s, err := scheduler.NewSingleThreadScheduler()
	require.NoError(t, err)
	sys, err := CreateWithScheduler("single", s)
	require.NoError(t, err)
	require.Same(t, s, sys.Scheduler())

	ref, err := actor.ActorOf(sys, func() *int { return new(int) })
	require.NoError(t, err)
	done := make(chan int, 1)
	ref.Tell(nil, func(_ actor.IContext, n *int) error {
		*n++
		done <- *n
		return nil
	})
	require.Equal(t, 1, <-done)

	waitShutdown(t, sys)
	require.ErrorIs(t, s.Schedule(func() {}, ref), scheduler.ErrClosed)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system:\n  name: loaded\n  poolSize: 2\nglog:\n  level: warn\n  printConsole: true\n"), 0o644))

	sys, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "loaded", sys.Name())
	waitShutdown(t, sys)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
