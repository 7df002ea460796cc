package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"actr/internal/config"
	"actr/pkg/actor"
	"actr/pkg/component"
	"actr/pkg/glog"

	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

var (
	profile = flag.String("config", "", "yaml profile, empty uses defaults")
	size    = flag.Int("n", 64, "number of values to sort")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *profile != "" {
		loaded, err := config.Load(*profile)
		if err != nil {
			glog.Fatal("load profile", zap.String("path", *profile), zap.Error(err))
		}
		cfg = loaded
	}

	host := component.NewSystem(cfg.System.Name, actor.WithConfig(cfg.System))
	manager := component.New()
	for _, c := range []component.IComponent{
		component.NewLogger("actr-demo", &cfg.Glog, nil),
		host,
	} {
		if err := manager.Register(c); err != nil {
			glog.Fatal("register component", zap.Error(err))
		}
	}
	if err := manager.Start(context.Background()); err != nil {
		glog.Fatal("start", zap.Error(err))
	}
	defer func() {
		if err := manager.StopWithTimeout(10 * time.Second); err != nil {
			glog.Error("stop", zap.Error(err))
		}
	}()
	sys := host.Actors()

	greeter, err := actor.NewBuilder[*Greeter](sys).
		Constructor(func() *Greeter { return &Greeter{greeting: "hello"} }).
		Name("greeter").
		Build()
	if err != nil {
		glog.Fatal("create greeter", zap.Error(err))
	}

	data := make([]int, *size)
	for i := range data {
		data[i] = rand.Intn(1000)
	}

	sorter, err := actor.ActorOf(sys, func() struct{} { return struct{}{} }, "sorter")
	if err != nil {
		glog.Fatal("create sorter", zap.Error(err))
	}
	sorter.Tell(nil, func(ctx actor.IContext, _ struct{}) error {
		if err := actor.Ask(ctx, greeter, func(_ actor.IContext, g *Greeter) (string, error) {
			return g.Greet("actr"), nil
		}, func(_ actor.IContext, text string) {
			glog.Infof("greeter replied: %s", text)
		}); err != nil {
			return err
		}
		return Sort(ctx, data, func(sorted []int) {
			glog.Info("sorted", zap.Ints("values", sorted), zap.Bool("ok", slices.IsSorted(sorted)))
			sys.Shutdown()
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	reason, err := sys.Terminated().Wait(ctx)
	if err != nil {
		glog.Error("wait for shutdown", zap.Error(err))
		return
	}
	fmt.Println(reason)
}

// Greeter 最简单的有状态 actor
type Greeter struct {
	greeting string
	greeted  int
}

func (g *Greeter) Greet(name string) string {
	g.greeted++
	return fmt.Sprintf("%s, %s (#%d)", g.greeting, name, g.greeted)
}

// Sort 归并排序，每一层用 fork 把两半交给两个临时 actor
func Sort[E constraints.Ordered](ctx actor.IContext, data []E, reply func([]E)) error {
	if len(data) <= 16 {
		sorted := slices.Clone(data)
		slices.Sort(sorted)
		reply(sorted)
		return nil
	}
	halves := [][]E{data[:len(data)/2], data[len(data)/2:]}
	return actor.Fork[int, []E, []E](ctx.System(), []int{0, 1}).
		Constructor(func(id int) []E { return halves[id] }).
		AskAsync(ctx, func(ctx actor.IContext, _ int, half []E, reply func([]E)) error {
			return Sort(ctx, half, reply)
		}, func(_ actor.IContext, results map[int][]E) {
			reply(merge(results[0], results[1]))
		})
}

func merge[E constraints.Ordered](a, b []E) []E {
	out := make([]E, 0, len(a)+len(b))
	for len(a) > 0 && len(b) > 0 {
		if a[0] <= b[0] {
			out, a = append(out, a[0]), a[1:]
		} else {
			out, b = append(out, b[0]), b[1:]
		}
	}
	return append(append(out, a...), b...)
}
