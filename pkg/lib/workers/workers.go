/**
 * @Author: dingQingHui
 * @Description:
 * @File: workers
 * @Version: 1.0.0
 * @Date: 2025/1/2 10:16
 */

package workers

import (
	"context"
	"runtime"
	"runtime/pprof"
	"sync"
	"sync/atomic"

	"actr/pkg/glog"
	"actr/pkg/lib/stopper"

	"github.com/eapache/queue"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LabelKey 工作协程上的 pprof 标签名
const LabelKey = "actr"

var (
	ErrPoolClosed = errors.New("workers: pool is closed")
	ErrTaskIsNil  = errors.New("workers: task is nil")
)

var (
	panicCount atomic.Uint64
	shared     *Pool
	sharedOnce sync.Once
)

// Pool 固定容量的协程池
// 并发执行的任务数不超过 size，超出的任务进入无界队列按提交顺序等待，Execute 永不阻塞
// size 为 1 时等价于单线程执行器，任务严格 FIFO
// mu 只保护 active 和 backlog，临界区内没有阻塞调用
type Pool struct {
	name    string
	size    int
	pool    *ants.Pool
	labels  pprof.LabelSet
	stopper stopper.Stopper

	mu      sync.Mutex
	active  int
	backlog *queue.Queue
}

func NewPool(name string, size int) (*Pool, error) {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		name:    name,
		size:    size,
		labels:  pprof.Labels(LabelKey, name),
		backlog: queue.New(),
	}
	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(err interface{}) {
			glog.Error("workers pool panic", zap.String("pool", name), zap.Any("err", err))
		}))
	if err != nil {
		return nil, errors.Wrapf(err, "workers: create pool %s", name)
	}
	p.pool = pool
	return p, nil
}

// Shared 进程级共享协程池，首次调用时创建，永不关闭
func Shared() *Pool {
	sharedOnce.Do(func() {
		size := runtime.GOMAXPROCS(0)
		if size < 4 {
			size = 4
		}
		p, err := NewPool("actr:shared", size)
		if err != nil {
			panic(err)
		}
		shared = p
	})
	return shared
}

func (p *Pool) Name() string {
	return p.name
}

func (p *Pool) Size() int {
	return p.size
}

// Execute 提交任务
func (p *Pool) Execute(task func()) error {
	if task == nil {
		return ErrTaskIsNil
	}
	if p.stopper.IsStop() {
		return ErrPoolClosed
	}
	p.mu.Lock()
	if p.active >= p.size {
		p.backlog.Add(task)
		p.mu.Unlock()
		return nil
	}
	p.active++
	p.mu.Unlock()

	for {
		err := p.pool.Submit(func() { p.loop(task) })
		if err == nil {
			return nil
		}
		// 刚让出名额的协程还没有回到 ants，很快就会归还
		if errors.Is(err, ants.ErrPoolOverload) && !p.pool.IsClosed() {
			runtime.Gosched()
			continue
		}
		p.mu.Lock()
		p.active--
		p.mu.Unlock()
		return errors.Wrapf(err, "workers: submit to %s", p.name)
	}
}

func (p *Pool) loop(task func()) {
	pprof.Do(context.Background(), p.labels, func(context.Context) {
		for task != nil {
			Try(task, func(err interface{}) {
				glog.Error("workers task panic", zap.String("pool", p.name), zap.Any("err", err), zap.Stack("stack"))
			})
			task = p.next()
		}
	})
}

func (p *Pool) next() func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backlog.Length() == 0 {
		p.active--
		return nil
	}
	return p.backlog.Remove().(func())
}

// Pending 排队中尚未执行的任务数
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backlog.Length()
}

// Close 拒绝新任务，已排队的任务继续执行完毕，空闲协程随后退出
// 不等待正在执行的任务，因此可以在池内的任务中调用
func (p *Pool) Close() {
	if !p.stopper.Stop() {
		return
	}
	p.pool.Release()
}

func (p *Pool) IsClosed() bool {
	return p.stopper.IsStop()
}

func Try(fn func(), reFun func(err interface{})) {
	defer func() {
		if err := recover(); err != nil {
			panicCount.Add(1)
			if reFun != nil {
				reFun(err)
			}
		}
	}()
	fn()
}

// PanicCount 累计捕获的 panic 次数
func PanicCount() uint64 {
	return panicCount.Load()
}
