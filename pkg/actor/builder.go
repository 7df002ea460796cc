package actor

import (
	"strconv"

	"actr/internal/errs"
	"actr/pkg/glog"
	"actr/pkg/scheduler"

	"go.uber.org/zap"
)

// Builder actor 构建器
// 对象和构造函数二选一；未指定调度器时使用系统默认调度器
type Builder[T any] struct {
	system           *System
	object           T
	hasObject        bool
	constructor      func() T
	destructor       Destructor[T]
	name             string
	scheduler        scheduler.IScheduler
	ownsScheduler    bool
	exceptionHandler ExceptionHandler[T]
}

func NewBuilder[T any](system *System) *Builder[T] {
	return &Builder[T]{system: system}
}

// Object 直接使用已有对象作为 actor 状态，之后不应再在 actor 之外访问它
func (b *Builder[T]) Object(object T) *Builder[T] {
	b.object = object
	b.hasObject = true
	return b
}

// Constructor 构建时调用一次，返回 actor 状态
func (b *Builder[T]) Constructor(constructor func() T) *Builder[T] {
	b.constructor = constructor
	return b
}

func (b *Builder[T]) Destructor(destructor Destructor[T]) *Builder[T] {
	b.destructor = destructor
	return b
}

func (b *Builder[T]) Name(name string) *Builder[T] {
	b.name = name
	return b
}

// Scheduler 指定调度器，调度器由调用方负责关闭
func (b *Builder[T]) Scheduler(s scheduler.IScheduler) *Builder[T] {
	b.scheduler = s
	b.ownsScheduler = false
	return b
}

// OwnedScheduler 指定调度器，actor 销毁时一并关闭
func (b *Builder[T]) OwnedScheduler(s scheduler.IScheduler) *Builder[T] {
	b.scheduler = s
	b.ownsScheduler = true
	return b
}

func (b *Builder[T]) ExceptionHandler(handler ExceptionHandler[T]) *Builder[T] {
	b.exceptionHandler = handler
	return b
}

// Build 创建 actor 并注册到系统
func (b *Builder[T]) Build() (*Ref[T], error) {
	if b.hasObject && b.constructor != nil {
		return nil, errs.ErrObjectAndConstructor
	}
	if !b.hasObject && b.constructor == nil {
		return nil, errs.ErrNoObjectOrConstructor
	}
	sys := b.system
	if err := sys.checkActive(); err != nil {
		return nil, err
	}

	id := sys.nextID()
	ref := &Ref[T]{
		id:               id,
		name:             b.name,
		system:           sys,
		scheduler:        b.scheduler,
		ownsScheduler:    b.ownsScheduler,
		exceptionHandler: b.exceptionHandler,
		destructor:       b.destructor,
		disposed:         make(chan struct{}),
	}
	if ref.name == "" {
		ref.name = strconv.FormatUint(id, 16)
	}
	if ref.scheduler == nil {
		ref.scheduler = sys.scheduler
		ref.ownsScheduler = false
	}
	if ref.exceptionHandler == nil {
		ref.exceptionHandler = defaultExceptionHandler[T]
	}

	if err := ref.scheduler.ActorCreated(ref); err != nil {
		ref.abort()
		return nil, err
	}
	state, err := b.newState()
	if err != nil {
		ref.abort()
		return nil, err
	}
	ref.state.Store(&box[T]{state: state})

	sys.metrics.created()
	registration, err := sys.register(ref)
	if err != nil {
		sys.metrics.disposed()
		ref.abort()
		return nil, err
	}
	ref.attach(registration)
	glog.Debug("actor created", zap.Stringer("actor", ref), zap.String("system", sys.name))
	return ref, nil
}

func (b *Builder[T]) newState() (state T, err error) {
	if b.hasObject {
		return b.object, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = errs.ErrConstructorPanic(rec)
		}
	}()
	return b.constructor(), nil
}

// abort 构建失败时撤销已经分配的调度资源
func (r *Ref[T]) abort() {
	r.disposing.Store(true)
	r.state.Store(nil)
	r.scheduler.ActorDisposed(r)
	if r.ownsScheduler {
		r.scheduler.Close()
	}
	close(r.disposed)
}

// ActorOf 用构造函数创建 actor 的快捷方式，name 可省略
func ActorOf[T any](system *System, constructor func() T, name ...string) (*Ref[T], error) {
	b := NewBuilder[T](system).Constructor(constructor)
	if len(name) > 0 {
		b.Name(name[0])
	}
	return b.Build()
}
