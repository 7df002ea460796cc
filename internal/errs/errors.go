package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ========== 配置错误（同步返回给调用方） ==========

// 构建 actor 相关错误
var (
	// ErrObjectAndConstructor 同时提供了对象和构造函数
	ErrObjectAndConstructor = errors.New("actor: not allowed to provide both object and constructor")
	// ErrNoObjectOrConstructor 对象和构造函数都没有提供
	ErrNoObjectOrConstructor = errors.New("actor: provide either object or constructor")
	// ErrActionIsNil 动作为空
	ErrActionIsNil = errors.New("actor: action is nil")
)

// 系统相关错误
var (
	// ErrSystemShuttingDown 系统正在关闭
	ErrSystemShuttingDown = errors.New("cannot add actor: actor system shutdown in progress")
	// ErrSystemShutDown 系统已关闭
	ErrSystemShutDown = errors.New("cannot add actor: actor system is shut down")
)

// 上下文相关错误
var (
	// ErrAskOutsideActor 在 actor 上下文之外调用 ask，没有 actor 可以接收回复
	ErrAskOutsideActor = errors.New("it is not allowed to call ask from non-actor context: there's no actor to receive the response")
)

// 调度器相关错误
var (
	// ErrSchedulerClosed 调度器已关闭
	ErrSchedulerClosed = errors.New("scheduler is closed")
	// ErrSchedulerStarted 阻塞调度器已经在某个协程中启动
	ErrSchedulerStarted = errors.New("blocking scheduler already started")
	// ErrActorNotScheduled actor 没有在调度器上创建或已经销毁
	ErrActorNotScheduled = errors.New("actor is not created on this scheduler or already disposed")
)

// ========== 动作错误 ==========

// ErrActionPanic 将动作中的 panic 转换为带堆栈的错误
func ErrActionPanic(actor string, r interface{}) error {
	if err, ok := r.(error); ok {
		return errors.Wrapf(err, "actor %s: panic", actor)
	}
	return errors.Errorf("actor %s: panic: %v", actor, r)
}

func ErrConstructorPanic(r interface{}) error {
	return errors.WithStack(fmt.Errorf("actor: constructor panic: %v", r))
}

func ErrCreateScheduler(name string, err error) error {
	return errors.Wrapf(err, "create scheduler %s", name)
}

// ========== 配置错误 ==========

func ErrReadConfigFileFailed(err error) error {
	return errors.Wrap(err, "read config file failed")
}

func ErrUnmarshalConfigFailed(err error) error {
	return errors.Wrap(err, "unmarshal config failed")
}
