package actor

import (
	"actr/pkg/scheduler"
)

type (
	// Action 在 actor 自己的上下文中对其状态执行的动作
	// 返回的错误交给 actor 的异常处理器
	Action[T any] func(ctx IContext, state T) error

	// ExceptionHandler 动作出错时在 actor 自己的上下文中调用
	ExceptionHandler[T any] func(ctx IContext, state T, err error)

	// Destructor actor 销毁时在 actor 自己的上下文中调用，返回的错误只记录日志
	Destructor[T any] func(ctx IContext, state T) error

	// IRef actor 句柄的非泛型视图，用于在上下文中表示 current / caller
	IRef interface {
		scheduler.IActor
		System() *System
		Close()
		String() string

		// post 以 caller 身份向该 actor 投递一个与状态无关的任务，错误交给该 actor 的异常处理器
		post(caller IRef, task func(ctx IContext) error)
		// dispose 投递析构任务，完成后调用 whenFinished
		dispose(whenFinished func())
	}

	// IContext 任务执行期间的上下文
	// Current 为正在处理邮箱的 actor，Caller 为消息发送时所在的 actor
	// 在任何 actor 任务之外两者都为 nil，任务结束后上下文失效
	IContext interface {
		Current() IRef
		Caller() IRef
		System() *System
	}
)
