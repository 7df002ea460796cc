package component

import (
	"context"

	"actr/pkg/actor"

	"github.com/pkg/errors"
)

var _ IComponent = (*System)(nil)

// System 把 actor 系统挂到生命周期管理器上
// Start 创建系统，Stop 发起有序关闭并等待完成或 ctx 结束
type System struct {
	name    string
	options []actor.Option
	sys     *actor.System
}

func NewSystem(name string, options ...actor.Option) *System {
	return &System{name: name, options: options}
}

func (s *System) Name() string { return "actor-system:" + s.name }

func (s *System) Start(context.Context) error {
	if s.sys != nil {
		return errors.Errorf("actor system %s already started", s.name)
	}
	sys, err := actor.NewSystem(s.name, s.options...)
	if err != nil {
		return err
	}
	s.sys = sys
	return nil
}

func (s *System) Stop(ctx context.Context) error {
	if s.sys == nil {
		return nil
	}
	_, err := s.sys.Shutdown().Wait(ctx)
	return errors.Wrapf(err, "shutdown actor system %s", s.name)
}

// Actors 启动之后可用
func (s *System) Actors() *actor.System {
	return s.sys
}
