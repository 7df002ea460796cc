package component

import (
	"context"
	"sync"
	"time"

	"actr/pkg/glog"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrNilComponent   = errors.New("component: component is nil")
	ErrEmptyName      = errors.New("component: component name is empty")
	ErrDuplicateName  = errors.New("component: component already registered")
	ErrManagerStarted = errors.New("component: manager already started")
	ErrManagerStopped = errors.New("component: manager stopped and cannot be restarted")
)

// IComponent 需要管理生命周期的组件
type IComponent interface {
	// Start 启动组件
	Start(ctx context.Context) error
	// Stop 停止组件，ctx 用于控制超时
	Stop(ctx context.Context) error
	Name() string
}

// Manager 生命周期管理器，按注册顺序启动，按逆序停止
type Manager struct {
	components []IComponent
	mu         sync.RWMutex
	started    bool
	stopped    bool
	stopOnce   sync.Once
}

func New() *Manager {
	return &Manager{}
}

// Register 启动之后不能再注册
func (m *Manager) Register(component IComponent) error {
	if component == nil {
		return ErrNilComponent
	}
	if component.Name() == "" {
		return ErrEmptyName
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrManagerStarted
	}
	for _, c := range m.components {
		if c.Name() == component.Name() {
			return errors.Wrap(ErrDuplicateName, component.Name())
		}
	}
	m.components = append(m.components, component)
	glog.Debug("component registered", zap.String("component", component.Name()))
	return nil
}

// Start 依次启动所有组件，某个组件失败时逆序停止已经启动的组件
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrManagerStarted
	}
	if m.stopped {
		m.mu.Unlock()
		return ErrManagerStopped
	}
	m.started = true
	components := append([]IComponent(nil), m.components...)
	m.mu.Unlock()

	started := make([]IComponent, 0, len(components))
	for _, component := range components {
		if err := component.Start(ctx); err != nil {
			glog.Error("component start failed", zap.String("component", component.Name()), zap.Error(err))
			_ = m.stopComponents(ctx, started)
			m.mu.Lock()
			m.stopped = true
			m.mu.Unlock()
			return errors.Wrapf(err, "start component %s", component.Name())
		}
		started = append(started, component)
		glog.Info("component started", zap.String("component", component.Name()))
	}
	return nil
}

// Stop 逆序停止所有组件，只有第一次调用生效
func (m *Manager) Stop(ctx context.Context) error {
	var err error
	m.stopOnce.Do(func() {
		m.mu.Lock()
		if !m.started || m.stopped {
			m.stopped = true
			m.mu.Unlock()
			return
		}
		m.stopped = true
		components := append([]IComponent(nil), m.components...)
		m.mu.Unlock()
		err = m.stopComponents(ctx, components)
	})
	return err
}

func (m *Manager) StopWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return m.Stop(ctx)
}

// stopComponents 单个组件失败不影响其余组件，返回最后一个错误
func (m *Manager) stopComponents(ctx context.Context, components []IComponent) error {
	var lastErr error
	for i := len(components) - 1; i >= 0; i-- {
		component := components[i]
		if err := component.Stop(ctx); err != nil {
			glog.Error("component stop failed", zap.String("component", component.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		glog.Info("component stopped", zap.String("component", component.Name()))
	}
	return lastErr
}

func (m *Manager) IsStarted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.started
}

func (m *Manager) IsStopped() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stopped
}

func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.components))
	for i, c := range m.components {
		names[i] = c.Name()
	}
	return names
}
