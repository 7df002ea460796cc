package stopper

import "sync/atomic"

// Stopper 只能停止一次的标记
type Stopper struct {
	isStopped atomic.Bool
	initC     atomic.Pointer[chan struct{}]
}

func (s *Stopper) IsStop() bool {
	return s.isStopped.Load()
}

// Stop 第一次调用返回 true 并关闭 C()，之后的调用返回 false
func (s *Stopper) Stop() bool {
	if !s.isStopped.CompareAndSwap(false, true) {
		return false
	}
	close(*s.ch())
	return true
}

// C 返回停止信号
func (s *Stopper) C() <-chan struct{} {
	return *s.ch()
}

func (s *Stopper) ch() *chan struct{} {
	if c := s.initC.Load(); c != nil {
		return c
	}
	c := make(chan struct{})
	if s.initC.CompareAndSwap(nil, &c) {
		return &c
	}
	return s.initC.Load()
}
