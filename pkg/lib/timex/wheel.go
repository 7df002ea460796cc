/**
 * @Author: dingQingHui
 * @Description:
 * @File: timingwheel
 * @Version: 1.0.0
 * @Date: 2024/11/28 14:06
 */

package timex

import (
	"sync"
	"time"

	"github.com/RussellLuo/timingwheel"
)

// Wheel 可以停止的时间轮
// 停止之后 AfterFunc 直接返回 false，不会阻塞在已经退出的轮询协程上
type Wheel struct {
	tw      *timingwheel.TimingWheel
	mu      sync.RWMutex
	stopped bool
}

// NewWheel tick 小于 1ms 时按 1ms 处理
func NewWheel(tick time.Duration, wheelSize int64) *Wheel {
	if tick < time.Millisecond {
		tick = time.Millisecond
	}
	if wheelSize <= 0 {
		wheelSize = 512
	}
	w := &Wheel{tw: timingwheel.NewTimingWheel(tick, wheelSize)}
	w.tw.Start()
	return w
}

// AfterFunc 在 d 之后于独立协程中执行 f
func (w *Wheel) AfterFunc(d time.Duration, f func()) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return false
	}
	w.tw.AfterFunc(d, f)
	return true
}

// Stop 等待轮询协程退出，未到期的任务全部丢弃
func (w *Wheel) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()
	w.tw.Stop()
}
