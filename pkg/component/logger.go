package component

import (
	"context"

	"actr/pkg/glog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ IComponent = (*Logger)(nil)

// Logger glog 日志组件，应当最先注册，最后停止
type Logger struct {
	cfg       *glog.Config
	process   string
	panicHook func(entry zapcore.Entry)
}

// NewLogger cfg 为空时使用默认配置，panicHook 在 DPanic 及以上级别的日志输出时调用
func NewLogger(process string, cfg *glog.Config, panicHook func(entry zapcore.Entry)) *Logger {
	return &Logger{cfg: cfg, process: process, panicHook: panicHook}
}

func (c *Logger) Name() string {
	return "logger"
}

func (c *Logger) Start(context.Context) error {
	glog.Init(c.cfg, glog.WithZapOptions(
		zap.Fields(zap.String("process", c.process)),
		zap.Hooks(func(entry zapcore.Entry) error {
			if entry.Level >= zap.DPanicLevel && c.panicHook != nil {
				c.panicHook(entry)
			}
			return nil
		}),
	))
	return nil
}

// Stop 只刷新缓冲，标准输出上 Sync 的错误不影响退出
func (c *Logger) Stop(context.Context) error {
	glog.Stop()
	return nil
}
