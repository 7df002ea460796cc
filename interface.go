package actr

import (
	"actr/internal/config"
	"actr/pkg/actor"
	"actr/pkg/glog"
	"actr/pkg/scheduler"
)

// Create 创建使用默认协程池调度器的 actor 系统
func Create(name string, options ...actor.Option) (*actor.System, error) {
	return actor.NewSystem(name, options...)
}

// CreateWithScheduler 创建以 s 为默认调度器的 actor 系统，系统关闭时关闭 s
func CreateWithScheduler(name string, s scheduler.IScheduler, options ...actor.Option) (*actor.System, error) {
	return actor.NewSystem(name, append(options, actor.WithScheduler(s))...)
}

// Load 按配置文件初始化日志并创建 actor 系统，options 覆盖配置文件中的值
func Load(path string, options ...actor.Option) (*actor.System, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	glog.Init(&cfg.Glog)
	return actor.NewSystem(cfg.System.Name, append([]actor.Option{actor.WithConfig(cfg.System)}, options...)...)
}
