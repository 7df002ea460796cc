package actor

import (
	"runtime"
	"time"

	"actr/pkg/scheduler"

	"github.com/prometheus/client_golang/prometheus"
)

// Config 可以从配置文件加载的系统参数
type Config struct {
	Name           string        `json:"name" yaml:"name" mapstructure:"name"`
	Throughput     int           `json:"throughput" yaml:"throughput" mapstructure:"throughput"`
	PoolSize       int           `json:"poolSize" yaml:"poolSize" mapstructure:"poolSize"`
	TimerTick      time.Duration `json:"timerTick" yaml:"timerTick" mapstructure:"timerTick"`
	TimerWheelSize int64         `json:"timerWheelSize" yaml:"timerWheelSize" mapstructure:"timerWheelSize"`
}

func DefaultConfig() Config {
	return Config{
		Name:           "actr",
		Throughput:     scheduler.DefaultThroughput,
		PoolSize:       runtime.GOMAXPROCS(0),
		TimerTick:      time.Millisecond,
		TimerWheelSize: 512,
	}
}

type Option func(*Options)

type Options struct {
	Config
	// Scheduler 默认调度器，为空时按 PoolSize / Throughput 创建协程池调度器
	// 系统关闭时会关闭它
	Scheduler  scheduler.IScheduler
	Registerer prometheus.Registerer
}

func loadOptions(options ...Option) *Options {
	opts := &Options{Config: DefaultConfig()}
	for _, option := range options {
		option(opts)
	}
	def := DefaultConfig()
	if opts.Throughput <= 0 {
		opts.Throughput = def.Throughput
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = def.PoolSize
	}
	if opts.TimerTick <= 0 {
		opts.TimerTick = def.TimerTick
	}
	if opts.TimerWheelSize <= 0 {
		opts.TimerWheelSize = def.TimerWheelSize
	}
	return opts
}

// WithConfig 整体替换配置，零值字段使用默认值
func WithConfig(cfg Config) Option {
	return func(op *Options) {
		op.Config = cfg
	}
}

func WithScheduler(s scheduler.IScheduler) Option {
	return func(op *Options) {
		op.Scheduler = s
	}
}

func WithThroughput(throughput int) Option {
	return func(op *Options) {
		op.Throughput = throughput
	}
}

func WithPoolSize(size int) Option {
	return func(op *Options) {
		op.PoolSize = size
	}
}

func WithTimerTick(tick time.Duration) Option {
	return func(op *Options) {
		op.TimerTick = tick
	}
}

func WithTimerWheelSize(size int64) Option {
	return func(op *Options) {
		op.TimerWheelSize = size
	}
}

// WithRegisterer 将系统指标注册到 reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(op *Options) {
		op.Registerer = reg
	}
}
