package glog

import (
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLevel      = "info"
	defaultMaxSizeMB  = 500
	defaultMaxBackups = 100
	defaultMaxAgeDays = 30
)

// Config 日志配置，Path 为空时只输出到控制台和 WithWriter 追加的目标
type Config struct {
	Path         string     `json:"path" yaml:"path" mapstructure:"path"`
	Level        string     `json:"level" yaml:"level" mapstructure:"level"`
	PrintConsole bool       `json:"printConsole" yaml:"printConsole" mapstructure:"printConsole"`
	File         FileConfig `json:"file" yaml:"file" mapstructure:"file"`
}

// FileConfig 滚动文件参数，零值字段使用默认值
type FileConfig struct {
	MaxSize    int  `json:"maxSize" yaml:"maxSize" mapstructure:"maxSize"` // MB
	MaxBackups int  `json:"maxBackups" yaml:"maxBackups" mapstructure:"maxBackups"`
	MaxAge     int  `json:"maxAge" yaml:"maxAge" mapstructure:"maxAge"` // 天
	Compress   bool `json:"compress" yaml:"compress" mapstructure:"compress"`
	LocalTime  bool `json:"localTime" yaml:"localTime" mapstructure:"localTime"`
}

// DefaultConfig 作为库嵌入时的默认配置：info 级别，只输出到控制台
func DefaultConfig() *Config {
	return &Config{
		Level:        defaultLevel,
		PrintConsole: true,
		File: FileConfig{
			MaxSize:    defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAge:     defaultMaxAgeDays,
			LocalTime:  true,
		},
	}
}

// level 无法识别的级别按 info 处理
func (c *Config) level() zapcore.Level {
	l, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// rotate 按 Path 创建滚动文件
func (c *Config) rotate() *lumberjack.Logger {
	f := c.File
	if f.MaxSize <= 0 {
		f.MaxSize = defaultMaxSizeMB
	}
	if f.MaxBackups <= 0 {
		f.MaxBackups = defaultMaxBackups
	}
	if f.MaxAge <= 0 {
		f.MaxAge = defaultMaxAgeDays
	}
	return &lumberjack.Logger{
		Filename:   c.Path,
		MaxSize:    f.MaxSize,
		MaxBackups: f.MaxBackups,
		MaxAge:     f.MaxAge,
		LocalTime:  f.LocalTime,
		Compress:   f.Compress,
	}
}
