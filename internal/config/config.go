package config

import (
	"actr/internal/errs"
	"actr/pkg/actor"
	"actr/pkg/glog"

	"github.com/spf13/viper"
)

// Config 进程配置
type Config struct {
	// System actor 系统配置
	System actor.Config `json:"system" yaml:"system" mapstructure:"system"`
	// Glog 日志配置
	Glog glog.Config `json:"glog" yaml:"glog" mapstructure:"glog"`
}

// Load 读取 yaml 配置文件，文件中缺省的字段保持默认值
func Load(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	if err := vp.ReadInConfig(); err != nil {
		return nil, errs.ErrReadConfigFileFailed(err)
	}
	cfg := Default()
	if err := vp.Unmarshal(cfg); err != nil {
		return nil, errs.ErrUnmarshalConfigFailed(err)
	}
	return cfg, nil
}

// Default 生成默认配置
func Default() *Config {
	return &Config{
		System: actor.DefaultConfig(),
		Glog:   *glog.DefaultConfig(),
	}
}
