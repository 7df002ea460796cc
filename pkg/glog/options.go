/**
 * @Author: dingQingHui
 * @Description:
 * @File: config
 * @Version: 1.0.0
 * @Date: 2024/9/23 11:14
 */

package glog

import (
	"io"

	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	zapOption []zap.Option
	writers   []io.Writer
}

func loadOptions(options ...Option) *Options {
	opts := &Options{}
	for _, option := range options {
		option(opts)
	}
	return opts
}

// WithZapOptions 追加 zap.Option
func WithZapOptions(zapOpts ...zap.Option) Option {
	return func(o *Options) {
		o.zapOption = append(o.zapOption, zapOpts...)
	}
}

// WithWriter 追加一个 JSON 输出目标，测试中用于捕获日志
func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.writers = append(o.writers, w)
	}
}
