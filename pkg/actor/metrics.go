package actor

import (
	"actr/pkg/glog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// metrics 系统指标，未配置 Registerer 时为 nil，所有方法都是空操作
type metrics struct {
	registerer prometheus.Registerer
	live       prometheus.Gauge
	messages   prometheus.Counter
	exceptions prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, system string) *metrics {
	if reg == nil {
		return nil
	}
	labels := prometheus.Labels{"system": system}
	m := &metrics{
		registerer: reg,
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "actr",
			Name:        "actors_live",
			Help:        "Number of actors currently registered in the system.",
			ConstLabels: labels,
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "actr",
			Name:        "messages_total",
			Help:        "Number of actions accepted by actor mailboxes.",
			ConstLabels: labels,
		}),
		exceptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "actr",
			Name:        "exceptions_total",
			Help:        "Number of actions that failed or panicked.",
			ConstLabels: labels,
		}),
	}
	collectors := m.collectors()
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			glog.Warn("register actor metrics failed", zap.String("system", system), zap.Error(err))
			for _, registered := range collectors[:i] {
				reg.Unregister(registered)
			}
			return nil
		}
	}
	return m
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.live, m.messages, m.exceptions}
}

func (m *metrics) created() {
	if m != nil {
		m.live.Inc()
	}
}

func (m *metrics) disposed() {
	if m != nil {
		m.live.Dec()
	}
}

func (m *metrics) message() {
	if m != nil {
		m.messages.Inc()
	}
}

func (m *metrics) exception() {
	if m != nil {
		m.exceptions.Inc()
	}
}

func (m *metrics) unregister() {
	if m == nil {
		return
	}
	for _, c := range m.collectors() {
		m.registerer.Unregister(c)
	}
}
