// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package observability

import (
	"os"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/configuration"
)

func Make(cfg configuration.Log) *Observability {
	return &Observability{
		log:      NewLogger(cfg),
		metrics:  prometheus.NewRegistry(),
		counters: make(map[string]prometheus.Counter),
		vectors:  make(map[string]*prometheus.CounterVec),
		gauges:   make(map[string]prometheus.Gauge),
	}
}

// NewLogger builds a logrus logger from config. Unknown levels fall back to info.
func NewLogger(cfg configuration.Log) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

type Observability struct {
	log     *logrus.Logger
	metrics *prometheus.Registry

	mu       sync.Mutex
	counters map[string]prometheus.Counter
	vectors  map[string]*prometheus.CounterVec
	gauges   map[string]prometheus.Gauge
}

func (o *Observability) Log() *logrus.Logger {
	return o.log
}

func (o *Observability) Metrics() *prometheus.Registry {
	return o.metrics
}

func (o *Observability) Counter(opts prometheus.CounterOpts) prometheus.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.counters[opts.Name]
	if ok {
		return c
	}
	c = prometheus.NewCounter(opts)
	err := o.metrics.Register(c)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return c
	}
	o.counters[opts.Name] = c
	return c
}

func (o *Observability) CounterVec(opts prometheus.CounterOpts, labels ...string) *prometheus.CounterVec {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.vectors[opts.Name]
	if ok {
		return v
	}
	v = prometheus.NewCounterVec(opts, labels)
	err := o.metrics.Register(v)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return v
	}
	o.vectors[opts.Name] = v
	return v
}

func (o *Observability) Gauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	o.mu.Lock()
	defer o.mu.Unlock()
	g, ok := o.gauges[opts.Name]
	if ok {
		return g
	}
	g = prometheus.NewGauge(opts)
	err := o.metrics.Register(g)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return g
	}
	o.gauges[opts.Name] = g
	return g
}

// SettlementMetrics are the counters shared by the settlement components.
type SettlementMetrics struct {
	Events    *prometheus.CounterVec
	Requests  *prometheus.CounterVec
	DBErrors  prometheus.Counter
	Rollbacks prometheus.Counter
	// Paused is 1 while payment processing is paused.
	Paused    prometheus.Gauge
}

func MakeSettlementMetrics(obs *Observability) *SettlementMetrics {
	return &SettlementMetrics{
		Events: obs.CounterVec(prometheus.CounterOpts{
			Name: "settlement_events_total",
			Help: "Number of events emitted by committed operations.",
		}, "event"),
		Requests: obs.CounterVec(prometheus.CounterOpts{
			Name: "settlement_api_requests_total",
			Help: "Number of API requests by route and status code.",
		}, "route", "code"),
		DBErrors: obs.Counter(prometheus.CounterOpts{
			Name: "settlement_db_errors_total",
			Help: "Number of failed database statements.",
		}),
		Rollbacks: obs.Counter(prometheus.CounterOpts{
			Name: "settlement_rollbacks_total",
			Help: "Number of rolled back transactions.",
		}),
		Paused: obs.Gauge(prometheus.GaugeOpts{
			Name: "settlement_processor_paused",
			Help: "Whether payment processing is paused.",
		}),
	}
}
