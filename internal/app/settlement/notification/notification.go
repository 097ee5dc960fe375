// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

// Package notification delivers committed events to their consumers.
package notification

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/internal/app/settlement"
	"github.com/insolar/settlement/observability"
)

// LogNotifier writes every event as a structured log line.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, events ...settlement.Event) {
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			n.log.WithError(err).WithField("event", e.EventName()).Error("failed to marshal event")
			continue
		}
		n.log.WithFields(logrus.Fields{
			"event":   e.EventName(),
			"payload": string(payload),
		}).Info("event")
	}
}

// MetricsNotifier counts events by name and tracks the pause state.
type MetricsNotifier struct {
	counter *prometheus.CounterVec
	paused  prometheus.Gauge
}

func NewMetricsNotifier(obs *observability.Observability) *MetricsNotifier {
	m := observability.MakeSettlementMetrics(obs)
	return &MetricsNotifier{counter: m.Events, paused: m.Paused}
}

func (n *MetricsNotifier) Notify(_ context.Context, events ...settlement.Event) {
	for _, e := range events {
		n.counter.WithLabelValues(e.EventName()).Inc()
		switch e.(type) {
		case settlement.Paused:
			n.paused.Set(1)
		case settlement.Unpaused:
			n.paused.Set(0)
		}
	}
}

// Fanout hands every batch of events to each notifier in order.
type Fanout []settlement.Notifier

func (f Fanout) Notify(ctx context.Context, events ...settlement.Event) {
	for _, n := range f {
		n.Notify(ctx, events...)
	}
}

// Recorder keeps the events it was notified of. Useful to observe a component.
type Recorder struct {
	mu     sync.Mutex
	events []settlement.Event
}

func (r *Recorder) Notify(_ context.Context, events ...settlement.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *Recorder) Events() []settlement.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]settlement.Event(nil), r.events...)
}

// Names lists the recorded event names in order.
func (r *Recorder) Names() []string {
	events := r.Events()
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.EventName())
	}
	return names
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
