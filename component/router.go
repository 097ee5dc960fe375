// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package component

import (
	"context"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insolar/settlement/configuration"
	"github.com/insolar/settlement/observability"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter builds the operational server with health check and metrics.
func NewRouter(cfg configuration.Ops, obs *observability.Observability, pinger Pinger) *Router {
	router := httprouter.New()
	hs := &http.Server{Addr: cfg.Listen, Handler: router}
	r := &Router{
		hs:     hs,
		obs:    obs,
		pinger: pinger,
	}
	router.GET("/healthcheck", r.healthCheck)
	router.GET("/metrics", r.metrics)
	return r
}

type Router struct {
	hs     *http.Server
	obs    *observability.Observability
	pinger Pinger
}

func (r *Router) Start() {
	log := r.obs.Log()
	go func() {
		err := r.hs.ListenAndServe()
		if err != http.ErrServerClosed {
			log.Error(errors.Wrapf(err, "http server ListenAndServe"))
		}
	}()
}

func (r *Router) Stop(ctx context.Context) {
	if err := r.hs.Shutdown(ctx); err != nil {
		r.obs.Log().Error(errors.Wrapf(err, "http server shutdown"))
	}
}

func (r *Router) Handler() http.Handler {
	return r.hs.Handler
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain")
	if r.pinger != nil {
		if err := r.pinger.Ping(req.Context()); err != nil {
			r.obs.Log().Warn(errors.Wrap(err, "health check failed"))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprint(w, "storage unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (r *Router) metrics(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	ops := promhttp.HandlerOpts{
		ErrorLog: r.obs.Log(),
	}
	handler := promhttp.HandlerFor(r.obs.Metrics(), ops)
	handler.ServeHTTP(w, req)
}
