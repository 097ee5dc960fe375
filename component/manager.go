// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package component

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/configuration"
	"github.com/insolar/settlement/internal/app/api"
	"github.com/insolar/settlement/internal/app/settlement"
	"github.com/insolar/settlement/internal/app/settlement/access"
	"github.com/insolar/settlement/internal/app/settlement/batch"
	"github.com/insolar/settlement/internal/app/settlement/escrow"
	"github.com/insolar/settlement/internal/app/settlement/ledger"
	"github.com/insolar/settlement/internal/app/settlement/notification"
	"github.com/insolar/settlement/internal/app/settlement/processor"
	"github.com/insolar/settlement/internal/app/settlement/registry"
	"github.com/insolar/settlement/internal/app/settlement/splitter"
	"github.com/insolar/settlement/observability"
)

type Manager struct {
	cfg *configuration.Settlement
	log *logrus.Logger

	backend *backend
	api     *echo.Echo
	router  *Router
	stop    func(ctx context.Context)
}

// Prepare wires storage, services and both HTTP servers without starting them.
func Prepare(ctx context.Context, cfg *configuration.Settlement) (*Manager, error) {
	if _, ok := cfg.Decimals(settlement.NativeAsset.String()); !ok {
		return nil, errors.Errorf("asset %s is not configured", settlement.NativeAsset)
	}
	if settlement.Account(cfg.Accounts.Processor).IsCustody() {
		return nil, errors.Errorf("processor account %s is a custody name", cfg.Accounts.Processor)
	}
	obs := observability.Make(cfg.Log)
	log := obs.Log()
	metrics := observability.MakeSettlementMetrics(obs)

	notifier := notification.Fanout{
		notification.NewLogNotifier(log),
		notification.NewMetricsNotifier(obs),
	}
	be, err := makeBackend(ctx, cfg, obs, notifier)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init store")
	}

	clock := &settlement.DefaultClock{}
	roles := access.NewRegistry(be.db, log)
	reg, err := registry.NewRegistry(be.db, roles, log, cfg.Cache.Payments)
	if err != nil {
		_ = be.close()
		return nil, err
	}
	proc := processor.NewProcessor(be.db, roles, reg, clock, log, settlement.Account(cfg.Accounts.Processor))
	escrows := escrow.NewManager(be.db, clock, log, cfg.Accounts.Escrow)

	if err := initState(ctx, cfg, be.db, roles, proc, escrows.Custody()); err != nil {
		_ = be.close()
		return nil, err
	}

	services := api.Services{
		Roles:     roles,
		Registry:  reg,
		Processor: proc,
		Escrows:   escrows,
		Splitters: splitter.NewService(be.db, clock, log),
		Batch:     batch.NewExecutor(be.db, log),
		Ledger:    ledger.NewLedger(be.db, roles, log),
	}
	codec := api.NewAmountCodec(api.AssetDecimals(cfg))
	server := api.NewSettlementServer(services, codec, log, cfg.API.CallerHeader)
	e := api.NewServer(cfg.API, server, metrics)
	router := NewRouter(cfg.Ops, obs, be.pinger)

	return &Manager{
		cfg:     cfg,
		log:     log,
		backend: be,
		api:     e,
		router:  router,
		stop:    makeStopper(log, be, e, router),
	}, nil
}

func (m *Manager) Start() {
	m.router.Start()
	go func() {
		m.log.Infof("settlement API listening on %s", m.cfg.API.Listen)
		err := m.api.Start(m.cfg.API.Listen)
		if err != nil && err != http.ErrServerClosed {
			m.log.Error(errors.Wrap(err, "api server stopped"))
		}
	}()
}

func (m *Manager) Stop(ctx context.Context) {
	m.stop(ctx)
}

// API is the settlement API handler.
func (m *Manager) API() http.Handler {
	return m.api
}

// Ops is the health check and metrics handler.
func (m *Manager) Ops() http.Handler {
	return m.router.Handler()
}
