// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package component

import (
	"context"

	"github.com/pkg/errors"

	"github.com/insolar/settlement/configuration"
	"github.com/insolar/settlement/connectivity"
	"github.com/insolar/settlement/internal/app/settlement"
	"github.com/insolar/settlement/internal/app/settlement/memstore"
	"github.com/insolar/settlement/internal/app/settlement/postgres"
	"github.com/insolar/settlement/observability"
)

type backend struct {
	db     settlement.Transactor
	pinger Pinger
	close  func() error
}

func makeBackend(
	ctx context.Context,
	cfg *configuration.Settlement,
	obs *observability.Observability,
	notifier settlement.Notifier,
) (*backend, error) {
	log := obs.Log()
	switch cfg.Store.Backend {
	case configuration.BackendMemory, "":
		log.Warn("using in-memory store, state is lost on restart")
		return &backend{
			db:    memstore.New(notifier, log),
			close: func() error { return nil },
		}, nil
	case configuration.BackendPostgres:
		conn, err := connectivity.Make(ctx, cfg.DB, obs)
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(conn.PG(), notifier, &settlement.DefaultClock{}, obs)
		return &backend{db: store, pinger: store, close: conn.Close}, nil
	default:
		return nil, errors.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
