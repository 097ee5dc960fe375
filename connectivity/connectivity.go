// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package connectivity

import (
	"context"

	"github.com/go-pg/pg"
	"github.com/pkg/errors"

	"github.com/insolar/settlement/configuration"
	"github.com/insolar/settlement/internal/dbconn"
	"github.com/insolar/settlement/internal/pkg/cycle"
	"github.com/insolar/settlement/observability"
)

// Make opens the postgres handle and waits until the database answers.
func Make(ctx context.Context, cfg configuration.DB, obs *observability.Observability) (*Connectivity, error) {
	log := obs.Log()
	db, err := dbconn.Connect(cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("trying connect to postgres...")
	err = cycle.UntilConnectionError(ctx, func() error {
		_, err := db.ExecContext(ctx, "SELECT 1")
		return err
	}, cfg.AttemptInterval, cfg.Attempts, log)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "postgres is unreachable")
	}
	return &Connectivity{pg: db}, nil
}

type Connectivity struct {
	pg *pg.DB
}

func (c *Connectivity) PG() *pg.DB {
	return c.pg
}

func (c *Connectivity) Close() error {
	return c.pg.Close()
}
