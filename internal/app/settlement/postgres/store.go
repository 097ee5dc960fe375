// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

// Package postgres is the go-pg backend of the settlement core. Every
// transaction maps onto one database transaction; rows read for a later write
// are locked with SELECT ... FOR UPDATE and emitted events are appended to the
// events table before commit.
package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-pg/pg"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/internal/app/settlement"
	"github.com/insolar/settlement/observability"
)

type Store struct {
	db       *pg.DB
	notifier settlement.Notifier
	clock    settlement.Clock
	log      *logrus.Logger

	errorCounter    prometheus.Counter
	rollbackCounter prometheus.Counter
}

func NewStore(db *pg.DB, notifier settlement.Notifier, clock settlement.Clock, obs *observability.Observability) *Store {
	if notifier == nil {
		notifier = settlement.NopNotifier{}
	}
	metrics := observability.MakeSettlementMetrics(obs)
	return &Store{
		db:              db,
		notifier:        notifier,
		clock:           clock,
		log:             obs.Log(),
		errorCounter:    metrics.DBErrors,
		rollbackCounter: metrics.Rollbacks,
	}
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx settlement.Tx) error) error {
	if tx, ok := settlement.TxFromContext(ctx); ok {
		return fn(ctx, tx)
	}

	var committed *transaction
	err := s.db.RunInTransaction(func(pgTx *pg.Tx) error {
		tx := &transaction{tx: pgTx, store: s}
		if err := fn(settlement.ContextWithTx(ctx, tx), tx); err != nil {
			return err
		}
		if err := s.appendEvents(pgTx, tx.Events()); err != nil {
			return err
		}
		committed = tx
		return nil
	})
	if err != nil {
		s.rollbackCounter.Inc()
		s.log.WithError(err).Debug("transaction rolled back")
		return err
	}
	committed.Committed(ctx, s.notifier)
	return nil
}

func (s *Store) appendEvents(tx *pg.Tx, events []settlement.Event) error {
	now := s.clock.Now().Unix()
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal event %s", e.EventName())
		}
		_, err = tx.Exec(`INSERT INTO events (name, payload, created_at) VALUES (?, ?, ?)`,
			e.EventName(), string(payload), now)
		if err != nil {
			return s.fail(err, "failed to append event %s", e.EventName())
		}
	}
	return nil
}

// fail counts an unexpected storage error and wraps it.
func (s *Store) fail(err error, format string, args ...interface{}) error {
	s.errorCounter.Inc()
	wrapped := errors.Wrapf(err, format, args...)
	s.log.Error(wrapped)
	return wrapped
}

type transaction struct {
	settlement.Journal
	tx    *pg.Tx
	store *Store
}

func (t *transaction) Balances() settlement.BalanceRepository {
	return (*balances)(t)
}

func (t *transaction) Payments() settlement.PaymentRepository {
	return (*payments)(t)
}

func (t *transaction) Escrows() settlement.EscrowRepository {
	return (*escrows)(t)
}

func (t *transaction) Roles() settlement.RoleRepository {
	return (*roles)(t)
}

func (t *transaction) Splitters() settlement.SplitterRepository {
	return (*splitters)(t)
}

func (t *transaction) Settings() settlement.SettingsRepository {
	return (*settings)(t)
}

// EventRecord is one row of the audit trail.
type EventRecord struct {
	tableName struct{} `sql:"events"` //nolint: unused,structcheck

	ID        int64  `sql:"id,pk"`
	Name      string `sql:"name,notnull"`
	Payload   string `sql:"payload,notnull"`
	CreatedAt int64  `sql:"created_at,notnull"`
}

// Events returns up to limit audit trail entries after the given id, oldest first.
func (s *Store) Events(ctx context.Context, afterID int64, limit int) ([]EventRecord, error) {
	var rows []EventRecord
	_, err := s.db.QueryContext(ctx, &rows,
		`SELECT id, name, payload::text AS payload, created_at FROM events WHERE id > ? ORDER BY id LIMIT ?`,
		afterID, limit)
	if err != nil {
		return nil, s.fail(err, "failed to fetch events")
	}
	return rows, nil
}

// Ping checks the database answers.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "SELECT 1")
	return errors.Wrap(err, "postgres ping failed")
}
