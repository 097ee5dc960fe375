// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

// Package memstore keeps settlement state in process memory. Transactions are
// serialised by a single lock and applied copy-on-write, so a failed operation
// leaves no trace. It backs tests and single-node development setups.
package memstore

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/internal/app/settlement"
)

type Store struct {
	mu       sync.Mutex
	state    *state
	notifier settlement.Notifier
	log      *logrus.Logger
}

func New(notifier settlement.Notifier, log *logrus.Logger) *Store {
	if notifier == nil {
		notifier = settlement.NopNotifier{}
	}
	return &Store{
		state:    newState(),
		notifier: notifier,
		log:      log,
	}
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx settlement.Tx) error) error {
	if tx, ok := settlement.TxFromContext(ctx); ok {
		return fn(ctx, tx)
	}

	tx, err := s.apply(ctx, fn)
	if err != nil {
		if s.log != nil {
			s.log.WithError(err).Debug("transaction rolled back")
		}
		return err
	}
	tx.Committed(ctx, s.notifier)
	return nil
}

func (s *Store) apply(ctx context.Context, fn func(ctx context.Context, tx settlement.Tx) error) (*transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(settlement.ContextWithTx(ctx, tx), tx); err != nil {
		return nil, err
	}
	s.state = tx.state
	return tx, nil
}

type transaction struct {
	settlement.Journal
	state *state
}

func (t *transaction) Balances() settlement.BalanceRepository {
	return (*balances)(t.state)
}

func (t *transaction) Payments() settlement.PaymentRepository {
	return (*payments)(t.state)
}

func (t *transaction) Escrows() settlement.EscrowRepository {
	return (*escrows)(t.state)
}

func (t *transaction) Roles() settlement.RoleRepository {
	return (*roles)(t.state)
}

func (t *transaction) Splitters() settlement.SplitterRepository {
	return (*splitters)(t.state)
}

func (t *transaction) Settings() settlement.SettingsRepository {
	return (*settings)(t.state)
}
