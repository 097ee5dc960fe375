// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package registry

import (
	"context"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/internal/app/settlement"
)

// WriterRole is required to insert records and change their status.
const WriterRole = settlement.RoleOperator

type Authorizer interface {
	Require(ctx context.Context, role settlement.Role, account settlement.Account) error
}

// Registry is the payment audit log. Records are keyed by a caller-supplied id
// and are never overwritten or deleted.
type Registry struct {
	db    settlement.Transactor
	auth  Authorizer
	log   *logrus.Logger
	cache *lru.Cache

	// epoch advances on every invalidation. A fill that started under an
	// older epoch may hold a stale record and is dropped.
	mu    sync.Mutex
	epoch uint64
}

// NewRegistry builds the registry. cacheSize <= 0 disables the read cache.
func NewRegistry(db settlement.Transactor, auth Authorizer, log *logrus.Logger, cacheSize int) (*Registry, error) {
	r := &Registry{db: db, auth: auth, log: log}
	if cacheSize > 0 {
		cache, err := lru.New(cacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "failed to init cache")
		}
		r.cache = cache
	}
	return r, nil
}

func (r *Registry) RegisterPayment(ctx context.Context, caller settlement.Account, record settlement.PaymentRecord) error {
	if err := validateRecord(&record); err != nil {
		return err
	}
	return r.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		if err := r.auth.Require(ctx, WriterRole, caller); err != nil {
			return err
		}
		if err := tx.Payments().Insert(ctx, &record); err != nil {
			return errors.Wrapf(err, "failed to register payment %s", record.ID)
		}
		tx.Emit(settlement.PaymentRegistered{
			ID:        record.ID,
			Payer:     record.Payer,
			Payee:     record.Payee,
			Amount:    settlement.CloneAmount(record.Amount),
			Asset:     record.Asset,
			Timestamp: record.Timestamp,
			Memo:      record.Memo,
			Status:    record.Status,
		})
		stored := record.Clone()
		epoch := r.currentEpoch()
		tx.AfterCommit(func() {
			r.remember(stored, epoch)
			r.log.WithFields(logrus.Fields{"payment_id": stored.ID, "status": stored.Status}).Debug("payment registered")
		})
		return nil
	})
}

// UpdatePaymentStatus moves a record to status. Any status may follow any other.
func (r *Registry) UpdatePaymentStatus(ctx context.Context, caller settlement.Account, id string, status settlement.PaymentStatus) error {
	if !status.Valid() {
		return errors.Wrapf(settlement.ErrInvalidInput, "unknown payment status %q", status)
	}
	return r.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		if err := r.auth.Require(ctx, WriterRole, caller); err != nil {
			return err
		}
		if err := tx.Payments().UpdateStatus(ctx, id, status); err != nil {
			return errors.Wrapf(err, "failed to update payment %s", id)
		}
		tx.Emit(settlement.PaymentStatusUpdated{ID: id, NewStatus: status})
		tx.AfterCommit(func() {
			r.forget(id)
		})
		return nil
	})
}

func (r *Registry) GetPayment(ctx context.Context, id string) (*settlement.PaymentRecord, error) {
	if rec, ok := r.cached(id); ok {
		return rec, nil
	}
	epoch := r.currentEpoch()
	var rec *settlement.PaymentRecord
	err := r.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		var err error
		rec, err = tx.Payments().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get payment %s", id)
	}
	// Reads joining an outer transaction may see uncommitted rows.
	if _, inTx := settlement.TxFromContext(ctx); !inTx {
		r.remember(rec, epoch)
	}
	return rec.Clone(), nil
}

func (r *Registry) GetPaymentCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		var err error
		count, err = tx.Payments().Count(ctx)
		return err
	})
	return count, errors.Wrap(err, "failed to count payments")
}

func (r *Registry) cached(id string) (*settlement.PaymentRecord, bool) {
	if r.cache == nil {
		return nil, false
	}
	val, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	rec, ok := val.(*settlement.PaymentRecord)
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

func (r *Registry) currentEpoch() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch
}

// remember caches rec unless an invalidation happened after epoch was taken.
func (r *Registry) remember(rec *settlement.PaymentRecord, epoch uint64) {
	if r.cache == nil || rec == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != epoch {
		return
	}
	_ = r.cache.Add(rec.ID, rec.Clone())
}

func (r *Registry) forget(id string) {
	if r.cache == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	r.cache.Remove(id)
}

func validateRecord(rec *settlement.PaymentRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.Wrap(settlement.ErrInvalidInput, "empty payment id")
	}
	if rec.Payee.IsNull() {
		return settlement.ErrInvalidPayee
	}
	if !settlement.IsPositive(rec.Amount) {
		return settlement.ErrInvalidAmount
	}
	if !rec.Status.Valid() {
		return errors.Wrapf(settlement.ErrInvalidInput, "unknown payment status %q", rec.Status)
	}
	return nil
}
