// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package escrow

import (
	"context"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/internal/app/settlement"
)

type CreateRequest struct {
	Payee       settlement.Account
	Asset       settlement.Asset
	Amount      *big.Int
	ReleaseTime int64
	Memo        string
}

// Manager keeps escrowed value on its custody account. An escrow is released to
// the payee once its release time has come, or earlier by the payer; only the
// payer can take it back.
type Manager struct {
	db      settlement.Transactor
	clock   settlement.Clock
	log     *logrus.Logger
	custody settlement.Account
}

// NewManager keeps escrowed value on the custody account named name.
func NewManager(db settlement.Transactor, clock settlement.Clock, log *logrus.Logger, name string) *Manager {
	return &Manager{db: db, clock: clock, log: log, custody: settlement.CustodyAccount("escrow", name)}
}

func (m *Manager) Custody() settlement.Account {
	return m.custody
}

// CreateEscrow captures supplied value from caller and opens a record.
func (m *Manager) CreateEscrow(ctx context.Context, caller settlement.Account, supplied *big.Int, req CreateRequest) (*settlement.EscrowRecord, error) {
	if caller.IsNull() {
		return nil, errors.Wrap(settlement.ErrInvalidInput, "empty payer")
	}
	if err := settlement.RequireExternal(caller); err != nil {
		return nil, err
	}
	if req.Payee.IsNull() {
		return nil, settlement.ErrInvalidPayee
	}
	if !settlement.IsPositive(req.Amount) {
		return nil, settlement.ErrInvalidAmount
	}
	if supplied == nil || supplied.Cmp(req.Amount) != 0 {
		return nil, errors.Wrapf(settlement.ErrIncorrectTotalAmount, "supplied %s, declared %s", supplied, req.Amount)
	}
	now := m.clock.Now().Unix()
	if req.ReleaseTime <= now {
		return nil, errors.Wrapf(settlement.ErrInvalidReleaseTime, "release time %d is not after %d", req.ReleaseTime, now)
	}
	asset := req.Asset
	if strings.TrimSpace(string(asset)) == "" {
		asset = settlement.NativeAsset
	}

	record := &settlement.EscrowRecord{
		Payer:       caller,
		Payee:       req.Payee,
		Amount:      settlement.CloneAmount(req.Amount),
		Asset:       asset,
		ReleaseTime: req.ReleaseTime,
		Memo:        req.Memo,
		CreatedAt:   now,
	}
	err := m.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		if err := tx.Escrows().Insert(ctx, record); err != nil {
			return errors.Wrap(err, "failed to insert escrow")
		}
		if err := settlement.Transfer(ctx, tx.Balances(), caller, m.custody, asset, record.Amount); err != nil {
			return errors.Wrap(err, "failed to capture escrow funds")
		}
		tx.Emit(settlement.EscrowCreated{
			EscrowID:    record.ID,
			Payer:       record.Payer,
			Payee:       record.Payee,
			Amount:      settlement.CloneAmount(record.Amount),
			ReleaseTime: record.ReleaseTime,
			Memo:        record.Memo,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.WithFields(logrus.Fields{"escrow_id": record.ID, "payer": caller, "payee": req.Payee}).Info("escrow created")
	return record.Clone(), nil
}

// ReleaseEscrow forwards held value to the payee. Before the release time only
// the payer may do it.
func (m *Manager) ReleaseEscrow(ctx context.Context, caller settlement.Account, id uint64) error {
	err := m.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		record, err := tx.Escrows().GetForUpdate(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "failed to get escrow %d", id)
		}
		if record.Settled() {
			return errors.Wrapf(settlement.ErrAlreadySettled, "escrow %d", id)
		}
		if caller != record.Payer && m.clock.Now().Unix() < record.ReleaseTime {
			return errors.Wrapf(settlement.ErrTooEarly, "escrow %d releases at %d", id, record.ReleaseTime)
		}

		record.Released = true
		if err := tx.Escrows().Update(ctx, record); err != nil {
			return errors.Wrapf(err, "failed to update escrow %d", id)
		}
		if err := settlement.Transfer(ctx, tx.Balances(), m.custody, record.Payee, record.Asset, record.Amount); err != nil {
			return errors.Wrapf(err, "failed to release escrow %d", id)
		}
		tx.Emit(settlement.EscrowReleased{EscrowID: id})
		return nil
	})
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"escrow_id": id, "caller": caller}).Info("escrow released")
	return nil
}

// RefundEscrow returns held value to the payer. Only the payer may call it.
func (m *Manager) RefundEscrow(ctx context.Context, caller settlement.Account, id uint64) error {
	err := m.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		record, err := tx.Escrows().GetForUpdate(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "failed to get escrow %d", id)
		}
		if caller != record.Payer {
			return errors.Wrapf(settlement.ErrUnauthorized, "%s is not the payer of escrow %d", caller, id)
		}
		if record.Settled() {
			return errors.Wrapf(settlement.ErrAlreadySettled, "escrow %d", id)
		}

		record.Refunded = true
		if err := tx.Escrows().Update(ctx, record); err != nil {
			return errors.Wrapf(err, "failed to update escrow %d", id)
		}
		if err := settlement.Transfer(ctx, tx.Balances(), m.custody, record.Payer, record.Asset, record.Amount); err != nil {
			return errors.Wrapf(err, "failed to refund escrow %d", id)
		}
		tx.Emit(settlement.EscrowRefunded{EscrowID: id})
		return nil
	})
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"escrow_id": id}).Info("escrow refunded")
	return nil
}

func (m *Manager) GetEscrow(ctx context.Context, id uint64) (*settlement.EscrowRecord, error) {
	var record *settlement.EscrowRecord
	err := m.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		var err error
		record, err = tx.Escrows().Get(ctx, id)
		return err
	})
	return record, errors.Wrapf(err, "failed to get escrow %d", id)
}

func (m *Manager) EscrowCount(ctx context.Context) (int, error) {
	var count int
	err := m.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		var err error
		count, err = tx.Escrows().Count(ctx)
		return err
	})
	return count, errors.Wrap(err, "failed to count escrows")
}
