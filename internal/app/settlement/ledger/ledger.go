// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

// Package ledger exposes the value-transfer substrate: crediting accounts from
// outside the system, plain transfers and balance queries.
package ledger

import (
	"context"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/internal/app/settlement"
)

// DepositorRole may credit accounts with value entering the system.
const DepositorRole = settlement.RoleOperator

type Authorizer interface {
	Require(ctx context.Context, role settlement.Role, account settlement.Account) error
}

type Ledger struct {
	db   settlement.Transactor
	auth Authorizer
	log  *logrus.Logger
}

func NewLedger(db settlement.Transactor, auth Authorizer, log *logrus.Logger) *Ledger {
	return &Ledger{db: db, auth: auth, log: log}
}

func (l *Ledger) Deposit(ctx context.Context, caller, account settlement.Account, asset settlement.Asset, amount *big.Int) error {
	if account.IsNull() {
		return errors.Wrap(settlement.ErrInvalidInput, "empty account")
	}
	if !settlement.IsPositive(amount) {
		return settlement.ErrInvalidAmount
	}
	asset = assetOrNative(asset)
	return l.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		if err := l.auth.Require(ctx, DepositorRole, caller); err != nil {
			return err
		}
		if err := tx.Balances().Credit(ctx, account, asset, amount); err != nil {
			return errors.Wrapf(err, "failed to credit %s", account)
		}
		tx.Emit(settlement.Deposited{Account: account, Asset: asset, Amount: settlement.CloneAmount(amount)})
		return nil
	})
}

// Transfer moves amount from caller to to. Depositing into a splitter's
// account is done this way.
func (l *Ledger) Transfer(ctx context.Context, caller, to settlement.Account, asset settlement.Asset, amount *big.Int) error {
	if caller.IsNull() {
		return errors.Wrap(settlement.ErrInvalidInput, "empty sender")
	}
	if err := settlement.RequireExternal(caller); err != nil {
		return err
	}
	if to.IsNull() {
		return settlement.ErrInvalidPayee
	}
	if !settlement.IsPositive(amount) {
		return settlement.ErrInvalidAmount
	}
	asset = assetOrNative(asset)
	err := l.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		if err := settlement.Transfer(ctx, tx.Balances(), caller, to, asset, amount); err != nil {
			return err
		}
		tx.Emit(settlement.Transferred{From: caller, To: to, Asset: asset, Amount: settlement.CloneAmount(amount)})
		return nil
	})
	if err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{"from": caller, "to": to, "amount": amount.String(), "asset": asset}).Debug("transferred")
	return nil
}

func (l *Ledger) BalanceOf(ctx context.Context, account settlement.Account, asset settlement.Asset) (*big.Int, error) {
	var balance *big.Int
	err := l.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		var err error
		balance, err = tx.Balances().Balance(ctx, account, assetOrNative(asset))
		return err
	})
	return balance, errors.Wrapf(err, "failed to read balance of %s", account)
}

func assetOrNative(asset settlement.Asset) settlement.Asset {
	if strings.TrimSpace(string(asset)) == "" {
		return settlement.NativeAsset
	}
	return asset
}
