// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package batch

import (
	"context"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/internal/app/settlement"
)

type Executor struct {
	db  settlement.Transactor
	log *logrus.Logger
}

func NewExecutor(db settlement.Transactor, log *logrus.Logger) *Executor {
	return &Executor{db: db, log: log}
}

// BatchTransfer pays amounts[i] to recipients[i] from caller. The amounts must
// add up to supplied exactly; either every transfer happens or none.
func (e *Executor) BatchTransfer(
	ctx context.Context,
	caller settlement.Account,
	supplied *big.Int,
	asset settlement.Asset,
	recipients []settlement.Account,
	amounts []*big.Int,
) error {
	if caller.IsNull() {
		return errors.Wrap(settlement.ErrInvalidInput, "empty payer")
	}
	if err := settlement.RequireExternal(caller); err != nil {
		return err
	}
	if len(recipients) != len(amounts) {
		return errors.Wrapf(settlement.ErrLengthMismatch, "%d recipients, %d amounts", len(recipients), len(amounts))
	}
	if len(recipients) == 0 {
		return errors.Wrap(settlement.ErrInvalidInput, "empty batch")
	}
	for i := range recipients {
		if recipients[i].IsNull() {
			return errors.Wrapf(settlement.ErrInvalidPayee, "recipient #%d", i)
		}
		if !settlement.IsPositive(amounts[i]) {
			return errors.Wrapf(settlement.ErrInvalidAmount, "amount #%d", i)
		}
	}
	total := settlement.SumAmounts(amounts)
	if supplied == nil || total.Cmp(supplied) != 0 {
		return errors.Wrapf(settlement.ErrIncorrectTotalAmount, "supplied %s, batch total %s", supplied, total)
	}
	if strings.TrimSpace(string(asset)) == "" {
		asset = settlement.NativeAsset
	}

	err := e.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		for i, to := range recipients {
			if err := settlement.Transfer(ctx, tx.Balances(), caller, to, asset, amounts[i]); err != nil {
				return errors.Wrapf(err, "batch transfer #%d to %s failed", i, to)
			}
		}
		tx.Emit(settlement.BatchTransferred{
			Payer:      caller,
			Asset:      asset,
			Total:      settlement.CloneAmount(total),
			Recipients: len(recipients),
		})
		return nil
	})
	if err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{"payer": caller, "recipients": len(recipients), "total": total.String()}).Info("batch transferred")
	return nil
}
