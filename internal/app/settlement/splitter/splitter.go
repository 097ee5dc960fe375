// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

// Package splitter implements pull-based proportional payment splitting.
//
// A splitter owns a custody account. Anything transferred to that account, by a
// plain transfer, as an escrow payee or as a payment processor payee, counts
// towards the total received. Every payee may pull
//
//	floor(totalReceived * shares / totalShares) - alreadyReleased
//
// at any time. Nothing is pushed automatically.
package splitter

import (
	"context"
	"math"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/internal/app/settlement"
)

type Service struct {
	db    settlement.Transactor
	clock settlement.Clock
	log   *logrus.Logger
}

func NewService(db settlement.Transactor, clock settlement.Clock, log *logrus.Logger) *Service {
	return &Service{db: db, clock: clock, log: log}
}

// CreateSplitter provisions a splitter for asset with a fixed share table.
func (s *Service) CreateSplitter(
	ctx context.Context,
	caller settlement.Account,
	asset settlement.Asset,
	payees []settlement.Account,
	shares []uint64,
) (*settlement.Splitter, error) {
	if caller.IsNull() {
		return nil, errors.Wrap(settlement.ErrInvalidInput, "empty caller")
	}
	table, total, err := shareTable(payees, shares)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(asset)) == "" {
		asset = settlement.NativeAsset
	}

	id := uuid.New().String()
	sp := &settlement.Splitter{
		ID:            id,
		Account:       settlement.SplitterAccount(id),
		Asset:         asset,
		Shares:        table,
		TotalShares:   total,
		TotalReleased: new(big.Int),
		Released:      make(map[settlement.Account]*big.Int),
		CreatedAt:     s.clock.Now().Unix(),
	}
	err = s.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		if err := tx.Splitters().Insert(ctx, sp); err != nil {
			return errors.Wrap(err, "failed to insert splitter")
		}
		tx.Emit(settlement.PaymentSplitterDeployed{
			SplitterID: sp.ID,
			Account:    sp.Account,
			Asset:      sp.Asset,
			Payees:     append([]settlement.Account(nil), payees...),
			Shares:     append([]uint64(nil), shares...),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"splitter_id": id, "creator": caller, "payees": len(table)}).Info("splitter deployed")
	return sp.Clone(), nil
}

// Release pays payee whatever it is owed and returns the amount paid.
// Nothing owed is not an error, the result is then zero.
func (s *Service) Release(ctx context.Context, id string, payee settlement.Account) (*big.Int, error) {
	var paid *big.Int
	err := s.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		sp, err := tx.Splitters().GetForUpdate(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "failed to get splitter %s", id)
		}
		if sp.SharesOf(payee) == 0 {
			return errors.Wrapf(settlement.ErrNoShares, "%s in splitter %s", payee, id)
		}
		balance, err := tx.Balances().Balance(ctx, sp.Account, sp.Asset)
		if err != nil {
			return errors.Wrap(err, "failed to read splitter balance")
		}

		due := sp.Releasable(payee, balance)
		if due.Sign() == 0 {
			paid = due
			return nil
		}

		released := new(big.Int).Add(sp.ReleasedTo(payee), due)
		total := new(big.Int).Add(settlement.AmountOrZero(sp.TotalReleased), due)
		if err := tx.Splitters().UpdateReleased(ctx, id, payee, released, total); err != nil {
			return errors.Wrapf(err, "failed to update splitter %s", id)
		}
		if err := settlement.Transfer(ctx, tx.Balances(), sp.Account, payee, sp.Asset, due); err != nil {
			return errors.Wrapf(err, "failed to pay %s", payee)
		}
		tx.Emit(settlement.PaymentReleased{SplitterID: id, Payee: payee, Amount: settlement.CloneAmount(due)})
		paid = due
		return nil
	})
	if err != nil {
		return nil, err
	}
	if paid.Sign() > 0 {
		s.log.WithFields(logrus.Fields{"splitter_id": id, "payee": payee, "amount": paid.String()}).Info("payment released")
	}
	return paid, nil
}

// Releasable reports what Release would pay payee right now.
func (s *Service) Releasable(ctx context.Context, id string, payee settlement.Account) (*big.Int, error) {
	var due *big.Int
	err := s.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		sp, err := tx.Splitters().Get(ctx, id)
		if err != nil {
			return err
		}
		balance, err := tx.Balances().Balance(ctx, sp.Account, sp.Asset)
		if err != nil {
			return err
		}
		due = sp.Releasable(payee, balance)
		return nil
	})
	return due, errors.Wrapf(err, "failed to compute releasable for %s", payee)
}

func (s *Service) Get(ctx context.Context, id string) (*settlement.Splitter, error) {
	var sp *settlement.Splitter
	err := s.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		var err error
		sp, err = tx.Splitters().Get(ctx, id)
		return err
	})
	return sp, errors.Wrapf(err, "failed to get splitter %s", id)
}

// maxTotalShares keeps share counts within a signed 64-bit column.
const maxTotalShares = math.MaxInt64

func shareTable(payees []settlement.Account, shares []uint64) ([]settlement.Share, uint64, error) {
	if len(payees) == 0 {
		return nil, 0, errors.Wrap(settlement.ErrInvalidInput, "no payees")
	}
	if len(payees) != len(shares) {
		return nil, 0, errors.Wrapf(settlement.ErrLengthMismatch, "%d payees, %d shares", len(payees), len(shares))
	}
	seen := make(map[settlement.Account]struct{}, len(payees))
	table := make([]settlement.Share, 0, len(payees))
	var total uint64
	for i, payee := range payees {
		if payee.IsNull() {
			return nil, 0, settlement.ErrInvalidPayee
		}
		if _, dup := seen[payee]; dup {
			return nil, 0, errors.Wrapf(settlement.ErrInvalidInput, "payee %s listed twice", payee)
		}
		if shares[i] == 0 {
			return nil, 0, errors.Wrapf(settlement.ErrInvalidInput, "payee %s has zero shares", payee)
		}
		if shares[i] > maxTotalShares-total {
			return nil, 0, errors.Wrapf(settlement.ErrInvalidInput, "total shares exceed %d", uint64(maxTotalShares))
		}
		seen[payee] = struct{}{}
		total += shares[i]
		table = append(table, settlement.Share{Payee: payee, Units: shares[i]})
	}
	return table, total, nil
}
