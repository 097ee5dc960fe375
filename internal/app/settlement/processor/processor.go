// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package processor

import (
	"context"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/internal/app/settlement"
)

type Authorizer interface {
	Require(ctx context.Context, role settlement.Role, account settlement.Account) error
}

// Recorder receives a record for every settled payment.
type Recorder interface {
	RegisterPayment(ctx context.Context, caller settlement.Account, record settlement.PaymentRecord) error
}

type PaymentRequest struct {
	// ID is the idempotency key. A random one is generated when empty.
	ID     string
	Payee  settlement.Account
	Asset  settlement.Asset
	Amount *big.Int
	Memo   string
}

type Receipt struct {
	PaymentID string
	Fee       *big.Int
	Net       *big.Int
}

// Processor settles fee-bearing payments: the payee receives the amount minus
// the platform fee, the fee collector receives the fee.
type Processor struct {
	db       settlement.Transactor
	auth     Authorizer
	recorder Recorder
	clock    settlement.Clock
	log      *logrus.Logger

	// account is the identity the processor writes to the recorder under.
	account settlement.Account
}

// NewProcessor builds a processor. recorder may be nil, then payments are not audited.
func NewProcessor(
	db settlement.Transactor,
	auth Authorizer,
	recorder Recorder,
	clock settlement.Clock,
	log *logrus.Logger,
	account settlement.Account,
) *Processor {
	return &Processor{
		db:       db,
		auth:     auth,
		recorder: recorder,
		clock:    clock,
		log:      log,
		account:  account,
	}
}

func (p *Processor) Account() settlement.Account {
	return p.account
}

// Init stores the initial settings unless the processor was initialised before.
func (p *Processor) Init(ctx context.Context, collector settlement.Account, bps uint32) error {
	if collector.IsNull() {
		return errors.Wrap(settlement.ErrInvalidInput, "empty fee collector")
	}
	if bps > MaxFeeBasisPoints {
		return errors.Wrapf(settlement.ErrFeeTooHigh, "initial fee %d bps", bps)
	}
	return p.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		_, err := tx.Settings().ProcessorSettings(ctx)
		if err == nil {
			return nil
		}
		if settlement.KindOf(err) != settlement.KindNotFound {
			return errors.Wrap(err, "failed to read processor settings")
		}
		return tx.Settings().SaveProcessorSettings(ctx, &settlement.ProcessorSettings{
			FeeBasisPoints: bps,
			FeeCollector:   collector,
		})
	})
}

// ProcessPayment settles req with supplied value taken from caller.
func (p *Processor) ProcessPayment(ctx context.Context, caller settlement.Account, supplied *big.Int, req PaymentRequest) (*Receipt, error) {
	if req.Payee.IsNull() {
		return nil, settlement.ErrInvalidPayee
	}
	if !settlement.IsPositive(req.Amount) {
		return nil, settlement.ErrInvalidAmount
	}
	if supplied == nil || supplied.Cmp(req.Amount) != 0 {
		return nil, errors.Wrapf(settlement.ErrIncorrectTotalAmount, "supplied %s, declared %s", supplied, req.Amount)
	}
	if caller.IsNull() {
		return nil, errors.Wrap(settlement.ErrInvalidInput, "empty payer")
	}
	if err := settlement.RequireExternal(caller); err != nil {
		return nil, err
	}
	asset := req.Asset
	if strings.TrimSpace(string(asset)) == "" {
		asset = settlement.NativeAsset
	}
	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.New().String()
	}

	var receipt *Receipt
	err := p.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		settings, err := tx.Settings().ProcessorSettings(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read processor settings")
		}
		if settings.Paused {
			return settlement.ErrPaused
		}

		fee, net := ComputeFee(req.Amount, settings.FeeBasisPoints)

		if p.recorder != nil {
			err := p.recorder.RegisterPayment(ctx, p.account, settlement.PaymentRecord{
				ID:        id,
				Payer:     caller,
				Payee:     req.Payee,
				Amount:    settlement.CloneAmount(req.Amount),
				Asset:     asset,
				Timestamp: p.clock.Now().Unix(),
				Memo:      req.Memo,
				Status:    settlement.PaymentCompleted,
			})
			if err != nil {
				return err
			}
		}

		if err := settlement.Transfer(ctx, tx.Balances(), caller, settings.FeeCollector, asset, fee); err != nil {
			return errors.Wrap(err, "failed to pay fee")
		}
		if err := settlement.Transfer(ctx, tx.Balances(), caller, req.Payee, asset, net); err != nil {
			return errors.Wrap(err, "failed to pay payee")
		}

		tx.Emit(settlement.PaymentProcessed{
			PaymentID: id,
			Payer:     caller,
			Payee:     req.Payee,
			Asset:     asset,
			Amount:    settlement.CloneAmount(req.Amount),
			Fee:       settlement.CloneAmount(fee),
			Memo:      req.Memo,
		})
		receipt = &Receipt{PaymentID: id, Fee: fee, Net: net}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"payment_id": id,
		"payer":      caller,
		"payee":      req.Payee,
		"amount":     req.Amount.String(),
		"fee":        receipt.Fee.String(),
	}).Info("payment processed")
	return receipt, nil
}

func (p *Processor) UpdatePlatformFee(ctx context.Context, caller settlement.Account, bps uint32) error {
	if bps > MaxFeeBasisPoints {
		return errors.Wrapf(settlement.ErrFeeTooHigh, "%d bps exceeds %d", bps, MaxFeeBasisPoints)
	}
	return p.updateSettings(ctx, caller, settlement.RoleFeeManager, func(tx settlement.Tx, s *settlement.ProcessorSettings) error {
		tx.Emit(settlement.PlatformFeeUpdated{OldBasisPoints: s.FeeBasisPoints, NewBasisPoints: bps})
		s.FeeBasisPoints = bps
		return nil
	})
}

func (p *Processor) UpdateFeeCollector(ctx context.Context, caller, collector settlement.Account) error {
	if collector.IsNull() {
		return errors.Wrap(settlement.ErrInvalidInput, "empty fee collector")
	}
	return p.updateSettings(ctx, caller, settlement.RoleAdmin, func(tx settlement.Tx, s *settlement.ProcessorSettings) error {
		tx.Emit(settlement.FeeCollectorUpdated{Old: s.FeeCollector, New: collector})
		s.FeeCollector = collector
		return nil
	})
}

func (p *Processor) Pause(ctx context.Context, caller settlement.Account) error {
	return p.setPaused(ctx, caller, true)
}

func (p *Processor) Unpause(ctx context.Context, caller settlement.Account) error {
	return p.setPaused(ctx, caller, false)
}

func (p *Processor) Settings(ctx context.Context) (*settlement.ProcessorSettings, error) {
	var res *settlement.ProcessorSettings
	err := p.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		var err error
		res, err = tx.Settings().ProcessorSettings(ctx)
		return err
	})
	return res, errors.Wrap(err, "failed to read processor settings")
}

func (p *Processor) setPaused(ctx context.Context, caller settlement.Account, paused bool) error {
	return p.updateSettings(ctx, caller, settlement.RolePauser, func(tx settlement.Tx, s *settlement.ProcessorSettings) error {
		if s.Paused == paused {
			return nil
		}
		s.Paused = paused
		if paused {
			tx.Emit(settlement.Paused{Account: caller})
		} else {
			tx.Emit(settlement.Unpaused{Account: caller})
		}
		return nil
	})
}

func (p *Processor) updateSettings(
	ctx context.Context,
	caller settlement.Account,
	role settlement.Role,
	apply func(tx settlement.Tx, s *settlement.ProcessorSettings) error,
) error {
	return p.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		if err := p.auth.Require(ctx, role, caller); err != nil {
			return err
		}
		s, err := tx.Settings().ProcessorSettingsForUpdate(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read processor settings")
		}
		if err := apply(tx, s); err != nil {
			return err
		}
		return errors.Wrap(tx.Settings().SaveProcessorSettings(ctx, s), "failed to save processor settings")
	})
}
