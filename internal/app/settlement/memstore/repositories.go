// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package memstore

import (
	"context"
	"math/big"
	"sort"

	"github.com/pkg/errors"

	"github.com/insolar/settlement/internal/app/settlement"
)

type balances state

func (b *balances) Balance(_ context.Context, account settlement.Account, asset settlement.Asset) (*big.Int, error) {
	return settlement.CloneAmount(settlement.AmountOrZero(b.balances[balanceKey{account, asset}])), nil
}

func (b *balances) Credit(_ context.Context, account settlement.Account, asset settlement.Asset, amount *big.Int) error {
	key := balanceKey{account, asset}
	b.balances[key] = new(big.Int).Add(settlement.AmountOrZero(b.balances[key]), amount)
	return nil
}

func (b *balances) Debit(_ context.Context, account settlement.Account, asset settlement.Asset, amount *big.Int) error {
	key := balanceKey{account, asset}
	current := settlement.AmountOrZero(b.balances[key])
	if current.Cmp(amount) < 0 {
		return errors.Wrapf(settlement.ErrInsufficientFunds, "account %s holds %s %s", account, current, asset)
	}
	b.balances[key] = new(big.Int).Sub(current, amount)
	return nil
}

type payments state

func (p *payments) Insert(_ context.Context, record *settlement.PaymentRecord) error {
	if _, ok := p.payments[record.ID]; ok {
		return errors.Wrapf(settlement.ErrDuplicateID, "payment %s", record.ID)
	}
	p.payments[record.ID] = record.Clone()
	return nil
}

func (p *payments) Get(_ context.Context, id string) (*settlement.PaymentRecord, error) {
	rec, ok := p.payments[id]
	if !ok {
		return nil, errors.Wrapf(settlement.ErrNotFound, "payment %s", id)
	}
	return rec.Clone(), nil
}

func (p *payments) UpdateStatus(_ context.Context, id string, status settlement.PaymentStatus) error {
	rec, ok := p.payments[id]
	if !ok {
		return errors.Wrapf(settlement.ErrNotFound, "payment %s", id)
	}
	rec.Status = status
	return nil
}

func (p *payments) Count(context.Context) (int, error) {
	return len(p.payments), nil
}

type escrows state

func (e *escrows) Insert(_ context.Context, record *settlement.EscrowRecord) error {
	e.lastEscrow++
	record.ID = e.lastEscrow
	e.escrows[record.ID] = record.Clone()
	return nil
}

func (e *escrows) Get(_ context.Context, id uint64) (*settlement.EscrowRecord, error) {
	rec, ok := e.escrows[id]
	if !ok {
		return nil, errors.Wrapf(settlement.ErrNotFound, "escrow %d", id)
	}
	return rec.Clone(), nil
}

// GetForUpdate needs no extra locking: the store lock is held for the whole transaction.
func (e *escrows) GetForUpdate(ctx context.Context, id uint64) (*settlement.EscrowRecord, error) {
	return e.Get(ctx, id)
}

func (e *escrows) Update(_ context.Context, record *settlement.EscrowRecord) error {
	if _, ok := e.escrows[record.ID]; !ok {
		return errors.Wrapf(settlement.ErrNotFound, "escrow %d", record.ID)
	}
	e.escrows[record.ID] = record.Clone()
	return nil
}

func (e *escrows) Count(context.Context) (int, error) {
	return len(e.escrows), nil
}

type roles state

func (r *roles) HasRole(_ context.Context, role settlement.Role, account settlement.Account) (bool, error) {
	_, ok := r.members[role][account]
	return ok, nil
}

func (r *roles) Grant(_ context.Context, role settlement.Role, account settlement.Account) (bool, error) {
	set, ok := r.members[role]
	if !ok {
		set = make(map[settlement.Account]struct{})
		r.members[role] = set
	}
	if _, ok := set[account]; ok {
		return false, nil
	}
	set[account] = struct{}{}
	return true, nil
}

func (r *roles) Revoke(_ context.Context, role settlement.Role, account settlement.Account) (bool, error) {
	if _, ok := r.members[role][account]; !ok {
		return false, nil
	}
	delete(r.members[role], account)
	return true, nil
}

func (r *roles) Members(_ context.Context, role settlement.Role) ([]settlement.Account, error) {
	res := make([]settlement.Account, 0, len(r.members[role]))
	for acc := range r.members[role] {
		res = append(res, acc)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res, nil
}

func (r *roles) Admin(_ context.Context, role settlement.Role) (settlement.Role, error) {
	if admin, ok := r.admins[role]; ok {
		return admin, nil
	}
	return settlement.DefaultAdminRole, nil
}

func (r *roles) SetAdmin(_ context.Context, role settlement.Role, admin settlement.Role) error {
	r.admins[role] = admin
	return nil
}

type splitters state

func (s *splitters) Insert(_ context.Context, splitter *settlement.Splitter) error {
	if _, ok := s.splitters[splitter.ID]; ok {
		return errors.Wrapf(settlement.ErrDuplicateID, "splitter %s", splitter.ID)
	}
	s.splitters[splitter.ID] = splitter.Clone()
	return nil
}

func (s *splitters) Get(_ context.Context, id string) (*settlement.Splitter, error) {
	sp, ok := s.splitters[id]
	if !ok {
		return nil, errors.Wrapf(settlement.ErrNotFound, "splitter %s", id)
	}
	return sp.Clone(), nil
}

func (s *splitters) GetForUpdate(ctx context.Context, id string) (*settlement.Splitter, error) {
	return s.Get(ctx, id)
}

func (s *splitters) UpdateReleased(_ context.Context, id string, payee settlement.Account, released, totalReleased *big.Int) error {
	sp, ok := s.splitters[id]
	if !ok {
		return errors.Wrapf(settlement.ErrNotFound, "splitter %s", id)
	}
	if sp.Released == nil {
		sp.Released = make(map[settlement.Account]*big.Int)
	}
	sp.Released[payee] = settlement.CloneAmount(released)
	sp.TotalReleased = settlement.CloneAmount(totalReleased)
	return nil
}

type settings state

func (s *settings) ProcessorSettings(context.Context) (*settlement.ProcessorSettings, error) {
	if s.processor == nil {
		return nil, errors.Wrap(settlement.ErrNotFound, "processor settings")
	}
	res := *s.processor
	return &res, nil
}

func (s *settings) ProcessorSettingsForUpdate(ctx context.Context) (*settlement.ProcessorSettings, error) {
	return s.ProcessorSettings(ctx)
}

func (s *settings) SaveProcessorSettings(_ context.Context, ps *settlement.ProcessorSettings) error {
	res := *ps
	s.processor = &res
	return nil
}
