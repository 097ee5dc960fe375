// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package memstore

import (
	"math/big"

	"github.com/insolar/settlement/internal/app/settlement"
)

type balanceKey struct {
	account settlement.Account
	asset   settlement.Asset
}

type state struct {
	balances   map[balanceKey]*big.Int
	payments   map[string]*settlement.PaymentRecord
	escrows    map[uint64]*settlement.EscrowRecord
	lastEscrow uint64
	members    map[settlement.Role]map[settlement.Account]struct{}
	admins     map[settlement.Role]settlement.Role
	splitters  map[string]*settlement.Splitter
	processor  *settlement.ProcessorSettings
}

func newState() *state {
	return &state{
		balances:  make(map[balanceKey]*big.Int),
		payments:  make(map[string]*settlement.PaymentRecord),
		escrows:   make(map[uint64]*settlement.EscrowRecord),
		members:   make(map[settlement.Role]map[settlement.Account]struct{}),
		admins:    make(map[settlement.Role]settlement.Role),
		splitters: make(map[string]*settlement.Splitter),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.balances {
		c.balances[k] = settlement.CloneAmount(v)
	}
	for k, v := range s.payments {
		c.payments[k] = v.Clone()
	}
	for k, v := range s.escrows {
		c.escrows[k] = v.Clone()
	}
	c.lastEscrow = s.lastEscrow
	for role, set := range s.members {
		cs := make(map[settlement.Account]struct{}, len(set))
		for acc := range set {
			cs[acc] = struct{}{}
		}
		c.members[role] = cs
	}
	for k, v := range s.admins {
		c.admins[k] = v
	}
	for k, v := range s.splitters {
		c.splitters[k] = v.Clone()
	}
	if s.processor != nil {
		p := *s.processor
		c.processor = &p
	}
	return c
}
