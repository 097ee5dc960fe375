// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package settlement

import (
	"math/big"
)

type Share struct {
	Payee Account
	Units uint64
}

// Splitter distributes everything deposited to Account among Shares by pull.
// The share table is fixed at creation.
type Splitter struct {
	ID            string
	Account       Account
	Asset         Asset
	Shares        []Share
	TotalShares   uint64
	TotalReleased *big.Int
	Released      map[Account]*big.Int
	CreatedAt     int64
}

func SplitterAccount(id string) Account {
	return CustodyAccount("splitter", id)
}

func (s *Splitter) SharesOf(payee Account) uint64 {
	for _, sh := range s.Shares {
		if sh.Payee == payee {
			return sh.Units
		}
	}
	return 0
}

func (s *Splitter) ReleasedTo(payee Account) *big.Int {
	if v, ok := s.Released[payee]; ok && v != nil {
		return CloneAmount(v)
	}
	return new(big.Int)
}

// Releasable is the amount owed to payee given the splitter's current custody balance.
func (s *Splitter) Releasable(payee Account, balance *big.Int) *big.Int {
	units := s.SharesOf(payee)
	if units == 0 || s.TotalShares == 0 {
		return new(big.Int)
	}
	received := new(big.Int).Add(AmountOrZero(balance), AmountOrZero(s.TotalReleased))
	entitled := new(big.Int).Mul(received, new(big.Int).SetUint64(units))
	entitled.Quo(entitled, new(big.Int).SetUint64(s.TotalShares))
	due := entitled.Sub(entitled, s.ReleasedTo(payee))
	if due.Sign() < 0 {
		return new(big.Int)
	}
	return due
}

func (s *Splitter) Clone() *Splitter {
	if s == nil {
		return nil
	}
	c := *s
	c.Shares = append([]Share(nil), s.Shares...)
	c.TotalReleased = CloneAmount(s.TotalReleased)
	c.Released = make(map[Account]*big.Int, len(s.Released))
	for k, v := range s.Released {
		c.Released[k] = CloneAmount(v)
	}
	return &c
}
