// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package settlement

import (
	"math/big"
)

// EscrowRecord holds value on behalf of Payer until it is released to Payee or
// refunded. Released and Refunded are mutually exclusive and terminal.
type EscrowRecord struct {
	ID          uint64
	Payer       Account
	Payee       Account
	Amount      *big.Int
	Asset       Asset
	ReleaseTime int64
	Memo        string
	Released    bool
	Refunded    bool
	CreatedAt   int64
}

func (e *EscrowRecord) Settled() bool {
	return e.Released || e.Refunded
}

func (e *EscrowRecord) Clone() *EscrowRecord {
	if e == nil {
		return nil
	}
	c := *e
	c.Amount = CloneAmount(e.Amount)
	return &c
}
