// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package settlement

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", errors.Wrapf(ErrInvalidInput, "unknown payment status %q", s)
	}
	return status, nil
}

// PaymentRecord is an entry of the payment audit log. ID is the idempotency key.
type PaymentRecord struct {
	ID        string
	Payer     Account
	Payee     Account
	Amount    *big.Int
	Asset     Asset
	Timestamp int64
	Memo      string
	Status    PaymentStatus
}

func (r *PaymentRecord) Clone() *PaymentRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Amount = CloneAmount(r.Amount)
	return &c
}

// ProcessorSettings is the persisted, admin-controlled state of the payment processor.
type ProcessorSettings struct {
	FeeBasisPoints uint32
	FeeCollector   Account
	Paused         bool
}
