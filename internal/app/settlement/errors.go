// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package settlement

import (
	"github.com/pkg/errors"
)

// Kind groups domain failures so that callers and transports can branch on them.
type Kind string

const (
	KindInternal             Kind = "internal"
	KindUnauthorized         Kind = "unauthorized"
	KindInvalidInput         Kind = "invalid_input"
	KindDuplicateID          Kind = "duplicate_id"
	KindNotFound             Kind = "not_found"
	KindAlreadySettled       Kind = "already_settled"
	KindTooEarly             Kind = "too_early"
	KindIncorrectTotalAmount Kind = "incorrect_total_amount"
	KindFeeTooHigh           Kind = "fee_too_high"
	KindInsufficientFunds    Kind = "insufficient_funds"
	KindPaused               Kind = "paused"
)

type Error struct {
	kind Kind
	msg  string
}

func newError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Kind() Kind {
	return e.kind
}

var (
	ErrUnauthorized         = newError(KindUnauthorized, "unauthorized")
	ErrInvalidInput         = newError(KindInvalidInput, "invalid input")
	ErrInvalidPayee         = newError(KindInvalidInput, "invalid payee")
	ErrInvalidAmount        = newError(KindInvalidInput, "invalid amount")
	ErrInvalidReleaseTime   = newError(KindInvalidInput, "invalid release time")
	ErrLengthMismatch       = newError(KindInvalidInput, "recipients and amounts length mismatch")
	ErrNoShares             = newError(KindInvalidInput, "account has no shares")
	ErrDuplicateID          = newError(KindDuplicateID, "duplicate id")
	ErrNotFound             = newError(KindNotFound, "not found")
	ErrAlreadySettled       = newError(KindAlreadySettled, "escrow already settled")
	ErrTooEarly             = newError(KindTooEarly, "release time not reached")
	ErrIncorrectTotalAmount = newError(KindIncorrectTotalAmount, "incorrect total amount")
	ErrFeeTooHigh           = newError(KindFeeTooHigh, "fee too high")
	ErrInsufficientFunds    = newError(KindInsufficientFunds, "insufficient funds")
	ErrPaused               = newError(KindPaused, "payments are paused")
)

// KindOf reports the kind of the domain error at the root of err.
// Errors that did not originate from this package are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.kind
	}
	return KindInternal
}
