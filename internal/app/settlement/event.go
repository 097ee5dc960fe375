// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package settlement

import (
	"context"
	"math/big"
)

// Event is an outbound notification produced by a successful operation.
// Events reach the Notifier only after the originating transaction commits.
type Event interface {
	EventName() string
}

type Notifier interface {
	Notify(ctx context.Context, events ...Event)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, ...Event) {}

type PaymentProcessed struct {
	PaymentID string   `json:"payment_id"`
	Payer     Account  `json:"payer"`
	Payee     Account  `json:"payee"`
	Asset     Asset    `json:"asset"`
	Amount    *big.Int `json:"amount"`
	Fee       *big.Int `json:"fee"`
	Memo      string   `json:"memo"`
}

func (PaymentProcessed) EventName() string { return "PaymentProcessed" }

type PaymentRegistered struct {
	ID        string        `json:"id"`
	Payer     Account       `json:"payer"`
	Payee     Account       `json:"payee"`
	Amount    *big.Int      `json:"amount"`
	Asset     Asset         `json:"asset_type"`
	Timestamp int64         `json:"timestamp"`
	Memo      string        `json:"memo"`
	Status    PaymentStatus `json:"status"`
}

func (PaymentRegistered) EventName() string { return "PaymentRegistered" }

type PaymentStatusUpdated struct {
	ID        string        `json:"id"`
	NewStatus PaymentStatus `json:"new_status"`
}

func (PaymentStatusUpdated) EventName() string { return "PaymentStatusUpdated" }

type EscrowCreated struct {
	EscrowID    uint64   `json:"escrow_id"`
	Payer       Account  `json:"payer"`
	Payee       Account  `json:"payee"`
	Amount      *big.Int `json:"amount"`
	ReleaseTime int64    `json:"release_time"`
	Memo        string   `json:"memo"`
}

func (EscrowCreated) EventName() string { return "EscrowCreated" }

type EscrowReleased struct {
	EscrowID uint64 `json:"escrow_id"`
}

func (EscrowReleased) EventName() string { return "EscrowReleased" }

type EscrowRefunded struct {
	EscrowID uint64 `json:"escrow_id"`
}

func (EscrowRefunded) EventName() string { return "EscrowRefunded" }

type PaymentReleased struct {
	SplitterID string   `json:"splitter_id"`
	Payee      Account  `json:"payee"`
	Amount     *big.Int `json:"amount"`
}

func (PaymentReleased) EventName() string { return "PaymentReleased" }

type BatchTransferred struct {
	Payer      Account  `json:"payer"`
	Asset      Asset    `json:"asset"`
	Total      *big.Int `json:"total"`
	Recipients int      `json:"recipients"`
}

func (BatchTransferred) EventName() string { return "BatchTransferred" }

type RoleGranted struct {
	Role    Role    `json:"role"`
	Account Account `json:"account"`
	Sender  Account `json:"sender"`
}

func (RoleGranted) EventName() string { return "RoleGranted" }

type RoleRevoked struct {
	Role    Role    `json:"role"`
	Account Account `json:"account"`
	Sender  Account `json:"sender"`
}

func (RoleRevoked) EventName() string { return "RoleRevoked" }

type RoleAdminChanged struct {
	Role          Role `json:"role"`
	PreviousAdmin Role `json:"previous_admin"`
	NewAdmin      Role `json:"new_admin"`
}

func (RoleAdminChanged) EventName() string { return "RoleAdminChanged" }

type PlatformFeeUpdated struct {
	OldBasisPoints uint32 `json:"old_bps"`
	NewBasisPoints uint32 `json:"new_bps"`
}

func (PlatformFeeUpdated) EventName() string { return "PlatformFeeUpdated" }

type FeeCollectorUpdated struct {
	Old Account `json:"old"`
	New Account `json:"new"`
}

func (FeeCollectorUpdated) EventName() string { return "FeeCollectorUpdated" }

type Paused struct {
	Account Account `json:"account"`
}

func (Paused) EventName() string { return "Paused" }

type Unpaused struct {
	Account Account `json:"account"`
}

func (Unpaused) EventName() string { return "Unpaused" }

type Deposited struct {
	Account Account  `json:"account"`
	Asset   Asset    `json:"asset"`
	Amount  *big.Int `json:"amount"`
}

func (Deposited) EventName() string { return "Deposited" }

type Transferred struct {
	From   Account  `json:"from"`
	To     Account  `json:"to"`
	Asset  Asset    `json:"asset"`
	Amount *big.Int `json:"amount"`
}

func (Transferred) EventName() string { return "Transferred" }

// Provisioning events, emitted when a component is deployed.

type PaymentSplitterDeployed struct {
	SplitterID string    `json:"splitter_id"`
	Account    Account   `json:"account"`
	Asset      Asset     `json:"asset"`
	Payees     []Account `json:"payees"`
	Shares     []uint64  `json:"shares"`
}

func (PaymentSplitterDeployed) EventName() string { return "PaymentSplitterDeployed" }

type EscrowDeployed struct {
	Account Account `json:"account"`
}

func (EscrowDeployed) EventName() string { return "EscrowDeployed" }

type PaymentRegistryDeployed struct {
	Writer Account `json:"writer"`
}

func (PaymentRegistryDeployed) EventName() string { return "PaymentRegistryDeployed" }

type BatchOperationsDeployed struct{}

func (BatchOperationsDeployed) EventName() string { return "BatchOperationsDeployed" }
