// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package settlement

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
)

// BalanceRepository is the value-transfer substrate: per account and asset balances.
type BalanceRepository interface {
	Balance(ctx context.Context, account Account, asset Asset) (*big.Int, error)
	Credit(ctx context.Context, account Account, asset Asset, amount *big.Int) error
	// Debit fails with ErrInsufficientFunds and leaves the balance untouched
	// when the account holds less than amount.
	Debit(ctx context.Context, account Account, asset Asset, amount *big.Int) error
}

type PaymentRepository interface {
	// Insert fails with ErrDuplicateID when the id is already taken.
	Insert(ctx context.Context, record *PaymentRecord) error
	Get(ctx context.Context, id string) (*PaymentRecord, error)
	UpdateStatus(ctx context.Context, id string, status PaymentStatus) error
	Count(ctx context.Context) (int, error)
}

type EscrowRepository interface {
	// Insert assigns record.ID.
	Insert(ctx context.Context, record *EscrowRecord) error
	Get(ctx context.Context, id uint64) (*EscrowRecord, error)
	// GetForUpdate locks the record until the transaction ends.
	GetForUpdate(ctx context.Context, id uint64) (*EscrowRecord, error)
	Update(ctx context.Context, record *EscrowRecord) error
	Count(ctx context.Context) (int, error)
}

type RoleRepository interface {
	HasRole(ctx context.Context, role Role, account Account) (bool, error)
	// Grant and Revoke report whether membership changed.
	Grant(ctx context.Context, role Role, account Account) (bool, error)
	Revoke(ctx context.Context, role Role, account Account) (bool, error)
	Members(ctx context.Context, role Role) ([]Account, error)
	// Admin returns DefaultAdminRole when the role has no explicit admin.
	Admin(ctx context.Context, role Role) (Role, error)
	SetAdmin(ctx context.Context, role Role, admin Role) error
}

type SplitterRepository interface {
	Insert(ctx context.Context, splitter *Splitter) error
	Get(ctx context.Context, id string) (*Splitter, error)
	GetForUpdate(ctx context.Context, id string) (*Splitter, error)
	UpdateReleased(ctx context.Context, id string, payee Account, released, totalReleased *big.Int) error
}

type SettingsRepository interface {
	// ProcessorSettings fails with ErrNotFound before the processor is initialised.
	ProcessorSettings(ctx context.Context) (*ProcessorSettings, error)
	// ProcessorSettingsForUpdate also locks the settings until the transaction ends.
	ProcessorSettingsForUpdate(ctx context.Context) (*ProcessorSettings, error)
	SaveProcessorSettings(ctx context.Context, settings *ProcessorSettings) error
}

// Tx is a unit of work. Writes made through its repositories become visible
// together on commit or are discarded together.
type Tx interface {
	Balances() BalanceRepository
	Payments() PaymentRepository
	Escrows() EscrowRepository
	Roles() RoleRepository
	Splitters() SplitterRepository
	Settings() SettingsRepository

	// Emit queues events for delivery after commit.
	Emit(events ...Event)
	// AfterCommit registers fn to run once the transaction has committed.
	AfterCommit(fn func())
}

// Transactor runs fn atomically. A context that already carries a transaction
// makes fn join it instead of opening a new one.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type txKey struct{}

func ContextWithTx(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) (Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(Tx)
	return tx, ok
}

// Transfer moves amount between two balances of the same asset.
// Debit goes first so a failed transfer never credits.
func Transfer(ctx context.Context, balances BalanceRepository, from, to Account, asset Asset, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return errors.Wrap(ErrInvalidAmount, "negative transfer")
	}
	if err := balances.Debit(ctx, from, asset, amount); err != nil {
		return errors.Wrapf(err, "failed to debit %s", from)
	}
	if err := balances.Credit(ctx, to, asset, amount); err != nil {
		return errors.Wrapf(err, "failed to credit %s", to)
	}
	return nil
}

// Journal collects the events and commit hooks of one transaction.
// Backends embed it into their Tx implementation.
type Journal struct {
	events []Event
	hooks  []func()
}

func (j *Journal) Emit(events ...Event) {
	j.events = append(j.events, events...)
}

func (j *Journal) AfterCommit(fn func()) {
	j.hooks = append(j.hooks, fn)
}

func (j *Journal) Events() []Event {
	return j.events
}

// Committed runs the commit hooks and hands the queued events to notifier.
func (j *Journal) Committed(ctx context.Context, notifier Notifier) {
	for _, fn := range j.hooks {
		fn()
	}
	if notifier != nil && len(j.events) > 0 {
		notifier.Notify(ctx, j.events...)
	}
}
