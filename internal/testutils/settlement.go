// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package testutils

import (
	"context"
	"io/ioutil"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/insolar/settlement/internal/app/settlement"
)

// Clock is a settable clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(unix int64) *Clock {
	return &Clock{now: time.Unix(unix, 0)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(unix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Unix(unix, 0)
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Logger discards everything.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(ioutil.Discard)
	return log
}

// Fund credits account directly, bypassing authorization.
func Fund(t *testing.T, db settlement.Transactor, account settlement.Account, asset settlement.Asset, amount *big.Int) {
	t.Helper()
	err := db.RunInTransaction(context.Background(), func(ctx context.Context, tx settlement.Tx) error {
		return tx.Balances().Credit(ctx, account, asset, amount)
	})
	require.NoError(t, err)
}

// Balance reads a balance, failing the test on error.
func Balance(t *testing.T, db settlement.Transactor, account settlement.Account, asset settlement.Asset) *big.Int {
	t.Helper()
	var balance *big.Int
	err := db.RunInTransaction(context.Background(), func(ctx context.Context, tx settlement.Tx) error {
		var err error
		balance, err = tx.Balances().Balance(ctx, account, asset)
		return err
	})
	require.NoError(t, err)
	return balance
}

// Grant adds account to role directly, bypassing the admin check.
func Grant(t *testing.T, db settlement.Transactor, role settlement.Role, account settlement.Account) {
	t.Helper()
	err := db.RunInTransaction(context.Background(), func(ctx context.Context, tx settlement.Tx) error {
		_, err := tx.Roles().Grant(ctx, role, account)
		return err
	})
	require.NoError(t, err)
}

// Amount parses a decimal integer, panicking on malformed input.
func Amount(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("malformed amount " + s)
	}
	return v
}
