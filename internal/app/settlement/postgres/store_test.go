// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package postgres_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/settlement/internal/app/settlement"
)

func TestStore_Balances(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		return tx.Balances().Credit(ctx, "alice", settlement.NativeAsset, big.NewInt(100))
	})
	require.NoError(t, err)

	t.Run("transfer", func(t *testing.T) {
		err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
			return settlement.Transfer(ctx, tx.Balances(), "alice", "bob", settlement.NativeAsset, big.NewInt(40))
		})
		require.NoError(t, err)
		assertBalance(t, s, "alice", "60")
		assertBalance(t, s, "bob", "40")
	})

	t.Run("insufficient_funds", func(t *testing.T) {
		err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
			return settlement.Transfer(ctx, tx.Balances(), "bob", "alice", settlement.NativeAsset, big.NewInt(41))
		})
		require.Error(t, err)
		assert.Equal(t, settlement.KindInsufficientFunds, settlement.KindOf(err))
		assertBalance(t, s, "bob", "40")
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
			if err := tx.Balances().Credit(ctx, "carol", settlement.NativeAsset, big.NewInt(5)); err != nil {
				return err
			}
			return boom
		})
		require.Equal(t, boom, errors.Cause(err))
		assertBalance(t, s, "carol", "0")
	})

	t.Run("large_amounts", func(t *testing.T) {
		huge, ok := new(big.Int).SetString("1000000000000000000000000000000", 10)
		require.True(t, ok)
		err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
			return tx.Balances().Credit(ctx, "whale", settlement.NativeAsset, huge)
		})
		require.NoError(t, err)
		assertBalance(t, s, "whale", huge.String())
	})
}

func TestStore_Payments(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	record := settlement.PaymentRecord{
		ID:        "pay-1",
		Payer:     "alice",
		Payee:     "bob",
		Amount:    big.NewInt(1000),
		Asset:     settlement.NativeAsset,
		Timestamp: 1600000000,
		Memo:      "invoice 7",
		Status:    settlement.PaymentPending,
	}

	insert := func() error {
		return s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
			rec := record
			return tx.Payments().Insert(ctx, &rec)
		})
	}
	require.NoError(t, insert())

	t.Run("duplicate", func(t *testing.T) {
		err := insert()
		assert.Equal(t, settlement.KindDuplicateID, settlement.KindOf(err))
	})

	t.Run("get_and_update", func(t *testing.T) {
		err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
			if err := tx.Payments().UpdateStatus(ctx, "pay-1", settlement.PaymentCompleted); err != nil {
				return err
			}
			got, err := tx.Payments().Get(ctx, "pay-1")
			require.NoError(t, err)
			assert.Equal(t, settlement.PaymentCompleted, got.Status)
			assert.Equal(t, "1000", got.Amount.String())
			assert.Equal(t, record.Memo, got.Memo)
			assert.Equal(t, record.Payee, got.Payee)
			n, err := tx.Payments().Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("not_found", func(t *testing.T) {
		err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
			_, err := tx.Payments().Get(ctx, "missing")
			return err
		})
		assert.Equal(t, settlement.KindNotFound, settlement.KindOf(err))
	})
}

func TestStore_Escrows(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	var id uint64
	err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		rec := &settlement.EscrowRecord{
			Payer:       "alice",
			Payee:       "bob",
			Amount:      big.NewInt(10),
			Asset:       settlement.NativeAsset,
			ReleaseTime: 1600000100,
		}
		if err := tx.Escrows().Insert(ctx, rec); err != nil {
			return err
		}
		id = rec.ID
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	err = s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		rec, err := tx.Escrows().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		rec.Released = true
		return tx.Escrows().Update(ctx, rec)
	})
	require.NoError(t, err)

	err = s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		rec, err := tx.Escrows().Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, rec.Released)
		assert.False(t, rec.Refunded)
		assert.Equal(t, "10", rec.Amount.String())
		n, err := tx.Escrows().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_Roles(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		changed, err := tx.Roles().Grant(ctx, settlement.RoleOperator, "op-2")
		require.NoError(t, err)
		assert.True(t, changed)
		changed, err = tx.Roles().Grant(ctx, settlement.RoleOperator, "op-1")
		require.NoError(t, err)
		assert.True(t, changed)
		changed, err = tx.Roles().Grant(ctx, settlement.RoleOperator, "op-1")
		require.NoError(t, err)
		assert.False(t, changed)

		members, err := tx.Roles().Members(ctx, settlement.RoleOperator)
		require.NoError(t, err)
		assert.Equal(t, []settlement.Account{"op-1", "op-2"}, members)

		admin, err := tx.Roles().Admin(ctx, settlement.RoleOperator)
		require.NoError(t, err)
		assert.Equal(t, settlement.DefaultAdminRole, admin)
		require.NoError(t, tx.Roles().SetAdmin(ctx, settlement.RoleOperator, settlement.RolePauser))
		admin, err = tx.Roles().Admin(ctx, settlement.RoleOperator)
		require.NoError(t, err)
		assert.Equal(t, settlement.RolePauser, admin)

		changed, err = tx.Roles().Revoke(ctx, settlement.RoleOperator, "op-2")
		require.NoError(t, err)
		assert.True(t, changed)
		has, err := tx.Roles().HasRole(ctx, settlement.RoleOperator, "op-2")
		require.NoError(t, err)
		assert.False(t, has)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_Splitters(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	sp := &settlement.Splitter{
		ID:          "sp-1",
		Account:     settlement.SplitterAccount("sp-1"),
		Asset:       settlement.NativeAsset,
		Shares:      []settlement.Share{{Payee: "a", Units: 70}, {Payee: "b", Units: 30}},
		TotalShares: 100,
	}
	err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		return tx.Splitters().Insert(ctx, sp)
	})
	require.NoError(t, err)

	err = s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		return tx.Splitters().UpdateReleased(ctx, "sp-1", "a", big.NewInt(7), big.NewInt(7))
	})
	require.NoError(t, err)

	err = s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		got, err := tx.Splitters().Get(ctx, "sp-1")
		require.NoError(t, err)
		assert.Equal(t, sp.Shares, got.Shares)
		assert.Equal(t, "7", got.TotalReleased.String())
		assert.Equal(t, "7", got.ReleasedTo("a").String())
		assert.Equal(t, "0", got.ReleasedTo("b").String())
		return nil
	})
	require.NoError(t, err)

	t.Run("unknown_payee", func(t *testing.T) {
		err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
			return tx.Splitters().UpdateReleased(ctx, "sp-1", "z", big.NewInt(1), big.NewInt(8))
		})
		assert.Equal(t, settlement.KindInvalidInput, settlement.KindOf(err))
	})
}

func TestStore_Settings(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		_, err := tx.Settings().ProcessorSettings(ctx)
		return err
	})
	assert.Equal(t, settlement.KindNotFound, settlement.KindOf(err))

	want := settlement.ProcessorSettings{FeeBasisPoints: 25, FeeCollector: "fees"}
	err = s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		if err := tx.Settings().SaveProcessorSettings(ctx, &want); err != nil {
			return err
		}
		want.Paused = true
		return tx.Settings().SaveProcessorSettings(ctx, &want)
	})
	require.NoError(t, err)

	err = s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		got, err := tx.Settings().ProcessorSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, *got)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_Events(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		tx.Emit(settlement.Deposited{Account: "alice", Asset: settlement.NativeAsset, Amount: big.NewInt(5)})
		return nil
	})
	require.NoError(t, err)

	err = s.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		tx.Emit(settlement.Deposited{Account: "bob", Asset: settlement.NativeAsset, Amount: big.NewInt(6)})
		return errors.New("rolled back")
	})
	require.Error(t, err)

	events, err := s.Events(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Deposited", events[0].Name)
	assert.Contains(t, events[0].Payload, "alice")
	assert.Equal(t, int64(1600000000), events[0].CreatedAt)
}

func assertBalance(t *testing.T, s settlement.Transactor, account settlement.Account, want string) {
	t.Helper()
	err := s.RunInTransaction(context.Background(), func(ctx context.Context, tx settlement.Tx) error {
		got, err := tx.Balances().Balance(ctx, account, settlement.NativeAsset)
		require.NoError(t, err)
		assert.Equal(t, want, got.String())
		return nil
	})
	require.NoError(t, err)
}
