// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package settlement

import (
	"context"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(errors.New("disk on fire")))
	assert.Equal(t, KindNotFound, KindOf(ErrNotFound))
	assert.Equal(t, KindTooEarly, KindOf(errors.Wrap(errors.Wrapf(ErrTooEarly, "escrow %d", 1), "outer")))
	assert.Equal(t, KindInvalidInput, KindOf(ErrLengthMismatch))
}

func TestParsePaymentStatus(t *testing.T) {
	s, err := ParsePaymentStatus(" completed ")
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, s)

	_, err = ParsePaymentStatus("done")
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestSplitter_Releasable(t *testing.T) {
	sp := &Splitter{
		Shares:        []Share{{Payee: "a", Units: 70}, {Payee: "b", Units: 20}, {Payee: "c", Units: 10}},
		TotalShares:   100,
		TotalReleased: big.NewInt(700),
		Released:      map[Account]*big.Int{"a": big.NewInt(700)},
	}

	assert.Equal(t, "0", sp.Releasable("a", big.NewInt(300)).String())
	assert.Equal(t, "200", sp.Releasable("b", big.NewInt(300)).String())
	assert.Equal(t, "100", sp.Releasable("c", big.NewInt(300)).String())
	assert.Equal(t, "0", sp.Releasable("z", big.NewInt(300)).String())
	assert.Equal(t, "70", sp.Releasable("a", big.NewInt(400)).String())

	clone := sp.Clone()
	clone.Released["a"].SetInt64(1)
	assert.Equal(t, "700", sp.ReleasedTo("a").String())
}

func TestTransfer(t *testing.T) {
	assert.Equal(t, KindInvalidInput, KindOf(Transfer(context.Background(), nil, "a", "b", NativeAsset, big.NewInt(-1))))
	assert.NoError(t, Transfer(context.Background(), nil, "a", "b", NativeAsset, big.NewInt(0)))
}

func TestSumAmounts(t *testing.T) {
	assert.Equal(t, "6", SumAmounts([]*big.Int{big.NewInt(1), nil, big.NewInt(5)}).String())
	assert.Equal(t, "0", SumAmounts(nil).String())
	assert.False(t, IsPositive(nil))
	assert.Nil(t, CloneAmount(nil))
}

func TestAccount_IsNull(t *testing.T) {
	assert.True(t, NullAccount.IsNull())
	assert.True(t, Account("  ").IsNull())
	assert.False(t, Account("alice").IsNull())
}

func TestRequireExternal(t *testing.T) {
	assert.Equal(t, Account("splitter:sp-1"), SplitterAccount("sp-1"))
	assert.True(t, CustodyAccount("escrow", "main").IsCustody())
	assert.False(t, Account("alice").IsCustody())

	assert.NoError(t, RequireExternal("alice"))
	assert.Equal(t, KindUnauthorized, KindOf(RequireExternal(SplitterAccount("sp-1"))))
	assert.Equal(t, KindUnauthorized, KindOf(RequireExternal(CustodyAccount("escrow", "main"))))
}
