// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package processor

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insolar/settlement/internal/testutils"
)

func TestComputeFee(t *testing.T) {
	tests := []struct {
		amount string
		bps    uint32
		fee    string
	}{
		{"1000000", 25, "2500"},
		{"1000", 25, "2"},
		{"39", 25, "0"},
		{"400", 25, "1"},
		{"1000000000000000000", 500, "50000000000000000"},
		{"12345", 0, "0"},
		{"99999", 500, "4999"},
	}
	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			amount := testutils.Amount(tc.amount)
			fee, net := ComputeFee(amount, tc.bps)
			assert.Equal(t, tc.fee, fee.String())
			assert.Equal(t, amount.String(), new(big.Int).Add(fee, net).String())
			assert.True(t, net.Sign() >= 0)
		})
	}
}
