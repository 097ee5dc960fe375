// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package processor

import (
	"math/big"
)

const (
	// BasisPointsDenominator is 100%.
	BasisPointsDenominator = 10000

	// MaxFeeBasisPoints is the platform fee ceiling, 5%.
	MaxFeeBasisPoints = 500

	DefaultFeeBasisPoints = 25
)

// ComputeFee splits amount into the platform fee, floor(amount*bps/10000), and
// the remainder. fee + net always equals amount.
func ComputeFee(amount *big.Int, bps uint32) (fee, net *big.Int) {
	fee = new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(bps)))
	fee.Quo(fee, big.NewInt(BasisPointsDenominator))
	net = new(big.Int).Sub(amount, fee)
	return fee, net
}
