// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package settlement

import (
	"math/big"
)

// CloneAmount returns an independent copy, nil stays nil.
func CloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func IsPositive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}

// SumAmounts returns the total of values; nil entries count as zero.
func SumAmounts(values []*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}

// AmountOrZero keeps stored totals non-nil.
func AmountOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
