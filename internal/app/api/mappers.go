// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package api

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/insolar/settlement/internal/app/settlement"
)

// AmountCodec converts between decimal strings in whole units and integer
// amounts in the smallest unit of an asset.
type AmountCodec struct {
	decimals map[settlement.Asset]int32
}

func NewAmountCodec(decimals map[settlement.Asset]int32) *AmountCodec {
	return &AmountCodec{decimals: decimals}
}

func (c *AmountCodec) Asset(s string) (settlement.Asset, error) {
	asset := settlement.Asset(strings.TrimSpace(s))
	if asset == "" {
		asset = settlement.NativeAsset
	}
	if _, ok := c.decimals[asset]; !ok {
		return "", errors.Wrapf(settlement.ErrInvalidInput, "unknown asset %q", s)
	}
	return asset, nil
}

// maxAmountLength bounds the plain decimal notation Parse accepts. Exponent
// notation is rejected.
const maxAmountLength = 96

func (c *AmountCodec) Parse(asset settlement.Asset, s string) (*big.Int, error) {
	decimals, ok := c.decimals[asset]
	if !ok {
		return nil, errors.Wrapf(settlement.ErrInvalidInput, "unknown asset %q", asset)
	}
	s = strings.TrimSpace(s)
	if len(s) > maxAmountLength {
		return nil, errors.Wrapf(settlement.ErrInvalidInput, "amount is longer than %d characters", maxAmountLength)
	}
	if strings.ContainsAny(s, "eE") {
		return nil, errors.Wrapf(settlement.ErrInvalidInput, "amount %q uses exponent notation", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(settlement.ErrInvalidInput, "malformed amount %q", s)
	}
	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, errors.Wrapf(settlement.ErrInvalidInput, "amount %q is finer than %d decimals", s, decimals)
	}
	return shifted.BigInt(), nil
}

func (c *AmountCodec) ParseAll(asset settlement.Asset, values []string) ([]*big.Int, error) {
	res := make([]*big.Int, 0, len(values))
	for _, v := range values {
		amount, err := c.Parse(asset, v)
		if err != nil {
			return nil, err
		}
		res = append(res, amount)
	}
	return res, nil
}

func (c *AmountCodec) Format(asset settlement.Asset, v *big.Int) string {
	decimals := c.decimals[asset]
	return decimal.NewFromBigInt(settlement.AmountOrZero(v), -decimals).String()
}

func accounts(values []string) []settlement.Account {
	res := make([]settlement.Account, 0, len(values))
	for _, v := range values {
		res = append(res, settlement.Account(v))
	}
	return res
}

func paymentResponse(codec *AmountCodec, rec *settlement.PaymentRecord) PaymentRecordResponse {
	return PaymentRecordResponse{
		ID:        rec.ID,
		Payer:     rec.Payer.String(),
		Payee:     rec.Payee.String(),
		Amount:    codec.Format(rec.Asset, rec.Amount),
		Asset:     rec.Asset.String(),
		Timestamp: rec.Timestamp,
		Memo:      rec.Memo,
		Status:    string(rec.Status),
	}
}

func escrowResponse(codec *AmountCodec, rec *settlement.EscrowRecord) EscrowResponse {
	return EscrowResponse{
		ID:          rec.ID,
		Payer:       rec.Payer.String(),
		Payee:       rec.Payee.String(),
		Amount:      codec.Format(rec.Asset, rec.Amount),
		Asset:       rec.Asset.String(),
		ReleaseTime: rec.ReleaseTime,
		Memo:        rec.Memo,
		Released:    rec.Released,
		Refunded:    rec.Refunded,
	}
}

func splitterResponse(codec *AmountCodec, sp *settlement.Splitter) SplitterResponse {
	res := SplitterResponse{
		ID:            sp.ID,
		Account:       sp.Account.String(),
		Asset:         sp.Asset.String(),
		TotalShares:   sp.TotalShares,
		TotalReleased: codec.Format(sp.Asset, sp.TotalReleased),
		Payees:        make([]ShareResponse, 0, len(sp.Shares)),
	}
	for _, sh := range sp.Shares {
		res.Payees = append(res.Payees, ShareResponse{
			Payee:    sh.Payee.String(),
			Shares:   sh.Units,
			Released: codec.Format(sp.Asset, sp.ReleasedTo(sh.Payee)),
		})
	}
	return res
}
