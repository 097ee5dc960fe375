// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package postgres

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/insolar/settlement/internal/app/settlement"
)

// Amounts are NUMERIC(78,0) columns, exchanged with the database as decimal text.

type BalanceSchema struct {
	tableName struct{} `sql:"balances"` //nolint: unused,structcheck

	Account string `sql:"account,pk"`
	Asset   string `sql:"asset,pk"`
	Amount  string `sql:"amount,notnull"`
}

type PaymentSchema struct {
	tableName struct{} `sql:"payments"` //nolint: unused,structcheck

	ID        string `sql:"id,pk"`
	Payer     string `sql:"payer,notnull"`
	Payee     string `sql:"payee,notnull"`
	Amount    string `sql:"amount,notnull"`
	Asset     string `sql:"asset,notnull"`
	Timestamp int64  `sql:"timestamp,notnull"`
	Memo      string `sql:"memo"`
	Status    string `sql:"status,notnull"`
}

type EscrowSchema struct {
	tableName struct{} `sql:"escrows"` //nolint: unused,structcheck

	ID          uint64 `sql:"id,pk"`
	Payer       string `sql:"payer,notnull"`
	Payee       string `sql:"payee,notnull"`
	Amount      string `sql:"amount,notnull"`
	Asset       string `sql:"asset,notnull"`
	ReleaseTime int64  `sql:"release_time,notnull"`
	Memo        string `sql:"memo"`
	Released    bool   `sql:"released,notnull"`
	Refunded    bool   `sql:"refunded,notnull"`
	CreatedAt   int64  `sql:"created_at,notnull"`
}

type RoleMemberSchema struct {
	tableName struct{} `sql:"role_members"` //nolint: unused,structcheck

	Role    string `sql:"role,pk"`
	Account string `sql:"account,pk"`
}

type SplitterSchema struct {
	tableName struct{} `sql:"splitters"` //nolint: unused,structcheck

	ID            string `sql:"id,pk"`
	Account       string `sql:"account,notnull"`
	Asset         string `sql:"asset,notnull"`
	TotalShares   uint64 `sql:"total_shares,notnull"`
	TotalReleased string `sql:"total_released,notnull"`
	CreatedAt     int64  `sql:"created_at,notnull"`
}

type SplitterShareSchema struct {
	tableName struct{} `sql:"splitter_shares"` //nolint: unused,structcheck

	SplitterID string `sql:"splitter_id,pk"`
	Position   int    `sql:"position,notnull"`
	Payee      string `sql:"payee,pk"`
	Units      uint64 `sql:"units,notnull"`
	Released   string `sql:"released,notnull"`
}

type SettingsSchema struct {
	tableName struct{} `sql:"settings"` //nolint: unused,structcheck

	ID           int    `sql:"id,pk"`
	FeeBps       uint32 `sql:"fee_bps,notnull"`
	FeeCollector string `sql:"fee_collector,notnull"`
	Paused       bool   `sql:"paused,notnull"`
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("malformed amount %q", s)
	}
	return v, nil
}

func amountText(v *big.Int) string {
	return settlement.AmountOrZero(v).String()
}

func paymentSchema(r *settlement.PaymentRecord) *PaymentSchema {
	return &PaymentSchema{
		ID:        r.ID,
		Payer:     string(r.Payer),
		Payee:     string(r.Payee),
		Amount:    amountText(r.Amount),
		Asset:     string(r.Asset),
		Timestamp: r.Timestamp,
		Memo:      r.Memo,
		Status:    string(r.Status),
	}
}

func (s *PaymentSchema) record() (*settlement.PaymentRecord, error) {
	amount, err := parseAmount(s.Amount)
	if err != nil {
		return nil, err
	}
	return &settlement.PaymentRecord{
		ID:        s.ID,
		Payer:     settlement.Account(s.Payer),
		Payee:     settlement.Account(s.Payee),
		Amount:    amount,
		Asset:     settlement.Asset(s.Asset),
		Timestamp: s.Timestamp,
		Memo:      s.Memo,
		Status:    settlement.PaymentStatus(s.Status),
	}, nil
}

func escrowSchema(r *settlement.EscrowRecord) *EscrowSchema {
	return &EscrowSchema{
		ID:          r.ID,
		Payer:       string(r.Payer),
		Payee:       string(r.Payee),
		Amount:      amountText(r.Amount),
		Asset:       string(r.Asset),
		ReleaseTime: r.ReleaseTime,
		Memo:        r.Memo,
		Released:    r.Released,
		Refunded:    r.Refunded,
		CreatedAt:   r.CreatedAt,
	}
}

func (s *EscrowSchema) record() (*settlement.EscrowRecord, error) {
	amount, err := parseAmount(s.Amount)
	if err != nil {
		return nil, err
	}
	return &settlement.EscrowRecord{
		ID:          s.ID,
		Payer:       settlement.Account(s.Payer),
		Payee:       settlement.Account(s.Payee),
		Amount:      amount,
		Asset:       settlement.Asset(s.Asset),
		ReleaseTime: s.ReleaseTime,
		Memo:        s.Memo,
		Released:    s.Released,
		Refunded:    s.Refunded,
		CreatedAt:   s.CreatedAt,
	}, nil
}

func splitterRecord(s *SplitterSchema, shares []SplitterShareSchema) (*settlement.Splitter, error) {
	total, err := parseAmount(s.TotalReleased)
	if err != nil {
		return nil, err
	}
	sp := &settlement.Splitter{
		ID:            s.ID,
		Account:       settlement.Account(s.Account),
		Asset:         settlement.Asset(s.Asset),
		TotalShares:   s.TotalShares,
		TotalReleased: total,
		Released:      make(map[settlement.Account]*big.Int, len(shares)),
		CreatedAt:     s.CreatedAt,
	}
	for _, sh := range shares {
		released, err := parseAmount(sh.Released)
		if err != nil {
			return nil, err
		}
		payee := settlement.Account(sh.Payee)
		sp.Shares = append(sp.Shares, settlement.Share{Payee: payee, Units: sh.Units})
		if released.Sign() > 0 {
			sp.Released[payee] = released
		}
	}
	return sp, nil
}
