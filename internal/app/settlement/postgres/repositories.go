// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package postgres

import (
	"context"
	"math/big"

	"github.com/go-pg/pg"
	"github.com/pkg/errors"

	"github.com/insolar/settlement/internal/app/settlement"
)

type balances transaction

func (b *balances) Balance(_ context.Context, account settlement.Account, asset settlement.Asset) (*big.Int, error) {
	row := BalanceSchema{}
	_, err := b.tx.QueryOne(&row, `SELECT amount FROM balances WHERE account = ? AND asset = ?`, string(account), string(asset))
	if err != nil {
		if err == pg.ErrNoRows {
			return new(big.Int), nil
		}
		return nil, b.store.fail(err, "failed to fetch balance of %s", account)
	}
	return parseAmount(row.Amount)
}

func (b *balances) Credit(_ context.Context, account settlement.Account, asset settlement.Asset, amount *big.Int) error {
	_, err := b.tx.Exec(`
		INSERT INTO balances (account, asset, amount) VALUES (?, ?, ?::numeric)
		ON CONFLICT (account, asset) DO UPDATE SET amount = balances.amount + EXCLUDED.amount`,
		string(account), string(asset), amountText(amount))
	if err != nil {
		return b.store.fail(err, "failed to credit %s", account)
	}
	return nil
}

func (b *balances) Debit(_ context.Context, account settlement.Account, asset settlement.Asset, amount *big.Int) error {
	res, err := b.tx.Exec(`
		UPDATE balances SET amount = amount - ?0::numeric
		WHERE account = ?1 AND asset = ?2 AND amount >= ?0::numeric`,
		amountText(amount), string(account), string(asset))
	if err != nil {
		return b.store.fail(err, "failed to debit %s", account)
	}
	if res.RowsAffected() == 0 {
		return errors.Wrapf(settlement.ErrInsufficientFunds, "account %s holds less than %s %s", account, amount, asset)
	}
	return nil
}

type payments transaction

func (p *payments) Insert(_ context.Context, record *settlement.PaymentRecord) error {
	row := paymentSchema(record)
	res, err := p.tx.Exec(`
		INSERT INTO payments (id, payer, payee, amount, asset, timestamp, memo, status)
		VALUES (?, ?, ?, ?::numeric, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		row.ID, row.Payer, row.Payee, row.Amount, row.Asset, row.Timestamp, row.Memo, row.Status)
	if err != nil {
		return p.store.fail(err, "failed to insert payment %s", record.ID)
	}
	if res.RowsAffected() == 0 {
		return errors.Wrapf(settlement.ErrDuplicateID, "payment %s", record.ID)
	}
	return nil
}

func (p *payments) Get(_ context.Context, id string) (*settlement.PaymentRecord, error) {
	row := PaymentSchema{}
	_, err := p.tx.QueryOne(&row, `SELECT * FROM payments WHERE id = ?`, id)
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, errors.Wrapf(settlement.ErrNotFound, "payment %s", id)
		}
		return nil, p.store.fail(err, "failed to fetch payment %s", id)
	}
	return row.record()
}

func (p *payments) UpdateStatus(_ context.Context, id string, status settlement.PaymentStatus) error {
	res, err := p.tx.Exec(`UPDATE payments SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return p.store.fail(err, "failed to update payment %s", id)
	}
	if res.RowsAffected() == 0 {
		return errors.Wrapf(settlement.ErrNotFound, "payment %s", id)
	}
	return nil
}

func (p *payments) Count(_ context.Context) (int, error) {
	var n int
	_, err := p.tx.QueryOne(pg.Scan(&n), `SELECT count(*) FROM payments`)
	if err != nil {
		return 0, p.store.fail(err, "failed to count payments")
	}
	return n, nil
}

type escrows transaction

func (e *escrows) Insert(_ context.Context, record *settlement.EscrowRecord) error {
	row := escrowSchema(record)
	var id uint64
	_, err := e.tx.QueryOne(pg.Scan(&id), `
		INSERT INTO escrows (payer, payee, amount, asset, release_time, memo, released, refunded, created_at)
		VALUES (?, ?, ?::numeric, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		row.Payer, row.Payee, row.Amount, row.Asset, row.ReleaseTime, row.Memo, row.Released, row.Refunded, row.CreatedAt)
	if err != nil {
		return e.store.fail(err, "failed to insert escrow")
	}
	record.ID = id
	return nil
}

func (e *escrows) Get(_ context.Context, id uint64) (*settlement.EscrowRecord, error) {
	return e.get(id, `SELECT * FROM escrows WHERE id = ?`)
}

func (e *escrows) GetForUpdate(_ context.Context, id uint64) (*settlement.EscrowRecord, error) {
	return e.get(id, `SELECT * FROM escrows WHERE id = ? FOR UPDATE`)
}

func (e *escrows) get(id uint64, query string) (*settlement.EscrowRecord, error) {
	row := EscrowSchema{}
	_, err := e.tx.QueryOne(&row, query, id)
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, errors.Wrapf(settlement.ErrNotFound, "escrow %d", id)
		}
		return nil, e.store.fail(err, "failed to fetch escrow %d", id)
	}
	return row.record()
}

func (e *escrows) Update(_ context.Context, record *settlement.EscrowRecord) error {
	res, err := e.tx.Exec(`UPDATE escrows SET released = ?, refunded = ? WHERE id = ?`,
		record.Released, record.Refunded, record.ID)
	if err != nil {
		return e.store.fail(err, "failed to update escrow %d", record.ID)
	}
	if res.RowsAffected() == 0 {
		return errors.Wrapf(settlement.ErrNotFound, "escrow %d", record.ID)
	}
	return nil
}

func (e *escrows) Count(_ context.Context) (int, error) {
	var n int
	_, err := e.tx.QueryOne(pg.Scan(&n), `SELECT count(*) FROM escrows`)
	if err != nil {
		return 0, e.store.fail(err, "failed to count escrows")
	}
	return n, nil
}

type roles transaction

func (r *roles) HasRole(_ context.Context, role settlement.Role, account settlement.Account) (bool, error) {
	var n int
	_, err := r.tx.QueryOne(pg.Scan(&n), `SELECT count(*) FROM role_members WHERE role = ? AND account = ?`,
		string(role), string(account))
	if err != nil {
		return false, r.store.fail(err, "failed to check role %s", role)
	}
	return n > 0, nil
}

func (r *roles) Grant(_ context.Context, role settlement.Role, account settlement.Account) (bool, error) {
	res, err := r.tx.Exec(`INSERT INTO role_members (role, account) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		string(role), string(account))
	if err != nil {
		return false, r.store.fail(err, "failed to grant %s", role)
	}
	return res.RowsAffected() > 0, nil
}

func (r *roles) Revoke(_ context.Context, role settlement.Role, account settlement.Account) (bool, error) {
	res, err := r.tx.Exec(`DELETE FROM role_members WHERE role = ? AND account = ?`, string(role), string(account))
	if err != nil {
		return false, r.store.fail(err, "failed to revoke %s", role)
	}
	return res.RowsAffected() > 0, nil
}

func (r *roles) Members(_ context.Context, role settlement.Role) ([]settlement.Account, error) {
	var rows []RoleMemberSchema
	_, err := r.tx.Query(&rows, `SELECT role, account FROM role_members WHERE role = ? ORDER BY account`, string(role))
	if err != nil {
		return nil, r.store.fail(err, "failed to list members of %s", role)
	}
	members := make([]settlement.Account, 0, len(rows))
	for _, row := range rows {
		members = append(members, settlement.Account(row.Account))
	}
	return members, nil
}

func (r *roles) Admin(_ context.Context, role settlement.Role) (settlement.Role, error) {
	var admin string
	_, err := r.tx.QueryOne(pg.Scan(&admin), `SELECT admin FROM role_admins WHERE role = ?`, string(role))
	if err != nil {
		if err == pg.ErrNoRows {
			return settlement.DefaultAdminRole, nil
		}
		return "", r.store.fail(err, "failed to fetch admin of %s", role)
	}
	return settlement.Role(admin), nil
}

func (r *roles) SetAdmin(_ context.Context, role settlement.Role, admin settlement.Role) error {
	_, err := r.tx.Exec(`
		INSERT INTO role_admins (role, admin) VALUES (?, ?)
		ON CONFLICT (role) DO UPDATE SET admin = EXCLUDED.admin`,
		string(role), string(admin))
	if err != nil {
		return r.store.fail(err, "failed to set admin of %s", role)
	}
	return nil
}

type splitters transaction

func (s *splitters) Insert(_ context.Context, sp *settlement.Splitter) error {
	res, err := s.tx.Exec(`
		INSERT INTO splitters (id, account, asset, total_shares, total_released, created_at)
		VALUES (?, ?, ?, ?, ?::numeric, ?)
		ON CONFLICT DO NOTHING`,
		sp.ID, string(sp.Account), string(sp.Asset), sp.TotalShares, amountText(sp.TotalReleased), sp.CreatedAt)
	if err != nil {
		return s.store.fail(err, "failed to insert splitter %s", sp.ID)
	}
	if res.RowsAffected() == 0 {
		return errors.Wrapf(settlement.ErrDuplicateID, "splitter %s", sp.ID)
	}
	for i, sh := range sp.Shares {
		_, err := s.tx.Exec(`
			INSERT INTO splitter_shares (splitter_id, position, payee, units, released)
			VALUES (?, ?, ?, ?, ?::numeric)`,
			sp.ID, i, string(sh.Payee), sh.Units, amountText(sp.Released[sh.Payee]))
		if err != nil {
			return s.store.fail(err, "failed to insert share of %s", sh.Payee)
		}
	}
	return nil
}

func (s *splitters) Get(_ context.Context, id string) (*settlement.Splitter, error) {
	return s.get(id, `SELECT * FROM splitters WHERE id = ?`)
}

func (s *splitters) GetForUpdate(_ context.Context, id string) (*settlement.Splitter, error) {
	return s.get(id, `SELECT * FROM splitters WHERE id = ? FOR UPDATE`)
}

func (s *splitters) get(id string, query string) (*settlement.Splitter, error) {
	row := SplitterSchema{}
	_, err := s.tx.QueryOne(&row, query, id)
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, errors.Wrapf(settlement.ErrNotFound, "splitter %s", id)
		}
		return nil, s.store.fail(err, "failed to fetch splitter %s", id)
	}
	var shares []SplitterShareSchema
	_, err = s.tx.Query(&shares, `SELECT * FROM splitter_shares WHERE splitter_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, s.store.fail(err, "failed to fetch shares of splitter %s", id)
	}
	return splitterRecord(&row, shares)
}

func (s *splitters) UpdateReleased(_ context.Context, id string, payee settlement.Account, released, totalReleased *big.Int) error {
	res, err := s.tx.Exec(`UPDATE splitter_shares SET released = ?::numeric WHERE splitter_id = ? AND payee = ?`,
		amountText(released), id, string(payee))
	if err != nil {
		return s.store.fail(err, "failed to update release of %s", payee)
	}
	if res.RowsAffected() == 0 {
		return errors.Wrapf(settlement.ErrNoShares, "splitter %s payee %s", id, payee)
	}
	_, err = s.tx.Exec(`UPDATE splitters SET total_released = ?::numeric WHERE id = ?`, amountText(totalReleased), id)
	if err != nil {
		return s.store.fail(err, "failed to update splitter %s", id)
	}
	return nil
}

type settings transaction

const settingsRow = 1

func (s *settings) ProcessorSettings(_ context.Context) (*settlement.ProcessorSettings, error) {
	return s.get(`SELECT * FROM settings WHERE id = ?`)
}

func (s *settings) ProcessorSettingsForUpdate(_ context.Context) (*settlement.ProcessorSettings, error) {
	return s.get(`SELECT * FROM settings WHERE id = ? FOR UPDATE`)
}

func (s *settings) get(query string) (*settlement.ProcessorSettings, error) {
	row := SettingsSchema{}
	_, err := s.tx.QueryOne(&row, query, settingsRow)
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, errors.Wrap(settlement.ErrNotFound, "processor settings")
		}
		return nil, s.store.fail(err, "failed to fetch processor settings")
	}
	return &settlement.ProcessorSettings{
		FeeBasisPoints: row.FeeBps,
		FeeCollector:   settlement.Account(row.FeeCollector),
		Paused:         row.Paused,
	}, nil
}

func (s *settings) SaveProcessorSettings(_ context.Context, ps *settlement.ProcessorSettings) error {
	_, err := s.tx.Exec(`
		INSERT INTO settings (id, fee_bps, fee_collector, paused) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			fee_bps = EXCLUDED.fee_bps,
			fee_collector = EXCLUDED.fee_collector,
			paused = EXCLUDED.paused`,
		settingsRow, ps.FeeBasisPoints, string(ps.FeeCollector), ps.Paused)
	if err != nil {
		return s.store.fail(err, "failed to save processor settings")
	}
	return nil
}
