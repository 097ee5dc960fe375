// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/settlement/configuration"
	"github.com/insolar/settlement/internal/app/settlement"
	"github.com/insolar/settlement/internal/app/settlement/access"
	"github.com/insolar/settlement/internal/app/settlement/batch"
	"github.com/insolar/settlement/internal/app/settlement/escrow"
	"github.com/insolar/settlement/internal/app/settlement/ledger"
	"github.com/insolar/settlement/internal/app/settlement/memstore"
	"github.com/insolar/settlement/internal/app/settlement/notification"
	"github.com/insolar/settlement/internal/app/settlement/processor"
	"github.com/insolar/settlement/internal/app/settlement/registry"
	"github.com/insolar/settlement/internal/app/settlement/splitter"
	"github.com/insolar/settlement/internal/testutils"
	"github.com/insolar/settlement/observability"
)

const (
	callerHeader = "X-Account"
	now          = int64(1600000000)
)

type fixture struct {
	db      *memstore.Store
	events  *notification.Recorder
	clock   *testutils.Clock
	metrics *observability.SettlementMetrics
	server  *echo.Echo
}

func setup(t *testing.T) *fixture {
	ctx := context.Background()
	log := testutils.Logger()
	events := &notification.Recorder{}
	db := memstore.New(events, log)
	clock := testutils.NewClock(now)

	roles := access.NewRegistry(db, log)
	require.NoError(t, roles.Bootstrap(ctx, []settlement.Account{"root"}, map[settlement.Role][]settlement.Account{
		settlement.RoleOperator: {"processor", "root"},
	}))
	reg, err := registry.NewRegistry(db, roles, log, 16)
	require.NoError(t, err)
	proc := processor.NewProcessor(db, roles, reg, clock, log, "processor")
	require.NoError(t, proc.Init(ctx, "fees", processor.DefaultFeeBasisPoints))

	services := Services{
		Roles:     roles,
		Registry:  reg,
		Processor: proc,
		Escrows:   escrow.NewManager(db, clock, log, "main"),
		Splitters: splitter.NewService(db, clock, log),
		Batch:     batch.NewExecutor(db, log),
		Ledger:    ledger.NewLedger(db, roles, log),
	}
	codec := NewAmountCodec(map[settlement.Asset]int32{settlement.NativeAsset: 18, "USD": 2})
	metrics := observability.MakeSettlementMetrics(observability.Make(configuration.Log{Level: "error", Format: "text"}))
	cfg := configuration.API{Listen: ":0", CallerHeader: callerHeader, BodyLimit: "1M"}
	si := NewSettlementServer(services, codec, log, callerHeader)
	events.Reset()

	return &fixture{db: db, events: events, clock: clock, metrics: metrics, server: NewServer(cfg, si, metrics)}
}

func (f *fixture) do(t *testing.T, method, path, caller string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload string
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = string(raw)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if caller != "" {
		req.Header.Set(callerHeader, caller)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func (f *fixture) fund(t *testing.T, account settlement.Account, amount string) {
	testutils.Fund(t, f.db, account, settlement.NativeAsset, testutils.Amount(amount))
}

func TestSettlementServer_ProcessPayment(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		f := setup(t)
		f.fund(t, "alice", "1000000000000000000")

		rec := f.do(t, http.MethodPost, "/api/payments", "alice", ProcessPaymentRequest{
			ID: "pay-1", Payee: "bob", Amount: "1", Supplied: "1", Memo: "coffee",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var receipt ReceiptResponse
		decode(t, rec, &receipt)
		assert.Equal(t, ReceiptResponse{PaymentID: "pay-1", Fee: "0.0025", Net: "0.9975"}, receipt)

		rec = f.do(t, http.MethodGet, "/api/balances/bob", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var balance BalanceResponse
		decode(t, rec, &balance)
		assert.Equal(t, BalanceResponse{Account: "bob", Asset: "NATIVE", Balance: "0.9975"}, balance)

		rec = f.do(t, http.MethodGet, "/api/registry/payments/pay-1", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var payment PaymentRecordResponse
		decode(t, rec, &payment)
		assert.Equal(t, "alice", payment.Payer)
		assert.Equal(t, "1", payment.Amount)
		assert.Equal(t, "COMPLETED", payment.Status)
		assert.Equal(t, now, payment.Timestamp)

		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Requests.WithLabelValues("POST /api/payments", "200")))
	})

	t.Run("missing_caller", func(t *testing.T) {
		f := setup(t)
		rec := f.do(t, http.MethodPost, "/api/payments", "", ProcessPaymentRequest{Payee: "bob", Amount: "1", Supplied: "1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, f.events.Events())
	})

	t.Run("malformed_amount", func(t *testing.T) {
		f := setup(t)
		rec := f.do(t, http.MethodPost, "/api/payments", "alice", ProcessPaymentRequest{Payee: "bob", Amount: "abc", Supplied: "1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("exponent_amount", func(t *testing.T) {
		f := setup(t)
		rec := f.do(t, http.MethodPost, "/api/payments", "alice", ProcessPaymentRequest{Payee: "bob", Amount: "1e3000000", Supplied: "1e3000000"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.events.Events())
	})

	t.Run("unknown_asset", func(t *testing.T) {
		f := setup(t)
		rec := f.do(t, http.MethodPost, "/api/payments", "alice", ProcessPaymentRequest{Payee: "bob", Asset: "EUR", Amount: "1", Supplied: "1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("supplied_mismatch", func(t *testing.T) {
		f := setup(t)
		f.fund(t, "alice", "1000000000000000000")
		rec := f.do(t, http.MethodPost, "/api/payments", "alice", ProcessPaymentRequest{Payee: "bob", Amount: "1", Supplied: "0.5"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "1000000000000000000", testutils.Balance(t, f.db, "alice", settlement.NativeAsset).String())
	})

	t.Run("insufficient_funds", func(t *testing.T) {
		f := setup(t)
		rec := f.do(t, http.MethodPost, "/api/payments", "alice", ProcessPaymentRequest{Payee: "bob", Amount: "1", Supplied: "1"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("duplicate_id", func(t *testing.T) {
		f := setup(t)
		f.fund(t, "alice", "2000000000000000000")
		body := ProcessPaymentRequest{ID: "pay-1", Payee: "bob", Amount: "1", Supplied: "1"}
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/payments", "alice", body).Code)
		assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/payments", "alice", body).Code)
		assert.Equal(t, "1000000000000000000", testutils.Balance(t, f.db, "alice", settlement.NativeAsset).String())
	})

	t.Run("paused", func(t *testing.T) {
		f := setup(t)
		f.fund(t, "alice", "1000000000000000000")
		testutils.Grant(t, f.db, settlement.RolePauser, "root")
		require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/processor/pause", "root", nil).Code)

		rec := f.do(t, http.MethodPost, "/api/payments", "alice", ProcessPaymentRequest{Payee: "bob", Amount: "1", Supplied: "1"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = f.do(t, http.MethodGet, "/api/processor/settings", "", nil)
		var settings SettingsResponse
		decode(t, rec, &settings)
		assert.True(t, settings.Paused)
	})
}

func TestSettlementServer_Registry(t *testing.T) {
	f := setup(t)
	record := PaymentRecordRequest{
		ID: "ext-1", Payer: "alice", Payee: "bob", Amount: "12.5", Asset: "USD", Timestamp: now, Status: "pending",
	}

	t.Run("writer_only", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/registry/payments", "mallory", record)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("register_and_update", func(t *testing.T) {
		require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/registry/payments", "root", record).Code)
		assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/registry/payments", "root", record).Code)

		rec := f.do(t, http.MethodPut, "/api/registry/payments/ext-1/status", "root", StatusRequest{Status: "REFUNDED"})
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = f.do(t, http.MethodGet, "/api/registry/payments/ext-1", "", nil)
		var payment PaymentRecordResponse
		decode(t, rec, &payment)
		assert.Equal(t, "12.5", payment.Amount)
		assert.Equal(t, "REFUNDED", payment.Status)

		rec = f.do(t, http.MethodGet, "/api/registry/payments/count", "", nil)
		var count CountResponse
		decode(t, rec, &count)
		assert.Equal(t, 1, count.Count)
	})

	t.Run("unknown_status", func(t *testing.T) {
		rec := f.do(t, http.MethodPut, "/api/registry/payments/ext-1/status", "root", StatusRequest{Status: "LOST"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/registry/payments/nope", "", nil).Code)
	})
}

func TestSettlementServer_Escrow(t *testing.T) {
	f := setup(t)
	f.fund(t, "alice", "3000000000000000000")

	rec := f.do(t, http.MethodPost, "/api/escrows", "alice", CreateEscrowRequest{
		Payee: "bob", Amount: "1", Supplied: "1", ReleaseTime: now + 3600, Memo: "deal",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created EscrowResponse
	decode(t, rec, &created)
	assert.Equal(t, uint64(1), created.ID)
	assert.Equal(t, "1", created.Amount)

	t.Run("payee_waits_for_release_time", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/escrows/1/release", "bob", nil).Code)
	})

	t.Run("refund_payer_only", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, "/api/escrows/1/refund", "bob", nil).Code)
	})

	t.Run("release_after_time", func(t *testing.T) {
		f.clock.Set(now + 3600)
		require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/escrows/1/release", "bob", nil).Code)
		assert.Equal(t, "1000000000000000000", testutils.Balance(t, f.db, "bob", settlement.NativeAsset).String())
		assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/escrows/1/refund", "alice", nil).Code)

		rec := f.do(t, http.MethodGet, "/api/escrows/1", "", nil)
		var got EscrowResponse
		decode(t, rec, &got)
		assert.True(t, got.Released)
		assert.False(t, got.Refunded)
	})

	t.Run("past_release_time", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/escrows", "alice", CreateEscrowRequest{
			Payee: "bob", Amount: "1", Supplied: "1", ReleaseTime: now,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed_id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/escrows/x", "", nil).Code)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/escrows/42", "", nil).Code)
	})

	t.Run("count", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/escrows/count", "", nil)
		var count CountResponse
		decode(t, rec, &count)
		assert.Equal(t, 1, count.Count)
	})
}

func TestSettlementServer_Splitter(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodPost, "/api/splitters", "root", CreateSplitterRequest{
		Payees: []string{"a", "b", "c"}, Shares: []uint64{70, 20, 10},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sp SplitterResponse
	decode(t, rec, &sp)
	assert.Equal(t, uint64(100), sp.TotalShares)
	require.Len(t, sp.Payees, 3)

	f.fund(t, settlement.Account(sp.Account), "10000000000000000000")

	rec = f.do(t, http.MethodGet, "/api/splitters/"+sp.ID+"/releasable/a", "", nil)
	var due AmountResponse
	decode(t, rec, &due)
	assert.Equal(t, "7", due.Amount)

	rec = f.do(t, http.MethodPost, "/api/splitters/"+sp.ID+"/release", "anyone", ReleaseRequest{Payee: "a"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var paid AmountResponse
	decode(t, rec, &paid)
	assert.Equal(t, "7", paid.Amount)
	assert.Equal(t, "7000000000000000000", testutils.Balance(t, f.db, "a", settlement.NativeAsset).String())

	rec = f.do(t, http.MethodPost, "/api/splitters/"+sp.ID+"/release", "anyone", ReleaseRequest{Payee: "stranger"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/splitters/"+sp.ID, "", nil)
	decode(t, rec, &sp)
	assert.Equal(t, "7", sp.TotalReleased)
}

func TestSettlementServer_BatchTransfer(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		f := setup(t)
		f.fund(t, "alice", "1800000000000000000")
		rec := f.do(t, http.MethodPost, "/api/batch", "alice", BatchTransferRequest{
			Supplied:   "1.8",
			Recipients: []string{"a", "b", "c"},
			Amounts:    []string{"1.0", "0.5", "0.3"},
		})
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
		assert.Equal(t, "300000000000000000", testutils.Balance(t, f.db, "c", settlement.NativeAsset).String())
		assert.Equal(t, []string{"BatchTransferred"}, f.events.Names())
	})

	t.Run("length_mismatch", func(t *testing.T) {
		f := setup(t)
		rec := f.do(t, http.MethodPost, "/api/batch", "alice", BatchTransferRequest{
			Supplied: "1", Recipients: []string{"a", "b"}, Amounts: []string{"1"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSettlementServer_Roles(t *testing.T) {
	f := setup(t)

	t.Run("grant_requires_admin", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/roles/pauser/members", "mallory", AccountRequest{Account: "mallory"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("grant_list_revoke", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/roles/pauser/members", "root", AccountRequest{Account: "carol"}).Code)

		rec := f.do(t, http.MethodGet, "/api/roles/PAUSER/members", "", nil)
		var members MembersResponse
		decode(t, rec, &members)
		assert.Equal(t, []string{"carol"}, members.Members)

		require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/processor/pause", "carol", nil).Code)
		require.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/roles/pauser/members/carol", "root", nil).Code)
		assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, "/api/processor/unpause", "carol", nil).Code)
	})

	t.Run("fee_manager", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/roles/fee_manager/members", "root", AccountRequest{Account: "fm"}).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, "/api/processor/fee", "fm", FeeRequest{BasisPoints: 501}).Code)
		require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPut, "/api/processor/fee", "fm", FeeRequest{BasisPoints: 50}).Code)
		require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPut, "/api/processor/collector", "root", AccountRequest{Account: "treasury"}).Code)

		rec := f.do(t, http.MethodGet, "/api/processor/settings", "", nil)
		var settings SettingsResponse
		decode(t, rec, &settings)
		assert.Equal(t, uint32(50), settings.FeeBasisPoints)
		assert.Equal(t, "treasury", settings.FeeCollector)
	})
}

func TestSettlementServer_Ledger(t *testing.T) {
	f := setup(t)

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, "/api/deposits", "alice", DepositRequest{Account: "alice", Amount: "5"}).Code)
	require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/deposits", "root", DepositRequest{Account: "alice", Asset: "USD", Amount: "5.25"}).Code)
	require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/transfers", "alice", TransferRequest{To: "bob", Asset: "USD", Amount: "0.25"}).Code)

	rec := f.do(t, http.MethodGet, "/api/balances/alice?asset=USD", "", nil)
	var balance BalanceResponse
	decode(t, rec, &balance)
	assert.Equal(t, "5", balance.Balance)
	assert.Equal(t, "500", testutils.Balance(t, f.db, "alice", "USD").String())

	escrowCustody := settlement.CustodyAccount("escrow", "main")
	require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/deposits", "root", DepositRequest{Account: escrowCustody.String(), Asset: "USD", Amount: "1"}).Code)
	rec = f.do(t, http.MethodPost, "/api/transfers", escrowCustody.String(), TransferRequest{To: "mallory", Asset: "USD", Amount: "1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "100", testutils.Balance(t, f.db, escrowCustody, "USD").String())
}
