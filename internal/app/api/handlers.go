// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/internal/app/settlement"
	"github.com/insolar/settlement/internal/app/settlement/access"
	"github.com/insolar/settlement/internal/app/settlement/batch"
	"github.com/insolar/settlement/internal/app/settlement/escrow"
	"github.com/insolar/settlement/internal/app/settlement/ledger"
	"github.com/insolar/settlement/internal/app/settlement/processor"
	"github.com/insolar/settlement/internal/app/settlement/registry"
	"github.com/insolar/settlement/internal/app/settlement/splitter"
)

type Services struct {
	Roles     *access.Registry
	Registry  *registry.Registry
	Processor *processor.Processor
	Escrows   *escrow.Manager
	Splitters *splitter.Service
	Batch     *batch.Executor
	Ledger    *ledger.Ledger
}

type SettlementServer struct {
	services     Services
	codec        *AmountCodec
	log          *logrus.Logger
	callerHeader string
}

func NewSettlementServer(services Services, codec *AmountCodec, log *logrus.Logger, callerHeader string) *SettlementServer {
	return &SettlementServer{services: services, codec: codec, log: log, callerHeader: callerHeader}
}

// caller is the account the request acts on behalf of. Authentication happens
// in front of this service, the header is trusted.
func (s *SettlementServer) caller(ctx echo.Context) (settlement.Account, error) {
	acc := settlement.Account(strings.TrimSpace(ctx.Request().Header.Get(s.callerHeader)))
	if acc.IsNull() {
		return "", echo.NewHTTPError(http.StatusUnauthorized, NewSingleMessageError("missing "+s.callerHeader+" header"))
	}
	return acc, nil
}

func (s *SettlementServer) fail(ctx echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		return ctx.JSON(he.Code, he.Message)
	}
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		s.log.WithField("path", ctx.Path()).Error(err)
		return ctx.JSON(code, NewSingleMessageError("internal error"))
	}
	s.log.WithField("path", ctx.Path()).Debug(err)
	return ctx.JSON(code, NewSingleMessageError(err.Error()))
}

func (s *SettlementServer) bind(ctx echo.Context, v interface{}) error {
	if err := ctx.Bind(v); err != nil {
		return errors.Wrap(settlement.ErrInvalidInput, "malformed request body")
	}
	return nil
}

func (s *SettlementServer) ProcessPayment(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req ProcessPaymentRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	asset, err := s.codec.Asset(req.Asset)
	if err != nil {
		return s.fail(ctx, err)
	}
	amount, err := s.codec.Parse(asset, req.Amount)
	if err != nil {
		return s.fail(ctx, err)
	}
	supplied, err := s.codec.Parse(asset, req.Supplied)
	if err != nil {
		return s.fail(ctx, err)
	}
	receipt, err := s.services.Processor.ProcessPayment(ctx.Request().Context(), caller, supplied, processor.PaymentRequest{
		ID:     req.ID,
		Payee:  settlement.Account(req.Payee),
		Asset:  asset,
		Amount: amount,
		Memo:   req.Memo,
	})
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ReceiptResponse{
		PaymentID: receipt.PaymentID,
		Fee:       s.codec.Format(asset, receipt.Fee),
		Net:       s.codec.Format(asset, receipt.Net),
	})
}

func (s *SettlementServer) RegisterPayment(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req PaymentRecordRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	asset, err := s.codec.Asset(req.Asset)
	if err != nil {
		return s.fail(ctx, err)
	}
	amount, err := s.codec.Parse(asset, req.Amount)
	if err != nil {
		return s.fail(ctx, err)
	}
	status, err := settlement.ParsePaymentStatus(req.Status)
	if err != nil {
		return s.fail(ctx, err)
	}
	err = s.services.Registry.RegisterPayment(ctx.Request().Context(), caller, settlement.PaymentRecord{
		ID:        req.ID,
		Payer:     settlement.Account(req.Payer),
		Payee:     settlement.Account(req.Payee),
		Amount:    amount,
		Asset:     asset,
		Timestamp: req.Timestamp,
		Memo:      req.Memo,
		Status:    status,
	})
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusCreated)
}

func (s *SettlementServer) UpdatePaymentStatus(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req StatusRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	status, err := settlement.ParsePaymentStatus(req.Status)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.services.Registry.UpdatePaymentStatus(ctx.Request().Context(), caller, ctx.Param("id"), status); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) GetPayment(ctx echo.Context) error {
	rec, err := s.services.Registry.GetPayment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, paymentResponse(s.codec, rec))
}

func (s *SettlementServer) GetPaymentCount(ctx echo.Context) error {
	count, err := s.services.Registry.GetPaymentCount(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: count})
}

func (s *SettlementServer) CreateEscrow(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req CreateEscrowRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	asset, err := s.codec.Asset(req.Asset)
	if err != nil {
		return s.fail(ctx, err)
	}
	amount, err := s.codec.Parse(asset, req.Amount)
	if err != nil {
		return s.fail(ctx, err)
	}
	supplied, err := s.codec.Parse(asset, req.Supplied)
	if err != nil {
		return s.fail(ctx, err)
	}
	rec, err := s.services.Escrows.CreateEscrow(ctx.Request().Context(), caller, supplied, escrow.CreateRequest{
		Payee:       settlement.Account(req.Payee),
		Asset:       asset,
		Amount:      amount,
		ReleaseTime: req.ReleaseTime,
		Memo:        req.Memo,
	})
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, escrowResponse(s.codec, rec))
}

func (s *SettlementServer) escrowID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(settlement.ErrInvalidInput, "malformed escrow id %q", ctx.Param("id"))
	}
	return id, nil
}

func (s *SettlementServer) GetEscrow(ctx echo.Context) error {
	id, err := s.escrowID(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	rec, err := s.services.Escrows.GetEscrow(ctx.Request().Context(), id)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, escrowResponse(s.codec, rec))
}

func (s *SettlementServer) GetEscrowCount(ctx echo.Context) error {
	count, err := s.services.Escrows.EscrowCount(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: count})
}

func (s *SettlementServer) ReleaseEscrow(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	id, err := s.escrowID(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.services.Escrows.ReleaseEscrow(ctx.Request().Context(), caller, id); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) RefundEscrow(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	id, err := s.escrowID(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.services.Escrows.RefundEscrow(ctx.Request().Context(), caller, id); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) CreateSplitter(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req CreateSplitterRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	asset, err := s.codec.Asset(req.Asset)
	if err != nil {
		return s.fail(ctx, err)
	}
	sp, err := s.services.Splitters.CreateSplitter(ctx.Request().Context(), caller, asset, accounts(req.Payees), req.Shares)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, splitterResponse(s.codec, sp))
}

func (s *SettlementServer) GetSplitter(ctx echo.Context) error {
	sp, err := s.services.Splitters.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, splitterResponse(s.codec, sp))
}

func (s *SettlementServer) GetReleasable(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	sp, err := s.services.Splitters.Get(reqCtx, ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, err)
	}
	due, err := s.services.Splitters.Releasable(reqCtx, sp.ID, settlement.Account(ctx.Param("payee")))
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, AmountResponse{Amount: s.codec.Format(sp.Asset, due)})
}

func (s *SettlementServer) ReleaseSplitter(ctx echo.Context) error {
	var req ReleaseRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	reqCtx := ctx.Request().Context()
	released, err := s.services.Splitters.Release(reqCtx, ctx.Param("id"), settlement.Account(req.Payee))
	if err != nil {
		return s.fail(ctx, err)
	}
	sp, err := s.services.Splitters.Get(reqCtx, ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, AmountResponse{Amount: s.codec.Format(sp.Asset, released)})
}

func (s *SettlementServer) BatchTransfer(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req BatchTransferRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	asset, err := s.codec.Asset(req.Asset)
	if err != nil {
		return s.fail(ctx, err)
	}
	supplied, err := s.codec.Parse(asset, req.Supplied)
	if err != nil {
		return s.fail(ctx, err)
	}
	amounts, err := s.codec.ParseAll(asset, req.Amounts)
	if err != nil {
		return s.fail(ctx, err)
	}
	err = s.services.Batch.BatchTransfer(ctx.Request().Context(), caller, supplied, asset, accounts(req.Recipients), amounts)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func role(ctx echo.Context) settlement.Role {
	return settlement.Role(strings.ToUpper(ctx.Param("role")))
}

func (s *SettlementServer) GrantRole(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req AccountRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	if err := s.services.Roles.GrantRole(ctx.Request().Context(), caller, role(ctx), settlement.Account(req.Account)); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) GetRoleMembers(ctx echo.Context) error {
	members, err := s.services.Roles.Members(ctx.Request().Context(), role(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}
	res := MembersResponse{Role: role(ctx).String(), Members: make([]string, 0, len(members))}
	for _, m := range members {
		res.Members = append(res.Members, m.String())
	}
	return ctx.JSON(http.StatusOK, res)
}

func (s *SettlementServer) RevokeRole(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	err = s.services.Roles.RevokeRole(ctx.Request().Context(), caller, role(ctx), settlement.Account(ctx.Param("account")))
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) RenounceRole(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.services.Roles.RenounceRole(ctx.Request().Context(), caller, role(ctx)); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) SetRoleAdmin(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req RoleAdminRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	admin := settlement.Role(strings.ToUpper(req.Admin))
	if err := s.services.Roles.SetRoleAdmin(ctx.Request().Context(), caller, role(ctx), admin); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) GetProcessorSettings(ctx echo.Context) error {
	ps, err := s.services.Processor.Settings(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, SettingsResponse{
		FeeBasisPoints: ps.FeeBasisPoints,
		FeeCollector:   ps.FeeCollector.String(),
		Paused:         ps.Paused,
	})
}

func (s *SettlementServer) UpdatePlatformFee(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req FeeRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	if err := s.services.Processor.UpdatePlatformFee(ctx.Request().Context(), caller, req.BasisPoints); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) UpdateFeeCollector(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req AccountRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	err = s.services.Processor.UpdateFeeCollector(ctx.Request().Context(), caller, settlement.Account(req.Account))
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) Pause(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.services.Processor.Pause(ctx.Request().Context(), caller); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) Unpause(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.services.Processor.Unpause(ctx.Request().Context(), caller); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) Deposit(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req DepositRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	asset, err := s.codec.Asset(req.Asset)
	if err != nil {
		return s.fail(ctx, err)
	}
	amount, err := s.codec.Parse(asset, req.Amount)
	if err != nil {
		return s.fail(ctx, err)
	}
	err = s.services.Ledger.Deposit(ctx.Request().Context(), caller, settlement.Account(req.Account), asset, amount)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) Transfer(ctx echo.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	var req TransferRequest
	if err := s.bind(ctx, &req); err != nil {
		return s.fail(ctx, err)
	}
	asset, err := s.codec.Asset(req.Asset)
	if err != nil {
		return s.fail(ctx, err)
	}
	amount, err := s.codec.Parse(asset, req.Amount)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.services.Ledger.Transfer(ctx.Request().Context(), caller, settlement.Account(req.To), asset, amount); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *SettlementServer) GetBalance(ctx echo.Context) error {
	asset, err := s.codec.Asset(ctx.QueryParam("asset"))
	if err != nil {
		return s.fail(ctx, err)
	}
	account := settlement.Account(ctx.Param("account"))
	balance, err := s.services.Ledger.BalanceOf(ctx.Request().Context(), account, asset)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, BalanceResponse{
		Account: account.String(),
		Asset:   asset.String(),
		Balance: s.codec.Format(asset, balance),
	})
}
