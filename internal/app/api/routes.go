// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package api

import (
	"github.com/labstack/echo/v4"
)

type ServerInterface interface {
	ProcessPayment(ctx echo.Context) error

	RegisterPayment(ctx echo.Context) error
	UpdatePaymentStatus(ctx echo.Context) error
	GetPayment(ctx echo.Context) error
	GetPaymentCount(ctx echo.Context) error

	CreateEscrow(ctx echo.Context) error
	GetEscrow(ctx echo.Context) error
	GetEscrowCount(ctx echo.Context) error
	ReleaseEscrow(ctx echo.Context) error
	RefundEscrow(ctx echo.Context) error

	CreateSplitter(ctx echo.Context) error
	GetSplitter(ctx echo.Context) error
	GetReleasable(ctx echo.Context) error
	ReleaseSplitter(ctx echo.Context) error

	BatchTransfer(ctx echo.Context) error

	GrantRole(ctx echo.Context) error
	GetRoleMembers(ctx echo.Context) error
	RevokeRole(ctx echo.Context) error
	RenounceRole(ctx echo.Context) error
	SetRoleAdmin(ctx echo.Context) error

	GetProcessorSettings(ctx echo.Context) error
	UpdatePlatformFee(ctx echo.Context) error
	UpdateFeeCollector(ctx echo.Context) error
	Pause(ctx echo.Context) error
	Unpause(ctx echo.Context) error

	Deposit(ctx echo.Context) error
	Transfer(ctx echo.Context) error
	GetBalance(ctx echo.Context) error
}

// EchoRouter is satisfied by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

func RegisterHandlers(router EchoRouter, si ServerInterface) {
	router.POST("/api/payments", si.ProcessPayment)

	router.POST("/api/registry/payments", si.RegisterPayment)
	router.GET("/api/registry/payments/count", si.GetPaymentCount)
	router.GET("/api/registry/payments/:id", si.GetPayment)
	router.PUT("/api/registry/payments/:id/status", si.UpdatePaymentStatus)

	router.POST("/api/escrows", si.CreateEscrow)
	router.GET("/api/escrows/count", si.GetEscrowCount)
	router.GET("/api/escrows/:id", si.GetEscrow)
	router.POST("/api/escrows/:id/release", si.ReleaseEscrow)
	router.POST("/api/escrows/:id/refund", si.RefundEscrow)

	router.POST("/api/splitters", si.CreateSplitter)
	router.GET("/api/splitters/:id", si.GetSplitter)
	router.GET("/api/splitters/:id/releasable/:payee", si.GetReleasable)
	router.POST("/api/splitters/:id/release", si.ReleaseSplitter)

	router.POST("/api/batch", si.BatchTransfer)

	router.POST("/api/roles/:role/members", si.GrantRole)
	router.GET("/api/roles/:role/members", si.GetRoleMembers)
	router.DELETE("/api/roles/:role/members/:account", si.RevokeRole)
	router.POST("/api/roles/:role/renounce", si.RenounceRole)
	router.PUT("/api/roles/:role/admin", si.SetRoleAdmin)

	router.GET("/api/processor/settings", si.GetProcessorSettings)
	router.PUT("/api/processor/fee", si.UpdatePlatformFee)
	router.PUT("/api/processor/collector", si.UpdateFeeCollector)
	router.POST("/api/processor/pause", si.Pause)
	router.POST("/api/processor/unpause", si.Unpause)

	router.POST("/api/deposits", si.Deposit)
	router.POST("/api/transfers", si.Transfer)
	router.GET("/api/balances/:account", si.GetBalance)
}
