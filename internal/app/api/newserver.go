// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/insolar/settlement/configuration"
	"github.com/insolar/settlement/internal/app/settlement"
	"github.com/insolar/settlement/observability"
)

// NewServer builds the echo instance serving the settlement API.
func NewServer(cfg configuration.API, si ServerInterface, metrics *observability.SettlementMetrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	if metrics != nil {
		e.Use(RequestMetrics(metrics.Requests))
	}

	RegisterHandlers(e, si)
	return e
}

// AssetDecimals collects the configured assets for NewAmountCodec.
func AssetDecimals(cfg *configuration.Settlement) map[settlement.Asset]int32 {
	res := make(map[settlement.Asset]int32, len(cfg.Assets))
	for _, a := range cfg.Assets {
		res[settlement.Asset(a.Symbol)] = a.Decimals
	}
	return res
}
