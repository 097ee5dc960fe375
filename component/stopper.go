// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package component

import (
	"context"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// makeStopper shuts the servers down first so that no request is served after
// the store is closed.
func makeStopper(log *logrus.Logger, be *backend, e *echo.Echo, router *Router) func(ctx context.Context) {
	return func(ctx context.Context) {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := e.Shutdown(ctx); err != nil {
				log.Error(errors.Wrap(err, "api server shutdown"))
			}
		}()
		go func() {
			defer wg.Done()
			router.Stop(ctx)
		}()
		wg.Wait()

		if err := be.close(); err != nil {
			log.Error(errors.Wrapf(err, "failed to close db"))
		}
	}
}
