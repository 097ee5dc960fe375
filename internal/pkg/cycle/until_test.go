// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package cycle

import (
	"context"
	"io/ioutil"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(ioutil.Discard)
	return log
}

func TestUntilConnectionError(t *testing.T) {
	ctx := context.Background()

	t.Run("retries_connection_errors", func(t *testing.T) {
		calls := 0
		err := UntilConnectionError(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("dial tcp: connection refused")
			}
			return nil
		}, time.Millisecond, 5, quietLogger())
		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("gives_up", func(t *testing.T) {
		calls := 0
		err := UntilConnectionError(ctx, func() error {
			calls++
			return errors.New("unexpected EOF")
		}, time.Millisecond, 2, quietLogger())
		require.Error(t, err)
		require.Equal(t, 2, calls)
	})

	t.Run("other_errors_not_retried", func(t *testing.T) {
		calls := 0
		err := UntilConnectionError(ctx, func() error {
			calls++
			return errors.New("syntax error")
		}, time.Millisecond, INFINITY, quietLogger())
		require.Error(t, err)
		require.Equal(t, 1, calls)
	})
}
