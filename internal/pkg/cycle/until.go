// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package cycle

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Limit int

const (
	INFINITY Limit = math.MaxInt32
)

// UntilConnectionError retries f while it fails with a connection error, at
// most attempts times. Any other error is returned immediately.
func UntilConnectionError(ctx context.Context, f func() error, interval time.Duration, attempts Limit, log logrus.FieldLogger) error {
	counter := Limit(1)
	if attempts < 1 {
		attempts = 1
	}
	for {
		err := f()
		if err == nil {
			return nil
		}
		if !IsConnectionError(err) || counter >= attempts {
			return err
		}
		log.Errorf("Connection error, try again (attempt %d, totalAttempts %d) %+v", counter, attempts, err)
		counter++
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func IsConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection") || strings.Contains(msg, "EOF")
}
