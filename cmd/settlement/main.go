// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/component"
	"github.com/insolar/settlement/configuration"
)

const shutdownTimeout = 10 * time.Second

var stop = make(chan os.Signal, 1)
var Version string

func main() {
	logger := logrus.New()
	cfg, err := configuration.Load(logger)
	if err != nil {
		logger.Fatal(err)
	}
	if len(Version) == 0 {
		Version = "dev"
	}
	logger.Infof("Settlement version=%s", Version)

	manager, err := component.Prepare(context.Background(), cfg)
	if err != nil {
		logger.Fatal(err)
	}
	manager.Start()
	graceful(logger, manager.Stop)
}

func graceful(logger logrus.FieldLogger, that func(ctx context.Context)) {
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Infof("gracefully stopping...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	that(ctx)
}
