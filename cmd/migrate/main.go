// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package main

import (
	"flag"

	"github.com/go-pg/migrations"
	"github.com/pkg/errors"

	"github.com/insolar/settlement/configuration"
	"github.com/insolar/settlement/configuration/insconfig"
	"github.com/insolar/settlement/internal/dbconn"
	"github.com/insolar/settlement/observability"
)

var migrationDir = flag.String("dir", "scripts/migrations", "directory with migrations")
var doInit = flag.Bool("init", false, "perform db init (for empty db)")

func main() {
	prms := insconfig.Params{
		EnvPrefix: "migrate",
		GoFlags:   flag.CommandLine,
	}
	bootLog := observability.NewLogger(configuration.Log{Level: "info"})
	cfg, err := configuration.LoadMigrate(bootLog, prms)
	if err != nil {
		bootLog.Fatal(err)
	}
	log := observability.NewLogger(cfg.Log)

	db, err := dbconn.Connect(cfg.DB)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer db.Close()

	migrationCollection := migrations.NewCollection()
	if *doInit {
		_, _, err := migrationCollection.Run(db, "init")
		if err != nil {
			log.Fatal(errors.Wrap(err, "Could not init migrations"))
		}
	}

	err = migrationCollection.DiscoverSQLMigrations(*migrationDir)
	if err != nil {
		log.Fatal(errors.Wrap(err, "Failed to read migrations"))
	}

	oldVersion, newVersion, err := migrationCollection.Run(db, "up")
	if err != nil {
		log.Fatal(errors.Wrap(err, "Could not migrate"))
	}
	log.Infof("migrated successfully from %d to %d", oldVersion, newVersion)
}
