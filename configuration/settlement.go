// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package configuration

import (
	"time"

	"github.com/insolar/settlement/internal/pkg/cycle"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type Settlement struct {
	Log      Log
	DB       DB
	API      API
	Ops      Ops
	Store    Store
	Fee      Fee
	Roles    Roles
	Accounts Accounts
	Assets   []Asset
	Cache    Cache
}

type Log struct {
	Level  string
	Format string
}

type DB struct {
	URL      string
	PoolSize int
	Attempts cycle.Limit
	// Interval between failed connection attempts
	AttemptInterval time.Duration
}

type API struct {
	Listen string
	// Header carrying the caller account
	CallerHeader string
	BodyLimit    string
}

// Ops serves health check and metrics.
type Ops struct {
	Listen string
}

type Store struct {
	Backend string
}

type Fee struct {
	BasisPoints uint32
	Collector   string
}

// Roles lists accounts granted at bootstrap.
type Roles struct {
	Admins      []string
	Pausers     []string
	FeeManagers []string
	Operators   []string
}

// Accounts name the accounts of the deployed components. Escrow is the id of
// the escrow custody account, which is held as "escrow:<id>".
type Accounts struct {
	Processor string
	Escrow    string
}

type Asset struct {
	Symbol   string
	Decimals int32
}

type Cache struct {
	// Payments is the registry read cache size, 0 disables it.
	Payments int
}

func (Settlement) Default() *Settlement {
	return &Settlement{
		Log: Log{
			Level:  "debug",
			Format: "text",
		},
		DB: DB{
			URL:             "postgres://postgres@localhost/postgres?sslmode=disable",
			PoolSize:        100,
			Attempts:        5,
			AttemptInterval: 3 * time.Second,
		},
		API: API{
			Listen:       ":8080",
			CallerHeader: "X-Account",
			BodyLimit:    "1M",
		},
		Ops: Ops{
			Listen: ":8888",
		},
		Store: Store{
			Backend: BackendMemory,
		},
		Fee: Fee{
			BasisPoints: 25,
			Collector:   "fee-collector",
		},
		Roles: Roles{
			Admins:      []string{"admin"},
			Pausers:     []string{"admin"},
			FeeManagers: []string{"admin"},
			Operators:   []string{"admin"},
		},
		Accounts: Accounts{
			Processor: "processor",
			Escrow:    "main",
		},
		Assets: []Asset{
			{Symbol: "NATIVE", Decimals: 18},
		},
		Cache: Cache{
			Payments: 10000,
		},
	}
}

// Decimals returns the precision of symbol and whether it is configured.
func (s *Settlement) Decimals(symbol string) (int32, bool) {
	for _, a := range s.Assets {
		if a.Symbol == symbol {
			return a.Decimals, true
		}
	}
	return 0, false
}
