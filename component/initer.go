// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package component

import (
	"context"

	"github.com/pkg/errors"

	"github.com/insolar/settlement/configuration"
	"github.com/insolar/settlement/internal/app/settlement"
	"github.com/insolar/settlement/internal/app/settlement/access"
	"github.com/insolar/settlement/internal/app/settlement/processor"
)

// initState grants the configured roles and brings the processor settings in
// place. It is safe to run on every start.
func initState(
	ctx context.Context,
	cfg *configuration.Settlement,
	db settlement.Transactor,
	roles *access.Registry,
	proc *processor.Processor,
	escrowCustody settlement.Account,
) error {
	// The processor writes to the payment registry under its own account.
	operators := append(toAccounts(cfg.Roles.Operators), proc.Account())
	members := map[settlement.Role][]settlement.Account{
		settlement.RolePauser:     toAccounts(cfg.Roles.Pausers),
		settlement.RoleFeeManager: toAccounts(cfg.Roles.FeeManagers),
		settlement.RoleOperator:   operators,
	}
	if err := roles.Bootstrap(ctx, toAccounts(cfg.Roles.Admins), members); err != nil {
		return errors.Wrap(err, "failed to bootstrap roles")
	}
	if err := proc.Init(ctx, settlement.Account(cfg.Fee.Collector), cfg.Fee.BasisPoints); err != nil {
		return errors.Wrap(err, "failed to init processor")
	}
	return db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		tx.Emit(
			settlement.PaymentRegistryDeployed{Writer: proc.Account()},
			settlement.EscrowDeployed{Account: escrowCustody},
			settlement.BatchOperationsDeployed{},
		)
		return nil
	})
}

func toAccounts(values []string) []settlement.Account {
	res := make([]settlement.Account, 0, len(values))
	for _, v := range values {
		res = append(res, settlement.Account(v))
	}
	return res
}
