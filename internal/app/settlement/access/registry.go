// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package access

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/settlement/internal/app/settlement"
)

// Registry is the role registry. Membership of a role changes only through a
// holder of that role's admin role.
type Registry struct {
	db  settlement.Transactor
	log *logrus.Logger
}

func NewRegistry(db settlement.Transactor, log *logrus.Logger) *Registry {
	return &Registry{db: db, log: log}
}

// Bootstrap grants ADMIN to admins and the configured initial members without an
// authorization check. Running it again is harmless.
func (r *Registry) Bootstrap(ctx context.Context, admins []settlement.Account, members map[settlement.Role][]settlement.Account) error {
	return r.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		for _, admin := range admins {
			if err := r.grant(ctx, tx, settlement.RoleAdmin, admin, settlement.NullAccount); err != nil {
				return err
			}
		}
		for role, accounts := range members {
			for _, acc := range accounts {
				if err := r.grant(ctx, tx, role, acc, settlement.NullAccount); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *Registry) GrantRole(ctx context.Context, caller settlement.Account, role settlement.Role, account settlement.Account) error {
	return r.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		if err := r.checkAdmin(ctx, tx, caller, role); err != nil {
			return err
		}
		return r.grant(ctx, tx, role, account, caller)
	})
}

func (r *Registry) RevokeRole(ctx context.Context, caller settlement.Account, role settlement.Role, account settlement.Account) error {
	return r.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		if err := r.checkAdmin(ctx, tx, caller, role); err != nil {
			return err
		}
		return r.revoke(ctx, tx, role, account, caller)
	})
}

// RenounceRole drops the caller's own membership.
func (r *Registry) RenounceRole(ctx context.Context, caller settlement.Account, role settlement.Role) error {
	if err := validate(role, caller); err != nil {
		return err
	}
	return r.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		return r.revoke(ctx, tx, role, caller, caller)
	})
}

// SetRoleAdmin changes which role administers role. Only a holder of the
// current admin role may do it.
func (r *Registry) SetRoleAdmin(ctx context.Context, caller settlement.Account, role, admin settlement.Role) error {
	if strings.TrimSpace(string(admin)) == "" {
		return errors.Wrap(settlement.ErrInvalidInput, "empty admin role")
	}
	return r.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		if err := r.checkAdmin(ctx, tx, caller, role); err != nil {
			return err
		}
		previous, err := tx.Roles().Admin(ctx, role)
		if err != nil {
			return errors.Wrap(err, "failed to read role admin")
		}
		if err := tx.Roles().SetAdmin(ctx, role, admin); err != nil {
			return errors.Wrap(err, "failed to set role admin")
		}
		tx.Emit(settlement.RoleAdminChanged{Role: role, PreviousAdmin: previous, NewAdmin: admin})
		return nil
	})
}

func (r *Registry) HasRole(ctx context.Context, role settlement.Role, account settlement.Account) (bool, error) {
	var has bool
	err := r.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		var err error
		has, err = tx.Roles().HasRole(ctx, role, account)
		return err
	})
	return has, errors.Wrap(err, "failed to check role")
}

func (r *Registry) Members(ctx context.Context, role settlement.Role) ([]settlement.Account, error) {
	var members []settlement.Account
	err := r.db.RunInTransaction(ctx, func(ctx context.Context, tx settlement.Tx) error {
		var err error
		members, err = tx.Roles().Members(ctx, role)
		return err
	})
	return members, errors.Wrap(err, "failed to list role members")
}

// Require fails with ErrUnauthorized unless account holds role. Inside a
// running transaction it joins it.
func (r *Registry) Require(ctx context.Context, role settlement.Role, account settlement.Account) error {
	has, err := r.HasRole(ctx, role, account)
	if err != nil {
		return err
	}
	if !has {
		return errors.Wrapf(settlement.ErrUnauthorized, "%s lacks role %s", account, role)
	}
	return nil
}

func (r *Registry) checkAdmin(ctx context.Context, tx settlement.Tx, caller settlement.Account, role settlement.Role) error {
	admin, err := tx.Roles().Admin(ctx, role)
	if err != nil {
		return errors.Wrap(err, "failed to read role admin")
	}
	ok, err := tx.Roles().HasRole(ctx, admin, caller)
	if err != nil {
		return errors.Wrap(err, "failed to check role")
	}
	if !ok {
		return errors.Wrapf(settlement.ErrUnauthorized, "%s lacks role %s required to administer %s", caller, admin, role)
	}
	return nil
}

func (r *Registry) grant(ctx context.Context, tx settlement.Tx, role settlement.Role, account, sender settlement.Account) error {
	if err := validate(role, account); err != nil {
		return err
	}
	changed, err := tx.Roles().Grant(ctx, role, account)
	if err != nil {
		return errors.Wrapf(err, "failed to grant %s", role)
	}
	if changed {
		tx.AfterCommit(func() {
			r.log.WithFields(logrus.Fields{"role": role, "account": account, "sender": sender}).Info("role granted")
		})
		tx.Emit(settlement.RoleGranted{Role: role, Account: account, Sender: sender})
	}
	return nil
}

func (r *Registry) revoke(ctx context.Context, tx settlement.Tx, role settlement.Role, account, sender settlement.Account) error {
	if err := validate(role, account); err != nil {
		return err
	}
	changed, err := tx.Roles().Revoke(ctx, role, account)
	if err != nil {
		return errors.Wrapf(err, "failed to revoke %s", role)
	}
	if changed {
		tx.AfterCommit(func() {
			r.log.WithFields(logrus.Fields{"role": role, "account": account, "sender": sender}).Info("role revoked")
		})
		tx.Emit(settlement.RoleRevoked{Role: role, Account: account, Sender: sender})
	}
	return nil
}

func validate(role settlement.Role, account settlement.Account) error {
	if strings.TrimSpace(string(role)) == "" {
		return errors.Wrap(settlement.ErrInvalidInput, "empty role")
	}
	if account.IsNull() {
		return errors.Wrap(settlement.ErrInvalidInput, "empty account")
	}
	return nil
}
