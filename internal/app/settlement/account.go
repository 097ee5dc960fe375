// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package settlement

import (
	"strings"

	"github.com/pkg/errors"
)

// Account identifies a value holder: a user, a fee collector or a component's custody.
type Account string

// NullAccount is the zero identifier; value can never be sent to it.
const NullAccount Account = ""

func (a Account) IsNull() bool {
	return strings.TrimSpace(string(a)) == ""
}

func (a Account) String() string {
	return string(a)
}

// custodyMark joins a component name and the id of an account it holds.
// Identities of external parties never contain it.
const custodyMark = ":"

// CustodyAccount names an account a component holds on behalf of others.
func CustodyAccount(component, id string) Account {
	return Account(component + custodyMark + id)
}

func (a Account) IsCustody() bool {
	return strings.Contains(string(a), custodyMark)
}

// RequireExternal rejects a custody account acting as a caller. Value on such
// accounts moves only through the component that holds it.
func RequireExternal(caller Account) error {
	if caller.IsCustody() {
		return errors.Wrapf(ErrUnauthorized, "custody account %s cannot act as caller", caller)
	}
	return nil
}

// Asset is the type of value being moved, e.g. the native coin or a token symbol.
type Asset string

const NativeAsset Asset = "NATIVE"

func (a Asset) String() string {
	return string(a)
}

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RolePauser     Role = "PAUSER"
	RoleFeeManager Role = "FEE_MANAGER"
	RoleOperator   Role = "OPERATOR"
)

// DefaultAdminRole grants every role that has no explicit admin role configured.
const DefaultAdminRole = RoleAdmin

func (r Role) String() string {
	return string(r)
}
