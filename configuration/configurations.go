// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package configuration

// Configurations maps file names to the default configs written by gen.
func Configurations() map[string]interface{} {
	cfgs := make(map[string]interface{})
	cfgs["settlement.yaml"] = Settlement{}.Default()
	cfgs["migrate.yaml"] = Migrate{}.Default()

	return cfgs
}
