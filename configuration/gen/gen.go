// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package main

import (
	"fmt"
	"io/ioutil"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/insolar/settlement/configuration"
)

func main() {
	cfgs := configuration.Configurations()
	names := make([]string, 0, len(cfgs))
	for name := range cfgs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, filePath := range names {
		out, err := yaml.Marshal(cfgs[filePath])
		if err == nil {
			err = ioutil.WriteFile(filePath, out, 0644)
		}
		if err != nil {
			logrus.Error(errors.Wrapf(err, "failed to write config file %s", filePath))
			return
		}
		fmt.Println(filePath)
	}
}
