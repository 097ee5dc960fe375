// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package configuration

import (
	"os"
	"regexp"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/insolar/settlement/configuration/insconfig"
)

const EnvPrefix = "settlement"

// Load reads --config and SETTLEMENT_* overrides on top of the defaults.
func Load(log logrus.FieldLogger) (*Settlement, error) {
	printWorkingDir(log)
	cfg := Settlement{}.Default()
	err := insconfig.Load(insconfig.Params{EnvPrefix: EnvPrefix}, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load settlement config")
	}
	PrintConfig(log, cfg)
	return cfg, nil
}

func LoadMigrate(log logrus.FieldLogger, params insconfig.Params) (*Migrate, error) {
	cfg := Migrate{}.Default()
	if err := insconfig.Load(params, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load migrate config")
	}
	PrintConfig(log, &Settlement{Log: cfg.Log, DB: cfg.DB})
	return cfg, nil
}

func printWorkingDir(log logrus.FieldLogger) {
	wd, _ := os.Getwd()
	log.Infof("Working dir: %s", wd)
}

func PrintConfig(log logrus.FieldLogger, c *Settlement) {
	out, err := yaml.Marshal(cleanSecrets(c))
	if err != nil {
		log.Error(errors.Wrapf(err, "failed to marshal config structure"))
		return
	}
	log.Infof("Loaded configuration: \n %s \n", string(out))
}

func cleanSecrets(c *Settlement) *Settlement {
	cc := *c
	cc.DB.URL = replacePassword(cc.DB.URL)
	return &cc
}

func replacePassword(url string) string {
	re := regexp.MustCompile(`^(?P<start>.*)(:(?P<pass>[^@\/:?]+)@)(?P<end>.*)$`)
	result := []byte{}
	if re.MatchString(url) {
		for _, submatches := range re.FindAllStringSubmatchIndex(url, -1) {
			result = re.ExpandString(result, `$start:<masked>@$end`, url, submatches)
		}
		return string(result)
	}
	return url
}
