// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

// Package insconfig fills a config struct from its defaults, an optional yaml
// file given by --config and environment overrides.
package insconfig

import (
	"bytes"
	goflag "flag"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

type Params struct {
	EnvPrefix string
	// For go flags compatibility
	GoFlags *goflag.FlagSet
	// For spf13/pflags compatibility
	PFlags     *flag.FlagSet
	ViperHooks []mapstructure.DecodeHookFunc
}

// Load parses command line flags and fills target, which must be a pointer to
// a struct already holding the defaults.
func Load(params Params, target interface{}) error {
	if params.EnvPrefix == "" {
		return errors.New("EnvPrefix should be defined")
	}
	if params.GoFlags != nil {
		flag.CommandLine.AddGoFlagSet(params.GoFlags)
	}
	if params.PFlags != nil {
		flag.CommandLine.AddFlagSet(params.PFlags)
	}
	configPath := flag.String("config", "", "path to config")
	flag.Parse()

	return LoadFile(params, *configPath, target)
}

// LoadFile fills target from path (skipped when empty) and the environment.
func LoadFile(params Params, path string, target interface{}) error {
	if params.EnvPrefix == "" {
		return errors.New("EnvPrefix should be defined")
	}
	v := viper.New()
	v.SetConfigType("yaml")

	defaults, err := yaml.Marshal(target)
	if err != nil {
		return errors.Wrap(err, "failed to marshal default config")
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return errors.Wrap(err, "failed to read default config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(params.EnvPrefix)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return errors.Wrapf(err, "failed to load config")
		}
	}

	hooks := append(params.ViperHooks, mapstructure.StringToTimeDurationHookFunc(), mapstructure.StringToSliceHookFunc(","))
	err = v.Unmarshal(target, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(hooks...)))
	if err != nil {
		return errors.Wrapf(err, "failed to unmarshal config file into configuration structure")
	}
	return nil
}
