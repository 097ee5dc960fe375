// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package insconfig

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nested struct {
	URL      string
	Interval time.Duration
}

type testConfig struct {
	Name   string
	Limit  int
	Nested nested
	Tags   []string
}

func defaults() *testConfig {
	return &testConfig{
		Name:   "default",
		Limit:  10,
		Nested: nested{URL: "postgres://localhost", Interval: time.Second},
		Tags:   []string{"a"},
	}
}

func TestLoadFile(t *testing.T) {
	params := Params{EnvPrefix: "insconfigtest"}

	t.Run("defaults_only", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, LoadFile(params, "", cfg))
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("file_overrides", func(t *testing.T) {
		dir, err := ioutil.TempDir("", "insconfig")
		require.NoError(t, err)
		defer os.RemoveAll(dir)
		path := filepath.Join(dir, "test.yaml")
		content := "name: fromfile\nnested:\n  interval: 5s\n"
		require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))

		cfg := defaults()
		require.NoError(t, LoadFile(params, path, cfg))
		assert.Equal(t, "fromfile", cfg.Name)
		assert.Equal(t, 5*time.Second, cfg.Nested.Interval)
		assert.Equal(t, "postgres://localhost", cfg.Nested.URL)
		assert.Equal(t, 10, cfg.Limit)
	})

	t.Run("env_overrides", func(t *testing.T) {
		require.NoError(t, os.Setenv("INSCONFIGTEST_NESTED_URL", "postgres://remote"))
		defer os.Unsetenv("INSCONFIGTEST_NESTED_URL")

		cfg := defaults()
		require.NoError(t, LoadFile(params, "", cfg))
		assert.Equal(t, "postgres://remote", cfg.Nested.URL)
	})

	t.Run("missing_file", func(t *testing.T) {
		cfg := defaults()
		require.Error(t, LoadFile(params, "/nonexistent/config.yaml", cfg))
	})

	t.Run("no_prefix", func(t *testing.T) {
		require.Error(t, LoadFile(Params{}, "", defaults()))
	})
}
