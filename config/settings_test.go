/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettings_DefaultsForMissingKeys(t *testing.T) {
	s, err := config.ParseSettings([]byte("namespace: acme.proxies\n"))
	require.NoError(t, err)
	assert.Equal(t, "acme.proxies", s.Namespace)
	assert.Equal(t, config.DefaultInvocationNamespace, s.InvocationNamespace)
	assert.Equal(t, config.DefaultLogLevel, s.LogLevel)
	assert.Equal(t, config.DefaultMemoSize, s.MemoSize)
	assert.Equal(t, config.DefaultMetricsNamespace, s.MetricsNamespace)
}

func TestParseSettings_Naming(t *testing.T) {
	s, err := config.ParseSettings([]byte(`
naming:
  include_builtins: false
  max_unwrap: 2
  map_prefer_elem: false
`))
	require.NoError(t, err)
	nc := s.NameConfig()
	assert.False(t, nc.IncludeBuiltins)
	assert.Equal(t, 2, nc.MaxUnwrap)
	assert.False(t, nc.MapPreferElem)

	assert.Equal(t, config.DefaultNameConfig(), config.DefaultSettings().NameConfig())
}

func TestParseSettings_QualifiedNaming(t *testing.T) {
	s, err := config.ParseSettings([]byte("naming:\n  qualified: true\n  max_unwrap: -4\n"))
	require.NoError(t, err)
	nc := s.NameConfig()
	assert.True(t, nc.Qualified)
	assert.Equal(t, config.DefaultMaxUnwrap, nc.MaxUnwrap)
	assert.True(t, nc.IncludeBuiltins)
}

func TestNewNameConfig(t *testing.T) {
	def := config.DefaultNameConfig()
	require.Equal(t, apis.NameConfig{IncludeBuiltins: true, MaxUnwrap: 8, MapPreferElem: true}, def)

	tests := []struct {
		name string
		opts []config.NameOption
		want func(apis.NameConfig) apis.NameConfig
	}{
		{"none", nil, func(c apis.NameConfig) apis.NameConfig { return c }},
		{"hide builtins", []config.NameOption{config.WithIncludeBuiltins(false)}, func(c apis.NameConfig) apis.NameConfig {
			c.IncludeBuiltins = false
			return c
		}},
		{"tight unwrap", []config.NameOption{config.WithMaxUnwrap(3)}, func(c apis.NameConfig) apis.NameConfig {
			c.MaxUnwrap = 3
			return c
		}},
		{"negative unwrap resets", []config.NameOption{config.WithMaxUnwrap(3), config.WithMaxUnwrap(-1)}, func(c apis.NameConfig) apis.NameConfig {
			return c
		}},
		{"registry names", []config.NameOption{config.WithQualified(true), config.WithMapPreferElem(false)}, func(c apis.NameConfig) apis.NameConfig {
			c.Qualified = true
			c.MapPreferElem = false
			return c
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want(def), config.NewNameConfig(tt.opts...))
		})
	}
}

func TestParseSettings_Invalid(t *testing.T) {
	_, err := config.ParseSettings([]byte("namespace: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSettingsParse.Error())
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dpx.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nmemo_size: 16\n"), 0o600))

	s, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 16, s.MemoSize)
	assert.Equal(t, logrus.DebugLevel, s.Logger().GetLevel())

	_, err = config.LoadSettings(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSettingsRead.Error())
}

func TestSettingsLogger_UnknownLevelFallsBack(t *testing.T) {
	s := config.DefaultSettings()
	s.LogLevel = "chatty"
	assert.Equal(t, logrus.WarnLevel, s.Logger().GetLevel())
}
