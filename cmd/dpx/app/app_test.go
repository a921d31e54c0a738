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

package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/dpx/cmd/dpx/app"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/store"
)

func writeModule(t *testing.T) string {
	t.Helper()
	m, err := store.NewModule([]store.Mapping{
		{Descriptor: "class|a.Account||0000000000000001", TypeName: "dpx.proxies.AccountProxy", Kind: "class"},
	})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "proxies.dpx")
	require.NoError(t, store.Save(path, m))
	return path
}

func TestApp_VerifyAndInspect(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	a := app.New(config.DefaultSettings(), log)
	path := writeModule(t)

	n, err := a.Verify(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m, err := a.Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "dpx.proxies.AccountProxy", m.Mappings[0].TypeName)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "module loaded", hook.LastEntry().Message)
}

func TestApp_ModulePath(t *testing.T) {
	log, _ := test.NewNullLogger()

	a := app.New(config.DefaultSettings(), log)
	assert.Same(t, log, a.Logger())
	_, err := a.ModulePath("")
	require.Error(t, err)

	s := config.DefaultSettings()
	s.ModulePath = "/var/lib/dpx/proxies.dpx"
	a = app.New(s, log)
	p, err := a.ModulePath("")
	require.NoError(t, err)
	assert.Equal(t, s.ModulePath, p)

	p, err = a.ModulePath("other.dpx")
	require.NoError(t, err)
	assert.Equal(t, "other.dpx", p)
}

func TestApp_VerifyCorrupt(t *testing.T) {
	log, _ := test.NewNullLogger()
	a := app.New(config.DefaultSettings(), log)

	path := filepath.Join(t.TempDir(), "broken.dpx")
	require.NoError(t, os.WriteFile(path, []byte("not a module"), 0o600))

	_, err := a.Verify(path)
	require.Error(t, err)
}

func TestNodes_BuildApp(t *testing.T) {
	t.Setenv(app.EnvConfig, "")

	a, _, err := graft.ExecuteFor[*app.App](context.Background())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, config.DefaultSettings().Namespace, a.Settings().Namespace)
}

func TestLoadSettings_FromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dpx.yaml")
	require.NoError(t, os.WriteFile(path, []byte("namespace: acme.proxies\nmodule_path: /tmp/acme.dpx\n"), 0o600))
	t.Setenv(app.EnvConfig, path)

	s, err := app.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "acme.proxies", s.Namespace)
	assert.Equal(t, "/tmp/acme.dpx", s.ModulePath)

	t.Setenv(app.EnvConfig, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = app.LoadSettings()
	require.Error(t, err)
}
