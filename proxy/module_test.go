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

package proxy_test

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/proxy"
)

func TestModule_SaveLoadPinsNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.dpx")
	attr := config.WithAttributes(apis.Attribute{Name: "tier", Value: "gold"})

	src := newGenerator()
	_, err := src.CreateInterfaceProxyTypeWithoutTarget(calcType, nil, config.NewOptions(attr))
	require.NoError(t, err)
	plain, err := src.CreateInterfaceProxyTypeWithoutTarget(calcType, nil, config.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, config.DefaultNamespace+".CalcProxy_1", plain.Name())

	m, err := src.SaveModule(path)
	require.NoError(t, err)
	assert.Len(t, m.Mappings, 2)

	dst := newGenerator()
	rep, err := dst.LoadModule(path)
	require.NoError(t, err)
	assert.Equal(t, m.ID, rep.ID)
	assert.Equal(t, 2, rep.Pinned)

	again, err := dst.CreateInterfaceProxyTypeWithoutTarget(calcType, nil, config.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, plain.Name(), again.Name())

	rep, err = dst.LoadModule(path)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Adopted)
	assert.Equal(t, 1, rep.Pinned)
}

type levelHook struct {
	apis.AllMethodsHook
	Level int
}

func TestModule_SameTypeHooksRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.dpx")
	src := newGenerator()
	one, err := src.CreateInterfaceProxyTypeWithoutTarget(calcType, nil, config.NewOptions(config.WithHook(levelHook{Level: 1})))
	require.NoError(t, err)
	two, err := src.CreateInterfaceProxyTypeWithoutTarget(calcType, nil, config.NewOptions(config.WithHook(levelHook{Level: 2})))
	require.NoError(t, err)
	require.NotSame(t, one, two)

	m, err := src.SaveModule(path)
	require.NoError(t, err)
	require.Len(t, m.Mappings, 2)
	assert.NotEqual(t, m.Mappings[0].Descriptor, m.Mappings[1].Descriptor)

	dst := newGenerator()
	rep, err := dst.LoadModule(path)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Pinned)

	again, err := dst.CreateInterfaceProxyTypeWithoutTarget(calcType, nil, config.NewOptions(config.WithHook(levelHook{Level: 2})))
	require.NoError(t, err)
	assert.Equal(t, two.Name(), again.Name())
}

type sameHashHook struct {
	apis.AllMethodsHook
	ids []int
}

func (h sameHashHook) Equal(other any) bool {
	o, ok := other.(sameHashHook)
	return ok && slices.Equal(h.ids, o.ids)
}

func (sameHashHook) Hash() uint64 { return 7 }

func TestModule_LeavesOutAmbiguousDescriptors(t *testing.T) {
	g := newGenerator()
	_, err := g.CreateInterfaceProxyTypeWithoutTarget(calcType, nil, config.NewOptions(config.WithHook(sameHashHook{ids: []int{1}})))
	require.NoError(t, err)
	_, err = g.CreateInterfaceProxyTypeWithoutTarget(calcType, nil, config.NewOptions(config.WithHook(sameHashHook{ids: []int{2}})))
	require.NoError(t, err)
	plain, err := g.CreateInterfaceProxyTypeWithoutTarget(calcType, nil, config.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())

	m, err := g.Module()
	require.NoError(t, err)
	require.Len(t, m.Mappings, 1)
	assert.Equal(t, plain.Name(), m.Mappings[0].TypeName)
}

func TestModule_Path(t *testing.T) {
	g := newGenerator()
	_, err := g.SaveModule("")
	assert.ErrorIs(t, err, apis.ErrConfiguration)

	s := config.DefaultSettings()
	s.ModulePath = filepath.Join(t.TempDir(), "m.dpx")
	g = proxy.NewGenerator(proxy.WithSettings(s))
	_, err = g.SaveModule("")
	require.NoError(t, err)
	rep, err := g.LoadModule("")
	require.NoError(t, err)
	assert.Zero(t, rep.Pinned)
}
