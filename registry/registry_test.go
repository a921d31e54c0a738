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

package registry_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/registry"
	uref "dirpx.dev/dpx/utils/reflect"
)

type Account struct{}

type Ledger struct{}

type Repository interface{ Find(id string) error }

type Key string

func TestRegistry_NormalizesToNearestNamedType(t *testing.T) {
	reg := registry.New(config.DefaultNameConfig())
	require.NoError(t, reg.Register(reflect.TypeFor[*Account](), "acme.Account"))
	require.NoError(t, reg.Register(reflect.TypeFor[Account](), "acme.Account"))

	for _, typ := range []reflect.Type{
		reflect.TypeFor[Account](),
		reflect.TypeFor[*Account](),
		reflect.TypeFor[[]*Account](),
		reflect.TypeFor[map[string]Account](),
	} {
		name, ok := reg.Lookup(typ)
		require.True(t, ok, typ.String())
		assert.Equal(t, "acme.Account", name)
	}

	got, ok := reg.LookupName("acme.Account")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[Account](), got)
	assert.Equal(t, 1, reg.Count())
}

func TestRegistry_Errors(t *testing.T) {
	reg := registry.New(config.DefaultNameConfig())
	require.NoError(t, reg.Register(reflect.TypeFor[Account](), "acme.Account"))

	tests := []struct {
		name string
		t    reflect.Type
		as   string
		want error
	}{
		{name: "nil type", as: "x", want: registry.ErrNilType},
		{name: "empty name", t: reflect.TypeFor[Ledger](), want: registry.ErrEmptyName},
		{name: "type renamed", t: reflect.TypeFor[*Account](), as: "acme.Other", want: registry.ErrConflictingRegistration},
		{name: "name taken", t: reflect.TypeFor[Ledger](), as: "acme.Account", want: registry.ErrConflictingRegistration},
		{name: "unnamed", t: reflect.TypeFor[func()](), as: "acme.Func", want: uref.ErrReflectTypeNotNamed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.t, tt.as)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, apis.ErrConfiguration)
		})
	}
	assert.Equal(t, 1, reg.Count())
}

func TestRegistry_MapPreference(t *testing.T) {
	byElem := registry.New(config.NewNameConfig(config.WithMapPreferElem(true)))
	byKey := registry.New(config.NewNameConfig(config.WithMapPreferElem(false)))
	m := reflect.TypeFor[map[Key]Account]()

	require.NoError(t, byElem.Register(m, "acme.Account"))
	require.NoError(t, byKey.Register(m, "acme.Key"))

	_, ok := byElem.LookupName("acme.Account")
	assert.True(t, ok)
	got, ok := byKey.LookupName("acme.Key")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[Key](), got)
}

func TestRegistry_MaxUnwrap(t *testing.T) {
	deep := reflect.TypeFor[***Account]()

	tight := registry.New(config.NewNameConfig(config.WithMaxUnwrap(2)))
	assert.Error(t, tight.Register(deep, "acme.Account"))

	wide := registry.New(config.NewNameConfig(config.WithMaxUnwrap(4)))
	assert.NoError(t, wide.Register(deep, "acme.Account"))
}

func TestRegistry_EntriesAndReset(t *testing.T) {
	reg := registry.New(config.DefaultNameConfig())
	require.NoError(t, reg.Register(reflect.TypeFor[Repository](), "acme.Repository"))
	require.NoError(t, reg.Register(reflect.TypeFor[Ledger](), "acme.Ledger"))
	require.NoError(t, reg.Register(reflect.TypeFor[Account](), "acme.Account"))

	assert.Equal(t, []apis.Entry{
		{Type: reflect.TypeFor[Account](), Name: "acme.Account"},
		{Type: reflect.TypeFor[Ledger](), Name: "acme.Ledger"},
		{Type: reflect.TypeFor[Repository](), Name: "acme.Repository"},
	}, reg.Entries())

	reg.Reset()
	assert.Zero(t, reg.Count())
	assert.Empty(t, reg.Entries())
	_, ok := reg.Lookup(reflect.TypeFor[Account]())
	assert.False(t, ok)
	_, ok = reg.Lookup(nil)
	assert.False(t, ok)

	// Names are free again after a reset.
	require.NoError(t, reg.Register(reflect.TypeFor[Ledger](), "acme.Account"))
}

type (
	c0 struct{}
	c1 struct{}
	c2 struct{}
	c3 struct{}
	c4 struct{}
	c5 struct{}
	c6 struct{}
	c7 struct{}
)

func TestRegistry_ConcurrentRegisterAndLookup(t *testing.T) {
	reg := registry.New(config.DefaultNameConfig())
	types := []reflect.Type{
		reflect.TypeFor[c0](), reflect.TypeFor[c1](), reflect.TypeFor[c2](), reflect.TypeFor[c3](),
		reflect.TypeFor[c4](), reflect.TypeFor[c5](), reflect.TypeFor[c6](), reflect.TypeFor[c7](),
	}

	var g errgroup.Group
	for w := 0; w < 32; w++ {
		g.Go(func() error {
			for i, typ := range types {
				if err := reg.Register(reflect.PointerTo(typ), fmt.Sprintf("acme.C%d", i)); err != nil {
					return err
				}
				if name, ok := reg.Lookup(typ); !ok || name != fmt.Sprintf("acme.C%d", i) {
					return fmt.Errorf("lookup %s: got %q", typ, name)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, len(types), reg.Count())
}

func TestRegistry_ConcurrentConflictHasOneWinner(t *testing.T) {
	reg := registry.New(config.DefaultNameConfig())

	var g errgroup.Group
	results := make([]error, 16)
	for i := range results {
		g.Go(func() error {
			results[i] = reg.Register(reflect.TypeFor[Account](), fmt.Sprintf("acme.Account%d", i))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, registry.ErrConflictingRegistration)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, reg.Count())
}
