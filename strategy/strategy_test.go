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

package strategy_test

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/registry"
	"dirpx.dev/dpx/strategy"
)

type Repository interface {
	Find(id string) (string, error)
}

type Account struct{}

type Box[T any] struct{ v T }

type billing struct{}

func (billing) EntityName() string { return "acme.billing" }

type ledger struct{}

func (*ledger) EntityName() string { return "acme.ledger" }

type code string

func (*code) EntityName() string { return "acme.code" }

func unqualified() apis.NameConfig { return config.DefaultNameConfig() }

func qualified() apis.NameConfig {
	return config.NewNameConfig(config.WithQualified(true))
}

func TestReflectStrategy_Names(t *testing.T) {
	s := strategy.NewReflectStrategy()
	tests := []struct {
		name string
		t    reflect.Type
		cfg  apis.NameConfig
		want string
	}{
		{name: "struct", t: reflect.TypeFor[Account](), cfg: unqualified(), want: "strategy_test.Account"},
		{name: "pointer to class", t: reflect.TypeFor[*Account](), cfg: unqualified(), want: "strategy_test.Account"},
		{name: "interface", t: reflect.TypeFor[Repository](), cfg: unqualified(), want: "strategy_test.Repository"},
		{name: "qualified", t: reflect.TypeFor[Account](), cfg: qualified(), want: "dirpx.dev/dpx/strategy_test.Account"},
		{name: "generic unqualified", t: reflect.TypeFor[Box[int]](), cfg: unqualified(), want: "strategy_test.Box"},
		{name: "generic qualified", t: reflect.TypeFor[Box[int]](), cfg: qualified(), want: "dirpx.dev/dpx/strategy_test.Box[int]"},
		{name: "slice of class", t: reflect.TypeFor[[]*Account](), cfg: unqualified(), want: "strategy_test.Account"},
		{name: "builtin", t: reflect.TypeFor[int](), cfg: unqualified(), want: "int"},
		{name: "anonymous func", t: reflect.TypeFor[func()](), cfg: unqualified(), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.TryResolveType(tt.t, tt.cfg)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReflectStrategy_HiddenBuiltins(t *testing.T) {
	s := strategy.NewReflectStrategy()
	cfg := config.NewNameConfig(config.WithIncludeBuiltins(false))

	got, ok := s.TryResolve(42, cfg)
	require.True(t, ok)
	assert.Empty(t, got)

	got, ok = s.TryResolve(Account{}, cfg)
	require.True(t, ok)
	assert.Equal(t, "strategy_test.Account", got)
}

func TestReflectStrategy_GenericInstantiationsDiffer(t *testing.T) {
	s := strategy.NewReflectStrategySize(2)
	a, _ := s.TryResolveType(reflect.TypeFor[Box[int]](), qualified())
	b, _ := s.TryResolveType(reflect.TypeFor[Box[string]](), qualified())
	assert.NotEqual(t, a, b)

	// Evicted entries are recomputed identically.
	c, _ := s.TryResolveType(reflect.TypeFor[Account](), qualified())
	again, _ := s.TryResolveType(reflect.TypeFor[Box[int]](), qualified())
	assert.Equal(t, a, again)
	assert.Equal(t, "dirpx.dev/dpx/strategy_test.Account", c)
}

func TestReflectStrategy_Nil(t *testing.T) {
	s := strategy.NewReflectStrategy()
	_, ok := s.TryResolve(nil, unqualified())
	assert.False(t, ok)
	_, ok = s.TryResolveType(nil, unqualified())
	assert.False(t, ok)
}

func TestReflectStrategy_Concurrent(t *testing.T) {
	s := strategy.NewReflectStrategySize(4)
	types := []reflect.Type{
		reflect.TypeFor[Account](),
		reflect.TypeFor[*Account](),
		reflect.TypeFor[Repository](),
		reflect.TypeFor[Box[int]](),
		reflect.TypeFor[Box[string]](),
		reflect.TypeFor[[]Account](),
	}
	want := make([]string, len(types))
	for i, typ := range types {
		want[i], _ = s.TryResolveType(typ, qualified())
	}

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := i % len(types)
				got, _ := s.TryResolveType(types[k], qualified())
				assert.Equal(t, want[k], got)
			}
		}()
	}
	wg.Wait()
}

func TestNamerStrategy(t *testing.T) {
	s := strategy.NewNamerStrategy()
	tests := []struct {
		name    string
		t       reflect.Type
		want    string
		handled bool
	}{
		{name: "value receiver", t: reflect.TypeFor[billing](), want: "acme.billing", handled: true},
		{name: "value receiver via pointer", t: reflect.TypeFor[*billing](), want: "acme.billing", handled: true},
		{name: "pointer receiver class", t: reflect.TypeFor[*ledger](), want: "acme.ledger", handled: true},
		{name: "pointer receiver not on value", t: reflect.TypeFor[ledger]()},
		{name: "pointer to non struct", t: reflect.TypeFor[*code]()},
		{name: "interface", t: reflect.TypeFor[apis.Namer]()},
		{name: "plain", t: reflect.TypeFor[Account]()},
		{name: "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.TryResolveType(tt.t, unqualified())
			assert.Equal(t, tt.handled, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	got, ok := s.TryResolve(&ledger{}, unqualified())
	require.True(t, ok)
	assert.Equal(t, "acme.ledger", got)
	_, ok = s.TryResolve(Account{}, unqualified())
	assert.False(t, ok)
}

func TestRegistryStrategy(t *testing.T) {
	cfg := qualified()
	reg := registry.New(cfg)
	require.NoError(t, reg.Register(reflect.TypeFor[Account](), "acme.Account"))
	s := strategy.NewRegistryStrategy(reg)

	got, ok := s.TryResolveType(reflect.TypeFor[*Account](), cfg)
	require.True(t, ok)
	assert.Equal(t, "acme.Account", got)

	got, ok = s.TryResolve(Account{}, cfg)
	require.True(t, ok)
	assert.Equal(t, "acme.Account", got)

	_, ok = s.TryResolveType(reflect.TypeFor[Repository](), cfg)
	assert.False(t, ok)

	_, ok = strategy.NewRegistryStrategy(nil).TryResolveType(reflect.TypeFor[Account](), cfg)
	assert.False(t, ok)
}
