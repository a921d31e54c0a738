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

// Package builder assembles the naming chain generators name types with.
package builder

import (
	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/registry"
	"dirpx.dev/dpx/resolver"
	"dirpx.dev/dpx/strategy"
)

// Option configures a builder.
type Option func(*builder)

// WithMemoSize bounds the memo of the reflective fallback strategy.
func WithMemoSize(n int) Option {
	return func(b *builder) { b.memo = n }
}

// WithStrategies inserts strategies between registry lookups and the
// reflective fallback, in the given order.
func WithStrategies(s ...apis.Strategy) Option {
	return func(b *builder) { b.extra = append(b.extra, s...) }
}

type builder struct {
	memo  int
	extra []apis.Strategy
}

// New creates a builder whose resolvers try, in order, self-naming types,
// the registry, extra strategies and finally reflection.
func New(opts ...Option) apis.Builder {
	b := &builder{memo: strategy.DefaultMemoSize}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildRegistry creates a registry for cfg seeded with the entries of
// prev. Entries that no longer normalize under cfg are dropped.
func (b *builder) BuildRegistry(cfg apis.NameConfig, prev apis.Registry, _ any) apis.Registry {
	reg := registry.New(cfg)
	if prev == nil {
		return reg
	}
	for _, e := range prev.Entries() {
		_ = reg.Register(e.Type, e.Name)
	}
	return reg
}

// BuildResolver creates the naming chain over reg. Resolvers carry no
// state worth migrating, so prev is ignored.
func (b *builder) BuildResolver(_ apis.NameConfig, reg apis.Registry, _ apis.Resolver, _ any) apis.Resolver {
	chain := make([]apis.Strategy, 0, 3+len(b.extra))
	chain = append(chain, strategy.NewNamerStrategy())
	if reg != nil {
		chain = append(chain, strategy.NewRegistryStrategy(reg))
	}
	chain = append(chain, b.extra...)
	chain = append(chain, strategy.NewReflectStrategySize(b.memo))
	return resolver.New(chain...)
}
