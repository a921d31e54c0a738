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

// Package resolver runs naming strategies as a first-match chain.
package resolver

import (
	"reflect"
	"slices"

	"dirpx.dev/dpx/apis"
)

// Chain asks its strategies in order and returns the first handled name.
// It is safe for concurrent use when its strategies are.
type Chain []apis.Strategy

var _ apis.Resolver = Chain(nil)

// New creates a Chain over the non-nil strategies.
func New(strategies ...apis.Strategy) Chain {
	return slices.DeleteFunc(slices.Clone(strategies), func(s apis.Strategy) bool { return s == nil })
}

// Resolve names v, or returns "" when no strategy handles it.
func (c Chain) Resolve(v any, cfg apis.NameConfig) string {
	for _, s := range c {
		if name, ok := s.TryResolve(v, cfg); ok {
			return name
		}
	}
	return ""
}

// ResolveType names t, or returns "" when no strategy handles it.
func (c Chain) ResolveType(t reflect.Type, cfg apis.NameConfig) string {
	for _, s := range c {
		if name, ok := s.TryResolveType(t, cfg); ok {
			return name
		}
	}
	return ""
}
