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

package invocation

import (
	"reflect"
	"sync"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/metrics"
)

type resolveKey struct {
	name   string
	sig    reflect.Type
	target reflect.Type
}

type resolved struct {
	m  apis.Method
	ok bool
}

// TargetResolver finds the member of a dynamic target type implementing a
// proxied method. Results, including misses, are cached.
type TargetResolver struct {
	intro   apis.Introspector
	metrics *metrics.Metrics

	mu    sync.RWMutex
	cache map[resolveKey]resolved
}

// NewTargetResolver returns a resolver backed by intro.
func NewTargetResolver(intro apis.Introspector, m *metrics.Metrics) *TargetResolver {
	return &TargetResolver{intro: intro, metrics: m, cache: make(map[resolveKey]resolved)}
}

// Resolve returns the implementation of m on target.
func (r *TargetResolver) Resolve(m apis.Method, target reflect.Type) (apis.Method, bool) {
	key := resolveKey{name: m.Name, sig: m.Type, target: target}

	r.mu.RLock()
	res, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		r.metrics.Hit(metrics.CacheOverride)
		return res.m, res.ok
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.cache[key]; ok {
		r.metrics.Hit(metrics.CacheOverride)
		return res.m, res.ok
	}
	r.metrics.Miss(metrics.CacheOverride)
	impl, found := r.intro.ResolveOverride(m, target)
	r.cache[key] = resolved{m: impl, ok: found}
	return impl, found
}
