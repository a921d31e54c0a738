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

// Package registry maps proxied types to stable names and back. Proxy
// serialization and module persistence name types through it.
package registry

import (
	"reflect"
	"sort"
	"sync"

	"go.trai.ch/zerr"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	uref "dirpx.dev/dpx/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is registered.
	ErrNilType = zerr.Wrap(apis.ErrConfiguration, "dpx(registry): nil reflect.Type provided")
	// ErrEmptyName is returned when a type is registered under "".
	ErrEmptyName = zerr.Wrap(apis.ErrConfiguration, "dpx(registry): empty name provided")
	// ErrConflictingRegistration is returned when a type already has another
	// name, or a name already belongs to another type.
	ErrConflictingRegistration = zerr.Wrap(apis.ErrConfiguration, "dpx(registry): conflicting type registration")
)

// Registry is a bidirectional type/name table. Types are normalized to
// their nearest named type before use, so *T, []T and T share one entry.
type Registry struct {
	cfg apis.NameConfig

	mu     sync.RWMutex
	byType map[reflect.Type]string
	byName map[string]reflect.Type
}

var _ apis.Registry = (*Registry)(nil)

// New creates a Registry normalizing with the MaxUnwrap and MapPreferElem
// knobs of cfg.
func New(cfg apis.NameConfig) *Registry {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	return &Registry{
		cfg:    cfg,
		byType: make(map[reflect.Type]string),
		byName: make(map[string]reflect.Type),
	}
}

// Register binds the nearest named type of t to name. Repeating an
// existing binding is a no-op.
func (r *Registry) Register(t reflect.Type, name string) error {
	if t == nil {
		return ErrNilType
	}
	if name == "" {
		return apis.Fail(ErrEmptyName, "type", t.String())
	}
	base, err := uref.Normalize(t, r.cfg)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "dpx(registry): normalize"), "type", t.String())
	}

	r.mu.RLock()
	done, err := r.conflict(base, name)
	r.mu.RUnlock()
	if done {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if done, err := r.conflict(base, name); done {
		return err
	}
	r.byType[base] = name
	r.byName[name] = base
	return nil
}

// conflict reports whether (base, name) is already settled, with the
// error for a clash. Callers hold mu.
func (r *Registry) conflict(base reflect.Type, name string) (bool, error) {
	if old, ok := r.byType[base]; ok {
		if old == name {
			return true, nil
		}
		return true, apis.Fail(ErrConflictingRegistration, "type", base.String(), "name", old)
	}
	if old, ok := r.byName[name]; ok {
		return true, apis.Fail(ErrConflictingRegistration, "type", old.String(), "name", name)
	}
	return false, nil
}

// Lookup returns the name bound to the nearest named type of t.
func (r *Registry) Lookup(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	base, err := uref.Normalize(t, r.cfg)
	if err != nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byType[base]
	return name, ok
}

// LookupName returns the type bound to name.
func (r *Registry) LookupName(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Entries returns the bindings ordered by name.
func (r *Registry) Entries() []apis.Entry {
	r.mu.RLock()
	out := make([]apis.Entry, 0, len(r.byName))
	for name, t := range r.byName {
		out = append(out, apis.Entry{Type: t, Name: name})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of bindings.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Reset drops every binding.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.byType)
	clear(r.byName)
}
