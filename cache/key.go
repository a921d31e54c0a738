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

// Package cache holds generated proxy types keyed by their shape.
package cache

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
)

// Key is the shape of a proxy request: kind, proxied type, the set of
// additional interfaces and the generation options. Keys are immutable.
type Key struct {
	kind       apis.Kind
	base       reflect.Type
	target     reflect.Type
	interfaces []reflect.Type
	options    config.Options
	hash       uint64
}

// NewKey builds the key of a request. Interfaces are compared as a set;
// duplicates and nil entries are dropped. The options must provide value
// equality.
func NewKey(kind apis.Kind, base reflect.Type, interfaces []reflect.Type, opts config.Options) (Key, error) {
	if err := opts.Validate(); err != nil {
		return Key{}, err
	}
	set := make([]reflect.Type, 0, len(interfaces))
	for _, it := range interfaces {
		if it != nil && !slices.Contains(set, it) {
			set = append(set, it)
		}
	}
	slices.SortFunc(set, func(a, b reflect.Type) int {
		return strings.Compare(typeString(a), typeString(b))
	})
	opts.Mixins = config.SortMixins(opts.Mixins)
	k := Key{kind: kind, base: base, interfaces: set, options: opts}
	k.hash = k.computeHash()
	return k, nil
}

// WithTarget returns a copy of k bound to the concrete target type of an
// interface proxy.
func (k Key) WithTarget(t reflect.Type) Key {
	k.target = t
	k.hash = k.computeHash()
	return k
}

// Kind returns the proxy kind.
func (k Key) Kind() apis.Kind { return k.kind }

// Base returns the proxied class or interface.
func (k Key) Base() reflect.Type { return k.base }

// Target returns the bound target type, or nil.
func (k Key) Target() reflect.Type { return k.target }

// Interfaces returns the additional interfaces ordered by name.
func (k Key) Interfaces() []reflect.Type { return slices.Clone(k.interfaces) }

// Options returns the generation options.
func (k Key) Options() config.Options { return k.options }

// Hash returns the precomputed hash, consistent with Equal.
func (k Key) Hash() uint64 { return k.hash }

// Equal reports whether k and o describe the same shape.
func (k Key) Equal(o Key) bool {
	return k.hash == o.hash &&
		k.kind == o.kind &&
		k.base == o.base &&
		k.target == o.target &&
		sameSet(k.interfaces, o.interfaces) &&
		k.options.Equal(o.options)
}

// sameSet compares duplicate-free interface lists regardless of order.
// Sorting by name leaves distinct interfaces sharing a name in input order.
func sameSet(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for _, t := range a {
		if !slices.Contains(b, t) {
			return false
		}
	}
	return true
}

func (k Key) computeHash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(k.kind.String())
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(k.subject())
	for _, it := range k.interfaces {
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(typeString(it))
	}
	_, _ = d.WriteString(fmt.Sprintf("|%016x", k.options.Hash()))
	return d.Sum64()
}

// Descriptor renders k as stable text, used to persist shape mappings.
func (k Key) Descriptor() string {
	names := make([]string, len(k.interfaces))
	for i, it := range k.interfaces {
		names[i] = typeString(it)
	}
	return fmt.Sprintf("%s|%s|%s|%016x", k.kind, k.subject(), strings.Join(names, ","), k.options.Hash())
}

// subject renders the proxied type and, when bound, its target type.
func (k Key) subject() string {
	if k.target == nil {
		return typeString(k.base)
	}
	return typeString(k.base) + "@" + typeString(k.target)
}

// String returns the descriptor.
func (k Key) String() string { return k.Descriptor() }

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if p := t.PkgPath(); p != "" {
		return p + "." + t.Name()
	}
	return t.String()
}
