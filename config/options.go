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

package config

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"dirpx.dev/dpx/apis"
	"github.com/cespare/xxhash/v2"
)

// Options are the proxy generation options. They take part in the cache key
// of every generated type, so two requests share a type only when their
// options are Equal.
//
// Options are values: build them with NewOptions and treat them as
// immutable afterwards.
type Options struct {
	// Hook decides which members are intercepted. Nil means AllMethodsHook.
	Hook apis.Hook
	// Selector filters interceptors per call. Optional.
	Selector apis.InterceptorSelector
	// Mixins are woven into the proxy. Only their interface and
	// implementation types are part of the shape; the implementation values
	// are handed to instances at construction.
	Mixins []Mixin
	// Attributes are copied onto the generated type.
	Attributes []apis.Attribute
	// BaseTypeForInterfaceProxy is the struct embedded by interface proxies.
	// Its members are forwarded but never intercepted.
	BaseTypeForInterfaceProxy reflect.Type
}

// Mixin pairs an interface with the object implementing it.
type Mixin struct {
	Interface reflect.Type
	Impl      any
}

// Option is a functional option that mutates Options during construction.
type Option func(*Options)

// DefaultOptions returns the options used when none are provided.
func DefaultOptions() Options {
	return Options{Hook: apis.AllMethodsHook{}}
}

// NewOptions constructs Options from the given options. Mixins are kept
// sorted by interface name so that equal mixin sets yield equal options.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Hook == nil {
		o.Hook = apis.AllMethodsHook{}
	}
	o.Mixins = SortMixins(o.Mixins)
	return o
}

// WithHook sets the member inspection hook.
func WithHook(h apis.Hook) Option {
	return func(o *Options) {
		o.Hook = h
	}
}

// WithSelector sets the interceptor selector.
func WithSelector(s apis.InterceptorSelector) Option {
	return func(o *Options) {
		o.Selector = s
	}
}

// WithMixin adds impl as the implementation of iface.
func WithMixin(iface reflect.Type, impl any) Option {
	return func(o *Options) {
		o.Mixins = append(o.Mixins, Mixin{Interface: iface, Impl: impl})
	}
}

// WithAttributes appends attributes copied onto generated types.
func WithAttributes(attrs ...apis.Attribute) Option {
	return func(o *Options) {
		o.Attributes = append(o.Attributes, attrs...)
	}
}

// WithBaseTypeForInterfaceProxy sets the struct embedded by interface proxies.
func WithBaseTypeForInterfaceProxy(t reflect.Type) Option {
	return func(o *Options) {
		o.BaseTypeForInterfaceProxy = t
	}
}

// SortMixins returns a copy of mixins ordered by interface name.
func SortMixins(mixins []Mixin) []Mixin {
	if len(mixins) == 0 {
		return nil
	}
	out := slices.Clone(mixins)
	slices.SortStableFunc(out, func(a, b Mixin) int {
		return strings.Compare(typeString(a.Interface), typeString(b.Interface))
	})
	return out
}

// HookOrDefault returns the configured hook or AllMethodsHook.
func (o Options) HookOrDefault() apis.Hook {
	if o.Hook == nil {
		return apis.AllMethodsHook{}
	}
	return o.Hook
}

// MixinInterfaces returns the mixin interfaces in constructor order.
func (o Options) MixinInterfaces() []reflect.Type {
	out := make([]reflect.Type, 0, len(o.Mixins))
	for _, m := range SortMixins(o.Mixins) {
		out = append(out, m.Interface)
	}
	return out
}

// MixinFor returns the mixin implementing iface.
func (o Options) MixinFor(iface reflect.Type) (Mixin, bool) {
	for _, m := range o.Mixins {
		if m.Interface == iface {
			return m, true
		}
	}
	return Mixin{}, false
}

// Validate checks that the options can take part in a cache key and that the
// mixins are well formed.
func (o Options) Validate() error {
	if o.Hook != nil && !equatable(o.Hook) {
		return apis.Fail(apis.ErrOptionsEquality, "option", "hook", "type", reflect.TypeOf(o.Hook).String())
	}
	if o.Selector != nil && !equatable(o.Selector) {
		return apis.Fail(apis.ErrOptionsEquality, "option", "selector", "type", reflect.TypeOf(o.Selector).String())
	}
	for _, a := range o.Attributes {
		if a.Value != nil && !equatable(a.Value) {
			return apis.Fail(apis.ErrOptionsEquality, "option", "attribute", "attribute", a.Name)
		}
	}
	if bt := o.BaseTypeForInterfaceProxy; bt != nil && bt.Kind() != reflect.Struct {
		return apis.Fail(apis.ErrNotClass, "option", "base_type", "type", bt.String())
	}
	seen := make(map[reflect.Type]struct{}, len(o.Mixins))
	for _, m := range o.Mixins {
		if m.Interface == nil || m.Interface.Kind() != reflect.Interface {
			return apis.Fail(apis.ErrMixin, "interface", typeString(m.Interface))
		}
		if m.Impl == nil {
			return apis.Fail(apis.ErrMixin, "interface", m.Interface.String(), "reason", "nil implementation")
		}
		if !reflect.TypeOf(m.Impl).Implements(m.Interface) {
			return apis.Fail(apis.ErrMixin,
				"interface", m.Interface.String(),
				"impl", reflect.TypeOf(m.Impl).String(),
				"reason", "implementation does not satisfy interface")
		}
		if _, dup := seen[m.Interface]; dup {
			return apis.Fail(apis.ErrDuplicateMixin, "interface", m.Interface.String())
		}
		seen[m.Interface] = struct{}{}
	}
	return nil
}

// Equal reports whether o and other describe the same generation options.
// Both must have passed Validate.
func (o Options) Equal(other Options) bool {
	if !valueEqual(o.HookOrDefault(), other.HookOrDefault()) {
		return false
	}
	if !valueEqual(o.Selector, other.Selector) {
		return false
	}
	if o.BaseTypeForInterfaceProxy != other.BaseTypeForInterfaceProxy {
		return false
	}
	if len(o.Attributes) != len(other.Attributes) {
		return false
	}
	for i := range o.Attributes {
		if o.Attributes[i].Name != other.Attributes[i].Name ||
			!valueEqual(o.Attributes[i].Value, other.Attributes[i].Value) {
			return false
		}
	}
	a, b := SortMixins(o.Mixins), SortMixins(other.Mixins)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Interface != b[i].Interface || reflect.TypeOf(a[i].Impl) != reflect.TypeOf(b[i].Impl) {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal.
func (o Options) Hash() uint64 {
	d := xxhash.New()
	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	writeHash := func(h uint64) {
		var b [8]byte
		for i := range b {
			b[i] = byte(h >> (8 * i))
		}
		_, _ = d.Write(b[:])
	}

	writeHash(valueHash(o.HookOrDefault()))
	writeHash(valueHash(o.Selector))
	write(typeString(o.BaseTypeForInterfaceProxy))
	for _, a := range o.Attributes {
		write(a.Name)
		writeHash(valueHash(a.Value))
	}
	for _, m := range SortMixins(o.Mixins) {
		write(typeString(m.Interface))
		write(typeString(reflect.TypeOf(m.Impl)))
	}
	return d.Sum64()
}

// equatable reports whether v provides value equality. Interface fields
// are checked by their dynamic contents, so a struct holding a slice in an
// interface field is rejected.
func equatable(v any) bool {
	if _, ok := v.(apis.Equaler); ok {
		return true
	}
	return reflect.ValueOf(v).Comparable()
}

func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ea, ok := a.(apis.Equaler); ok {
		return ea.Equal(b)
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.ValueOf(a).Comparable() || !reflect.ValueOf(b).Comparable() {
		return false
	}
	return a == b
}

// valueHash hashes comparable values by dynamic type and Go-syntax
// rendering, so that distinct values of one type hash apart.
func valueHash(v any) uint64 {
	if v == nil {
		return 0
	}
	if e, ok := v.(apis.Equaler); ok {
		return e.Hash()
	}
	return xxhash.Sum64String(fmt.Sprintf("%s|%#v", typeString(reflect.TypeOf(v)), v))
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if p := t.PkgPath(); p != "" {
		return p + "." + t.Name()
	}
	return t.String()
}
