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

package proxy

import (
	"reflect"
	"slices"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/cache"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/contrib"
	"dirpx.dev/dpx/emit"
)

// ProxyType is a generated proxy type. It is immutable and shared by every
// request of the same shape.
type ProxyType struct {
	gen    *Generator
	key    cache.Key
	ct     emit.ConcreteType
	params []contrib.CtorParam
	class  reflect.Type
	ser    *contrib.Serialization
}

// Args are the construction arguments of a proxy instance.
type Args struct {
	// Interceptors form the chain, fixed for the life of the instance.
	Interceptors []apis.Interceptor
	// Target receives forwarded calls. Required by target kinds except
	// KindInterfaceWithTargetInterface.
	Target any
	// Base is the initial state of the embedded class, as T or *T. The
	// zero value is used when nil.
	Base any
	// Mixins override the mixin implementations of the options.
	Mixins []config.Mixin
}

// Name returns the generated type name.
func (t *ProxyType) Name() string { return t.ct.Name() }

// Kind returns the proxy kind.
func (t *ProxyType) Kind() apis.Kind { return t.key.Kind() }

// Key returns the shape the type was generated for.
func (t *ProxyType) Key() cache.Key { return t.key }

// Options returns the generation options.
func (t *ProxyType) Options() config.Options { return t.key.Options() }

// Concrete returns the emitted type.
func (t *ProxyType) Concrete() emit.ConcreteType { return t.ct }

// Proxied returns the proxied class or interface.
func (t *ProxyType) Proxied() reflect.Type { return t.class }

// Implements reports whether the generated type routes every member of iface.
func (t *ProxyType) Implements(iface reflect.Type) bool { return emit.Implements(t.ct, iface) }

// Serializable reports whether instances can be serialized.
func (t *ProxyType) Serializable() bool { return t.ser != nil }

// CtorParams returns the constructor parameters in order.
func (t *ProxyType) CtorParams() []contrib.CtorParam { return slices.Clone(t.params) }

// New creates an instance.
func (t *ProxyType) New(args Args) (*Proxy, error) {
	in, err := t.ctorArgs(args)
	if err != nil {
		return nil, err
	}
	inst, err := t.ct.New("", in...)
	if err != nil {
		return nil, err
	}
	return &Proxy{typ: t, inst: inst}, nil
}

func (t *ProxyType) ctorArgs(args Args) ([]reflect.Value, error) {
	out := make([]reflect.Value, 0, len(t.params))
	for _, p := range t.params {
		var (
			v   reflect.Value
			err error
		)
		switch {
		case p.Field == apis.FieldInterceptors:
			v = reflect.ValueOf(slices.Clone(args.Interceptors))
		case p.Field == apis.FieldBase:
			v, err = baseValue(p.Type, args.Base)
		case p.Field == apis.FieldTarget:
			v, err = t.targetValue(p.Type, args.Target)
		default:
			v, err = t.mixinValue(p, args.Mixins)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func baseValue(t reflect.Type, base any) (reflect.Value, error) {
	if base == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(base)
	switch {
	case v.Type() == t:
		return v, nil
	case v.Type() == reflect.PointerTo(t) && !v.IsNil():
		return v.Elem(), nil
	}
	return reflect.Value{}, apis.Fail(apis.ErrArguments, "field", apis.FieldBase, "have", v.Type().String(), "want", t.String())
}

func (t *ProxyType) targetValue(ft reflect.Type, target any) (reflect.Value, error) {
	if target == nil {
		if t.Kind() == apis.KindInterfaceWithTargetInterface {
			return reflect.Zero(ft), nil
		}
		return reflect.Value{}, apis.Fail(apis.ErrNoTarget, "type", t.Name())
	}
	v := reflect.ValueOf(target)
	if !v.Type().AssignableTo(ft) {
		return reflect.Value{}, apis.Fail(apis.ErrInvalidTarget, "type", v.Type().String(), "want", ft.String())
	}
	out := reflect.New(ft).Elem()
	out.Set(v)
	return out, nil
}

func (t *ProxyType) mixinValue(p contrib.CtorParam, overrides []config.Mixin) (reflect.Value, error) {
	var impl any
	for _, mx := range overrides {
		if mx.Interface == p.Type {
			impl = mx.Impl
		}
	}
	if impl == nil {
		if mx, ok := t.Options().MixinFor(p.Type); ok {
			impl = mx.Impl
		}
	}
	if impl == nil || !reflect.TypeOf(impl).Implements(p.Type) {
		return reflect.Value{}, apis.Fail(apis.ErrMixin, "interface", p.Type.String(), "field", p.Field)
	}
	v := reflect.New(p.Type).Elem()
	v.Set(reflect.ValueOf(impl))
	return v, nil
}
