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

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/emit"
)

// Proxy is an instance of a generated proxy type.
type Proxy struct {
	typ  *ProxyType
	inst emit.Instance
}

var _ apis.ProxyTargetAccessor = (*Proxy)(nil)

// Type returns the generated type of p.
func (p *Proxy) Type() *ProxyType { return p.typ }

// Instance returns the underlying emitted instance.
func (p *Proxy) Instance() emit.Instance { return p.inst }

// Call invokes member name. Nil arguments stand for the zero value of
// their parameter; trailing arguments of a variadic member are packed.
func (p *Proxy) Call(name string, args ...any) ([]any, error) {
	mi, ok := p.typ.ct.Method(name)
	if !ok {
		return nil, apis.Fail(apis.ErrNoMethod, "method", name, "type", p.typ.Name())
	}
	in, err := callArgs(mi.Type, args)
	if err != nil {
		return nil, apis.Fail(apis.ErrArguments, "method", name, "reason", err.Error())
	}
	out, err := p.inst.Invoke(name, in...)
	if err != nil {
		return nil, err
	}
	res := make([]any, len(out))
	for i, v := range out {
		res[i] = v.Interface()
	}
	return res, nil
}

func callArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	n := ft.NumIn()
	if ft.IsVariadic() && !(len(args) == n && (args[n-1] == nil || reflect.TypeOf(args[n-1]).AssignableTo(ft.In(n-1)))) {
		if len(args) < n-1 {
			return nil, apis.Fail(apis.ErrArguments, "have", len(args), "want", n-1)
		}
		rest := reflect.MakeSlice(ft.In(n-1), 0, len(args)-n+1)
		elem := ft.In(n - 1).Elem()
		for _, a := range args[n-1:] {
			v, err := argValue(elem, a)
			if err != nil {
				return nil, err
			}
			rest = reflect.Append(rest, v)
		}
		packed := append(append([]any(nil), args[:n-1]...), rest.Interface())
		return callArgs(ft, packed)
	}
	if len(args) != n {
		return nil, apis.Fail(apis.ErrArguments, "have", len(args), "want", n)
	}
	in := make([]reflect.Value, n)
	for i, a := range args {
		v, err := argValue(ft.In(i), a)
		if err != nil {
			return nil, err
		}
		in[i] = v
	}
	return in, nil
}

func argValue(t reflect.Type, a any) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(a)
	switch {
	case v.Type().AssignableTo(t):
	case v.Type().ConvertibleTo(t) && v.Kind() == t.Kind():
		v = v.Convert(t)
	default:
		return reflect.Value{}, apis.Fail(apis.ErrArguments, "have", v.Type().String(), "want", t.String())
	}
	out := reflect.New(t).Elem()
	out.Set(v)
	return out, nil
}

// Bind points the func variable fnPtr at member name. Failures of members
// without an error result panic with the failure.
func (p *Proxy) Bind(name string, fnPtr any) error {
	mi, ok := p.typ.ct.Method(name)
	if !ok {
		return apis.Fail(apis.ErrNoMethod, "method", name, "type", p.typ.Name())
	}
	pv := reflect.ValueOf(fnPtr)
	if pv.Kind() != reflect.Pointer || pv.IsNil() || pv.Elem().Type() != mi.Type {
		return apis.Fail(apis.ErrArguments, "method", name, "want", "*"+mi.Type.String())
	}
	pv.Elem().Set(reflect.MakeFunc(mi.Type, func(in []reflect.Value) []reflect.Value {
		out, err := p.inst.Invoke(name, in...)
		if err != nil {
			panic(err)
		}
		return out
	}))
	return nil
}

// DynProxyGetTarget returns the target, p itself for class proxies, or
// nil.
func (p *Proxy) DynProxyGetTarget() any {
	out, err := p.inst.Invoke(apis.MethodGetTarget)
	if err != nil || len(out) == 0 {
		return nil
	}
	v := out[0].Interface()
	if inst, ok := v.(emit.Instance); ok && inst == p.inst {
		return p
	}
	return v
}

// GetInterceptors returns the interceptor chain.
func (p *Proxy) GetInterceptors() []apis.Interceptor {
	out, err := p.inst.Invoke(apis.MethodGetInterceptors)
	if err != nil || len(out) == 0 {
		return nil
	}
	ics, _ := out[0].Interface().([]apis.Interceptor)
	return ics
}

// SetTarget swaps the target of proxies whose target can change.
func (p *Proxy) SetTarget(target any) error {
	if !p.typ.Kind().CanChangeTarget() {
		return apis.Fail(apis.ErrNotSupported, "type", p.typ.Name(), "method", apis.MethodSetTarget)
	}
	if target != nil && !reflect.TypeOf(target).Implements(p.typ.class) {
		return apis.Fail(apis.ErrInvalidTarget, "type", reflect.TypeOf(target).String(), "interface", p.typ.class.String())
	}
	_, err := p.inst.Invoke(apis.MethodSetTarget, reflect.ValueOf(&target).Elem())
	return err
}
